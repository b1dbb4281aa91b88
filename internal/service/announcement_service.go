package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/townhall/civic-service/internal/authz"
	"github.com/townhall/civic-service/internal/domain"
	"github.com/townhall/civic-service/internal/repository"
	apperrors "github.com/townhall/civic-service/pkg/util/errorutil"
)

// AnnouncementInput carries authoring fields.
type AnnouncementInput struct {
	Title    string
	Content  string
	Priority domain.Priority
	Publish  bool
}

// AnnouncementService manages town notices. Officials author for their own
// town; residents read published notices of their town.
type AnnouncementService struct {
	store repository.Store
}

func NewAnnouncementService(store repository.Store) *AnnouncementService {
	return &AnnouncementService{store: store}
}

// Create authors an announcement in the official's town.
func (s *AnnouncementService) Create(ctx context.Context, actor authz.Context, input AnnouncementInput) (*domain.Announcement, error) {
	if !s.isOfficial(actor) {
		return nil, apperrors.NewForbidden("only officials publish announcements")
	}
	if actor.TownID == nil {
		return nil, apperrors.NewForbidden("official has no town")
	}

	announcement := &domain.Announcement{
		TownID:    *actor.TownID,
		CreatedBy: actor.PrincipalID,
		Title:     input.Title,
		Content:   input.Content,
		Priority:  input.Priority,
	}
	if announcement.Priority == "" {
		announcement.Priority = domain.PriorityMedium
	}
	if input.Publish {
		now := time.Now()
		announcement.IsPublished = true
		announcement.PublishedAt = &now
	}

	if err := s.store.Announcements().Create(ctx, announcement); err != nil {
		return nil, apperrors.MapError(err)
	}
	return announcement, nil
}

// List returns announcements of the actor's town. Officials also see
// drafts; everyone else sees published notices only.
func (s *AnnouncementService) List(ctx context.Context, actor authz.Context, limit, offset int) ([]domain.Announcement, error) {
	filter := repository.AnnouncementFilter{
		PublishedOnly: !s.isOfficial(actor),
		Limit:         limit,
		Offset:        offset,
	}
	if !actor.IsSuperuser {
		if actor.TownID == nil {
			return nil, apperrors.NewForbidden("account has no town")
		}
		filter.TownID = actor.TownID
	}

	announcements, err := s.store.Announcements().List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return announcements, nil
}

// Get returns one announcement within the actor's reach.
func (s *AnnouncementService) Get(ctx context.Context, actor authz.Context, id string) (*domain.Announcement, error) {
	return s.visible(ctx, actor, id)
}

// Update edits an announcement; publishing sets the timestamp once.
func (s *AnnouncementService) Update(ctx context.Context, actor authz.Context, id string, input AnnouncementInput) (*domain.Announcement, error) {
	announcement, err := s.visible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !s.canEdit(actor, announcement) {
		return nil, apperrors.NewForbidden("only town officials edit announcements")
	}

	announcement.Title = input.Title
	announcement.Content = input.Content
	if input.Priority != "" {
		announcement.Priority = input.Priority
	}
	if input.Publish && !announcement.IsPublished {
		now := time.Now()
		announcement.IsPublished = true
		announcement.PublishedAt = &now
	}

	if err := s.store.Announcements().Update(ctx, announcement); err != nil {
		return nil, apperrors.MapError(err)
	}
	return announcement, nil
}

// Delete removes an announcement.
func (s *AnnouncementService) Delete(ctx context.Context, actor authz.Context, id string) error {
	announcement, err := s.visible(ctx, actor, id)
	if err != nil {
		return err
	}
	if !s.canEdit(actor, announcement) {
		return apperrors.NewForbidden("only town officials delete announcements")
	}
	if err := s.store.Announcements().Delete(ctx, announcement.ID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *AnnouncementService) visible(ctx context.Context, actor authz.Context, id string) (*domain.Announcement, error) {
	announcement, err := s.store.Announcements().GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("announcement")
		}
		return nil, apperrors.MapError(err)
	}

	switch {
	case actor.IsSuperuser:
	case !authz.SameTown(actor, announcement.TownID):
		return nil, apperrors.NewNotFound("announcement")
	case !announcement.IsPublished && !s.isOfficial(actor):
		return nil, apperrors.NewNotFound("announcement")
	}
	return announcement, nil
}

func (s *AnnouncementService) isOfficial(actor authz.Context) bool {
	return actor.IsSuperuser || (actor.Role == domain.RoleGovernment && actor.IsApproved)
}

func (s *AnnouncementService) canEdit(actor authz.Context, announcement *domain.Announcement) bool {
	if actor.IsSuperuser {
		return true
	}
	return s.isOfficial(actor) && authz.SameTown(actor, announcement.TownID)
}
