package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/townhall/civic-service/internal/authz"
	"github.com/townhall/civic-service/internal/domain"
	"github.com/townhall/civic-service/internal/events"
	"github.com/townhall/civic-service/internal/repository"
	apperrors "github.com/townhall/civic-service/pkg/util/errorutil"
)

// LicenseApplyInput describes a new license application.
type LicenseApplyInput struct {
	LicenseType   string
	LicenseNumber string
	Description   string
}

// LicenseReviewInput records an official's decision.
type LicenseReviewInput struct {
	Approve    bool
	ReviewNote string
	IssueDate  *time.Time
	ExpiryDate *time.Time
}

// LicenseService manages business-license applications. Applications are
// filed by business owners and reviewed by officials of the same town.
type LicenseService struct {
	store      repository.Store
	dispatcher events.Dispatcher
}

func NewLicenseService(store repository.Store, dispatcher events.Dispatcher) *LicenseService {
	return &LicenseService{store: store, dispatcher: dispatcher}
}

// Apply files a new application for the acting business owner.
func (s *LicenseService) Apply(ctx context.Context, actor authz.Context, input LicenseApplyInput) (*domain.License, error) {
	if actor.Role != domain.RoleBusiness {
		return nil, apperrors.NewForbidden("only business owners apply for licenses")
	}
	if actor.TownID == nil {
		return nil, apperrors.NewValidationError("account has no town", nil)
	}
	if input.LicenseNumber == "" {
		return nil, apperrors.NewValidationError("license number is required", nil)
	}

	license := &domain.License{
		OwnerID:       actor.PrincipalID,
		TownID:        *actor.TownID,
		LicenseType:   input.LicenseType,
		LicenseNumber: input.LicenseNumber,
		Status:        domain.LicenseStatusPending,
		Description:   input.Description,
	}
	if err := s.store.Licenses().Create(ctx, license); err != nil {
		return nil, apperrors.MapError(err)
	}
	return license, nil
}

// List returns applications visible to the actor.
func (s *LicenseService) List(ctx context.Context, actor authz.Context, filter repository.LicenseFilter) ([]domain.License, error) {
	switch {
	case actor.IsSuperuser:
	case actor.Role == domain.RoleGovernment:
		if actor.TownID == nil {
			return nil, apperrors.NewForbidden("official has no town")
		}
		filter.TownID = actor.TownID
	default:
		filter.OwnerID = &actor.PrincipalID
	}

	licenses, err := s.store.Licenses().List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return licenses, nil
}

// Get returns one application within the actor's reach.
func (s *LicenseService) Get(ctx context.Context, actor authz.Context, id string) (*domain.License, error) {
	return s.visible(ctx, actor, id)
}

// Review decides a pending application. Only officials of the license's
// town decide; a decided application cannot be re-reviewed.
func (s *LicenseService) Review(ctx context.Context, actor authz.Context, id string, input LicenseReviewInput) (*domain.License, error) {
	license, err := s.visible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsSuperuser && !(actor.Role == domain.RoleGovernment && authz.SameTown(actor, license.TownID)) {
		return nil, apperrors.NewForbidden("only town officials review licenses")
	}
	if license.Status != domain.LicenseStatusPending {
		return nil, apperrors.NewConflict("license application already decided", nil)
	}

	if input.Approve {
		license.Status = domain.LicenseStatusApproved
		license.IssueDate = input.IssueDate
		license.ExpiryDate = input.ExpiryDate
		if license.IssueDate == nil {
			now := time.Now()
			license.IssueDate = &now
		}
	} else {
		license.Status = domain.LicenseStatusRejected
	}
	license.ReviewedBy = &actor.PrincipalID
	license.ReviewNote = input.ReviewNote

	if err := s.store.Licenses().Update(ctx, license); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, actor.PrincipalID, license)
	return license, nil
}

func (s *LicenseService) visible(ctx context.Context, actor authz.Context, id string) (*domain.License, error) {
	license, err := s.store.Licenses().GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("license")
		}
		return nil, apperrors.MapError(err)
	}

	switch {
	case actor.IsSuperuser:
	case license.OwnerID == actor.PrincipalID:
	case actor.Role == domain.RoleGovernment && authz.SameTown(actor, license.TownID):
	default:
		return nil, apperrors.NewNotFound("license")
	}
	return license, nil
}

func (s *LicenseService) publish(ctx context.Context, actorID string, license *domain.License) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		Type:      events.EventLicenseReviewed,
		SubjectID: license.OwnerID,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Payload: events.ReviewPayload{
			ResourceID: license.ID,
			OwnerID:    license.OwnerID,
			Outcome:    string(license.Status),
			Note:       license.ReviewNote,
		},
	})
}
