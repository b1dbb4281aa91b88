package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/townhall/civic-service/internal/authz"
	"github.com/townhall/civic-service/internal/domain"
	"github.com/townhall/civic-service/internal/events"
	"github.com/townhall/civic-service/internal/repository"
	"github.com/townhall/civic-service/internal/storage"
	"github.com/townhall/civic-service/internal/upload"
	apperrors "github.com/townhall/civic-service/pkg/util/errorutil"
)

// ComplaintCreateInput describes a new complaint.
type ComplaintCreateInput struct {
	Title       string
	Description string
	Category    string
	Location    string
	Priority    domain.Priority
}

// ComplaintUpdateInput is the official-side update: status moves, priority
// triage and assignment.
type ComplaintUpdateInput struct {
	Status     *domain.ComplaintStatus
	Priority   *domain.Priority
	AssignedTo *string
}

// AttachmentUpload carries a file to validate and store.
type AttachmentUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Content     []byte
}

// allowedComplaintTransitions mirrors the lifecycle: complaints move
// forward, and closed is terminal.
var allowedComplaintTransitions = map[domain.ComplaintStatus][]domain.ComplaintStatus{
	domain.ComplaintStatusPending:    {domain.ComplaintStatusInProgress, domain.ComplaintStatusClosed},
	domain.ComplaintStatusInProgress: {domain.ComplaintStatusResolved, domain.ComplaintStatusClosed},
	domain.ComplaintStatusResolved:   {domain.ComplaintStatusClosed, domain.ComplaintStatusInProgress},
	domain.ComplaintStatusClosed:     {},
}

// ComplaintService manages town-scoped complaints. Records outside the
// actor's reach read as NOT_FOUND so complaint ids do not leak across
// tenancy boundaries.
type ComplaintService struct {
	store      repository.Store
	objects    storage.ObjectStore
	dispatcher events.Dispatcher
}

func NewComplaintService(store repository.Store, objects storage.ObjectStore, dispatcher events.Dispatcher) *ComplaintService {
	return &ComplaintService{store: store, objects: objects, dispatcher: dispatcher}
}

// Create files a complaint in the actor's town.
func (s *ComplaintService) Create(ctx context.Context, actor authz.Context, input ComplaintCreateInput) (*domain.Complaint, error) {
	if actor.Role == domain.RoleGovernment {
		return nil, apperrors.NewForbidden("officials respond to complaints, they do not file them")
	}
	if actor.TownID == nil {
		return nil, apperrors.NewValidationError("account has no town", nil)
	}

	complaint := &domain.Complaint{
		OwnerID:     actor.PrincipalID,
		TownID:      *actor.TownID,
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Location:    input.Location,
		Priority:    input.Priority,
		Status:      domain.ComplaintStatusPending,
	}
	if complaint.Priority == "" {
		complaint.Priority = domain.PriorityMedium
	}
	if err := s.store.Complaints().Create(ctx, complaint); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventComplaintFiled, actor.PrincipalID, complaint, "")
	return complaint, nil
}

// List returns complaints visible to the actor: owners see their own,
// officials see their town's, superusers see the unfiltered set.
func (s *ComplaintService) List(ctx context.Context, actor authz.Context, filter repository.ComplaintFilter) ([]domain.Complaint, error) {
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

	complaints, err := s.store.Complaints().List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return complaints, nil
}

// Get returns one complaint within the actor's reach.
func (s *ComplaintService) Get(ctx context.Context, actor authz.Context, id string) (*domain.Complaint, error) {
	return s.visible(ctx, actor, id)
}

// Update applies official triage: status transitions, priority, assignment.
func (s *ComplaintService) Update(ctx context.Context, actor authz.Context, id string, input ComplaintUpdateInput) (*domain.Complaint, error) {
	complaint, err := s.visible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !s.isTownOfficial(actor, complaint.TownID) {
		return nil, apperrors.NewForbidden("only town officials update complaints")
	}

	if input.Status != nil && *input.Status != complaint.Status {
		if !transitionAllowed(allowedComplaintTransitions[complaint.Status], *input.Status) {
			return nil, apperrors.NewConflict(
				fmt.Sprintf("cannot move complaint from %s to %s", complaint.Status, *input.Status), nil)
		}
		complaint.Status = *input.Status
	}
	if input.Priority != nil {
		complaint.Priority = *input.Priority
	}
	if input.AssignedTo != nil {
		complaint.AssignedTo = *input.AssignedTo
	}

	if err := s.store.Complaints().Update(ctx, complaint); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventComplaintUpdated, actor.PrincipalID, complaint, "")
	return complaint, nil
}

// Comment adds an official update. Notify marks updates that should reach
// the complaint owner as a notification.
func (s *ComplaintService) Comment(ctx context.Context, actor authz.Context, id, body string, notify bool) (*domain.ComplaintComment, error) {
	complaint, err := s.visible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !s.isTownOfficial(actor, complaint.TownID) {
		return nil, apperrors.NewForbidden("only town officials comment on complaints")
	}

	comment := &domain.ComplaintComment{
		ComplaintID: complaint.ID,
		OfficialID:  &actor.PrincipalID,
		Body:        body,
		Notify:      notify,
	}
	if err := s.store.Complaints().AddComment(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}

	if notify {
		s.publish(ctx, events.EventComplaintUpdated, actor.PrincipalID, complaint, body)
	}
	return comment, nil
}

// Comments lists a complaint's comment thread.
func (s *ComplaintService) Comments(ctx context.Context, actor authz.Context, id string) ([]domain.ComplaintComment, error) {
	complaint, err := s.visible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	comments, err := s.store.Complaints().ListComments(ctx, complaint.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return comments, nil
}

// Attach validates and stores a file against the complaint. Only the owner
// adds evidence.
func (s *ComplaintService) Attach(ctx context.Context, actor authz.Context, id string, file AttachmentUpload) (*domain.ComplaintAttachment, error) {
	complaint, err := s.visible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if complaint.OwnerID != actor.PrincipalID {
		return nil, apperrors.NewForbidden("only the complaint owner adds attachments")
	}

	head := file.Content
	if len(head) > 1024 {
		head = head[:1024]
	}
	name, err := upload.Validate(file.FileName, file.ContentType, file.Size, head)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}

	key := fmt.Sprintf("complaints/%s/%s-%s", complaint.ID, uuid.NewString(), name)
	if err := s.objects.Put(ctx, key, file.ContentType, bytes.NewReader(file.Content), file.Size); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	attachment := &domain.ComplaintAttachment{
		ComplaintID: complaint.ID,
		StorageKey:  key,
		FileName:    name,
		ContentType: file.ContentType,
		SizeBytes:   file.Size,
	}
	if err := s.store.Complaints().AddAttachment(ctx, attachment); err != nil {
		return nil, apperrors.MapError(err)
	}
	return attachment, nil
}

// Attachments lists upload metadata for a complaint.
func (s *ComplaintService) Attachments(ctx context.Context, actor authz.Context, id string) ([]domain.ComplaintAttachment, error) {
	complaint, err := s.visible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	attachments, err := s.store.Complaints().ListAttachments(ctx, complaint.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return attachments, nil
}

// visible loads a complaint and masks anything the actor cannot reach as
// NOT_FOUND.
func (s *ComplaintService) visible(ctx context.Context, actor authz.Context, id string) (*domain.Complaint, error) {
	complaint, err := s.store.Complaints().GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("complaint")
		}
		return nil, apperrors.MapError(err)
	}

	switch {
	case actor.IsSuperuser:
	case complaint.OwnerID == actor.PrincipalID:
	case actor.Role == domain.RoleGovernment && authz.SameTown(actor, complaint.TownID):
	default:
		return nil, apperrors.NewNotFound("complaint")
	}
	return complaint, nil
}

func (s *ComplaintService) isTownOfficial(actor authz.Context, townID string) bool {
	if actor.IsSuperuser {
		return true
	}
	return actor.Role == domain.RoleGovernment && actor.IsApproved && authz.SameTown(actor, townID)
}

func (s *ComplaintService) publish(ctx context.Context, eventType events.EventType, actorID string, complaint *domain.Complaint, comment string) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		Type:      eventType,
		SubjectID: complaint.OwnerID,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Payload: events.ComplaintPayload{
			ComplaintID: complaint.ID,
			OwnerID:     complaint.OwnerID,
			TownID:      complaint.TownID,
			Status:      complaint.Status,
			Comment:     comment,
		},
	})
}

func transitionAllowed(allowed []domain.ComplaintStatus, next domain.ComplaintStatus) bool {
	for _, status := range allowed {
		if status == next {
			return true
		}
	}
	return false
}
