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

// EventInput carries business-event submission fields.
type EventInput struct {
	Title       string
	Description string
	Venue       string
	StartsAt    time.Time
	EndsAt      time.Time
}

// EventService manages business events: submission by business owners,
// review by town officials, registration by town members.
type EventService struct {
	store      repository.Store
	dispatcher events.Dispatcher
}

func NewEventService(store repository.Store, dispatcher events.Dispatcher) *EventService {
	return &EventService{store: store, dispatcher: dispatcher}
}

// Submit files a new event for review in the owner's town.
func (s *EventService) Submit(ctx context.Context, actor authz.Context, input EventInput) (*domain.BusinessEvent, error) {
	if actor.Role != domain.RoleBusiness {
		return nil, apperrors.NewForbidden("only business owners submit events")
	}
	if actor.TownID == nil {
		return nil, apperrors.NewValidationError("account has no town", nil)
	}
	if !input.EndsAt.After(input.StartsAt) {
		return nil, apperrors.NewValidationError("event must end after it starts", nil)
	}

	event := &domain.BusinessEvent{
		OwnerID:     actor.PrincipalID,
		TownID:      *actor.TownID,
		Title:       input.Title,
		Description: input.Description,
		Venue:       input.Venue,
		StartsAt:    input.StartsAt,
		EndsAt:      input.EndsAt,
		Status:      domain.EventStatusPending,
	}
	if err := s.store.Events().Create(ctx, event); err != nil {
		return nil, apperrors.MapError(err)
	}
	return event, nil
}

// List returns events of the actor's town. Non-owners, non-officials see
// approved events only.
func (s *EventService) List(ctx context.Context, actor authz.Context, filter repository.EventFilter) ([]domain.BusinessEvent, error) {
	switch {
	case actor.IsSuperuser:
	case actor.Role == domain.RoleGovernment:
		if actor.TownID == nil {
			return nil, apperrors.NewForbidden("official has no town")
		}
		filter.TownID = actor.TownID
	case actor.Role == domain.RoleBusiness && filter.OwnerID != nil && *filter.OwnerID == actor.PrincipalID:
		// owners list their own submissions in any status
	default:
		if actor.TownID == nil {
			return nil, apperrors.NewForbidden("account has no town")
		}
		filter.TownID = actor.TownID
		approved := domain.EventStatusApproved
		filter.Status = &approved
	}

	list, err := s.store.Events().List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

// Get returns one event within the actor's reach.
func (s *EventService) Get(ctx context.Context, actor authz.Context, id string) (*domain.BusinessEvent, error) {
	return s.visible(ctx, actor, id)
}

// Review approves or rejects a pending event.
func (s *EventService) Review(ctx context.Context, actor authz.Context, id string, approve bool) (*domain.BusinessEvent, error) {
	event, err := s.visible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsSuperuser && !(actor.Role == domain.RoleGovernment && authz.SameTown(actor, event.TownID)) {
		return nil, apperrors.NewForbidden("only town officials review events")
	}
	if event.Status != domain.EventStatusPending {
		return nil, apperrors.NewConflict("event already reviewed", nil)
	}

	if approve {
		event.Status = domain.EventStatusApproved
	} else {
		event.Status = domain.EventStatusRejected
	}
	event.ReviewedBy = &actor.PrincipalID

	if err := s.store.Events().Update(ctx, event); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, actor.PrincipalID, event)
	return event, nil
}

// Register signs the actor up for an approved event in their town.
func (s *EventService) Register(ctx context.Context, actor authz.Context, id string) (*domain.EventRegistration, error) {
	event, err := s.visible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if event.Status != domain.EventStatusApproved {
		return nil, apperrors.NewConflict("event is not open for registration", nil)
	}

	registration := &domain.EventRegistration{EventID: event.ID, PrincipalID: actor.PrincipalID}
	if err := s.store.Events().Register(ctx, registration); err != nil {
		return nil, apperrors.MapError(err)
	}
	return registration, nil
}

// Unregister withdraws the actor's registration.
func (s *EventService) Unregister(ctx context.Context, actor authz.Context, id string) error {
	event, err := s.visible(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.store.Events().Unregister(ctx, event.ID, actor.PrincipalID); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("registration")
		}
		return apperrors.MapError(err)
	}
	return nil
}

// Registrations lists attendees, visible to the event owner and town
// officials.
func (s *EventService) Registrations(ctx context.Context, actor authz.Context, id string) ([]domain.EventRegistration, error) {
	event, err := s.visible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if event.OwnerID != actor.PrincipalID && !actor.IsSuperuser &&
		!(actor.Role == domain.RoleGovernment && authz.SameTown(actor, event.TownID)) {
		return nil, apperrors.NewForbidden("not allowed to view registrations")
	}

	registrations, err := s.store.Events().ListRegistrations(ctx, event.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return registrations, nil
}

func (s *EventService) visible(ctx context.Context, actor authz.Context, id string) (*domain.BusinessEvent, error) {
	event, err := s.store.Events().GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("event")
		}
		return nil, apperrors.MapError(err)
	}

	switch {
	case actor.IsSuperuser:
	case event.OwnerID == actor.PrincipalID:
	case !authz.SameTown(actor, event.TownID):
		return nil, apperrors.NewNotFound("event")
	case event.Status != domain.EventStatusApproved && actor.Role != domain.RoleGovernment:
		return nil, apperrors.NewNotFound("event")
	}
	return event, nil
}

func (s *EventService) publish(ctx context.Context, actorID string, event *domain.BusinessEvent) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		Type:      events.EventEventReviewed,
		SubjectID: event.OwnerID,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Payload: events.ReviewPayload{
			ResourceID: event.ID,
			OwnerID:    event.OwnerID,
			Outcome:    string(event.Status),
		},
	})
}
