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

// TownChangeService runs the two-phase relocation handshake: the current
// town releases the principal, then the requested town accepts them and the
// tenancy moves. Each step is a conditional update, so when two officials
// decide the same request at once exactly one of them wins.
type TownChangeService struct {
	store      repository.Store
	dispatcher events.Dispatcher
}

func NewTownChangeService(store repository.Store, dispatcher events.Dispatcher) *TownChangeService {
	return &TownChangeService{store: store, dispatcher: dispatcher}
}

// Request opens a relocation request for the actor. One active request per
// principal; officials relocate by reassignment, not through this workflow.
func (s *TownChangeService) Request(ctx context.Context, actor authz.Context, requestedTownID string, billing domain.BillingAddress) (*domain.TownChangeRequest, error) {
	if actor.Role == domain.RoleGovernment {
		return nil, apperrors.NewForbidden("officials cannot request relocation")
	}
	if !actor.IsApproved {
		return nil, apperrors.NewForbidden("account pending approval")
	}
	if actor.TownID == nil {
		return nil, apperrors.NewValidationError("account has no town", nil)
	}
	if requestedTownID == *actor.TownID {
		return nil, apperrors.NewValidationError("requested town matches current town", nil)
	}
	if billing.IsZero() {
		return nil, apperrors.NewValidationError("billing address is required", nil)
	}

	town, err := s.store.Towns().GetByID(ctx, requestedTownID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewValidationError("unknown town", map[string]any{"town_id": requestedTownID})
		}
		return nil, apperrors.MapError(err)
	}
	if !town.IsActive {
		return nil, apperrors.NewValidationError("town is not accepting residents", map[string]any{"town_id": town.ID})
	}

	active, err := s.store.TownChanges().HasActiveForPrincipal(ctx, actor.PrincipalID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if active {
		return nil, apperrors.NewConflict("an active relocation request already exists", nil)
	}

	request := &domain.TownChangeRequest{
		PrincipalID:     actor.PrincipalID,
		CurrentTownID:   *actor.TownID,
		RequestedTownID: requestedTownID,
		BillingAddress:  billing,
		Status:          domain.TownChangeStatusPending,
	}
	if err := s.store.TownChanges().Create(ctx, request); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventTownChangeRequested, actor.PrincipalID, request)
	return request, nil
}

// List returns relocation requests visible to the actor: their own, or for
// deciding officials the ones involving their town.
func (s *TownChangeService) List(ctx context.Context, actor authz.Context, status *domain.TownChangeStatus, limit, offset int) ([]domain.TownChangeRequest, error) {
	filter := repository.TownChangeFilter{Status: status, Limit: limit, Offset: offset}

	switch {
	case actor.IsSuperuser:
	case actor.Role == domain.RoleGovernment && actor.HasFlag(authz.FlagApproveUsers) && actor.TownID != nil:
		filter.InvolvedTownID = actor.TownID
	default:
		filter.PrincipalID = &actor.PrincipalID
	}

	requests, err := s.store.TownChanges().List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return requests, nil
}

// Get returns one request if the actor owns it or can decide it.
func (s *TownChangeService) Get(ctx context.Context, actor authz.Context, id string) (*domain.TownChangeRequest, error) {
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.PrincipalID != actor.PrincipalID &&
		!s.canDecide(actor, request.CurrentTownID) &&
		!s.canDecide(actor, request.RequestedTownID) {
		return nil, apperrors.NewNotFound("town change request")
	}
	return request, nil
}

// Approve advances the request one step. A pending request needs an
// official of the current town; a released request needs an official of the
// requested town, and completing it moves the principal's tenancy in the
// same transaction. Losing a decision race surfaces as CONFLICT.
func (s *TownChangeService) Approve(ctx context.Context, actor authz.Context, id string) (*domain.TownChangeRequest, error) {
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	switch request.Status {
	case domain.TownChangeStatusPending:
		if !s.canDecide(actor, request.CurrentTownID) {
			return nil, apperrors.NewForbidden("not allowed to decide this request")
		}
		won, err := s.store.TownChanges().ApproveByCurrent(ctx, request.ID, actor.PrincipalID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		if !won {
			return nil, apperrors.NewConflict("request was already decided", nil)
		}

	case domain.TownChangeStatusApprovedCurrent:
		if !s.canDecide(actor, request.RequestedTownID) {
			return nil, apperrors.NewForbidden("not allowed to decide this request")
		}
		err := s.store.ExecTx(ctx, func(tx repository.Store) error {
			won, err := tx.TownChanges().Complete(ctx, request.ID, actor.PrincipalID)
			if err != nil {
				return err
			}
			if !won {
				return apperrors.NewConflict("request was already decided", nil)
			}
			principal, err := tx.Principals().GetByID(ctx, request.PrincipalID)
			if err != nil {
				return err
			}
			principal.TownID = &request.RequestedTownID
			return tx.Principals().Update(ctx, principal)
		})
		if err != nil {
			return nil, apperrors.MapError(err)
		}

	default:
		return nil, apperrors.NewConflict("request is already settled", nil)
	}

	updated, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventTownChangeAdvanced, actor.PrincipalID, updated)
	return updated, nil
}

// Reject closes an active request. The town currently holding the decision
// rejects: the current town while pending, the requested town afterwards.
func (s *TownChangeService) Reject(ctx context.Context, actor authz.Context, id, reason string) (*domain.TownChangeRequest, error) {
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	deciding := request.CurrentTownID
	if request.Status == domain.TownChangeStatusApprovedCurrent {
		deciding = request.RequestedTownID
	}
	if !request.Status.Active() {
		return nil, apperrors.NewConflict("request is already settled", nil)
	}
	if !s.canDecide(actor, deciding) {
		return nil, apperrors.NewForbidden("not allowed to decide this request")
	}

	won, err := s.store.TownChanges().Reject(ctx, request.ID, reason, request.Status)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !won {
		return nil, apperrors.NewConflict("request was already decided", nil)
	}

	updated, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventTownChangeRejected, actor.PrincipalID, updated)
	return updated, nil
}

func (s *TownChangeService) load(ctx context.Context, id string) (*domain.TownChangeRequest, error) {
	request, err := s.store.TownChanges().GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("town change request")
		}
		return nil, apperrors.MapError(err)
	}
	return request, nil
}

func (s *TownChangeService) canDecide(actor authz.Context, townID string) bool {
	if actor.IsSuperuser {
		return true
	}
	return actor.Role == domain.RoleGovernment &&
		actor.IsApproved &&
		actor.HasFlag(authz.FlagApproveUsers) &&
		authz.SameTown(actor, townID)
}

func (s *TownChangeService) publish(ctx context.Context, eventType events.EventType, actorID string, request *domain.TownChangeRequest) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		Type:      eventType,
		SubjectID: request.PrincipalID,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Payload: events.TownChangePayload{
			RequestID:       request.ID,
			PrincipalID:     request.PrincipalID,
			CurrentTownID:   request.CurrentTownID,
			RequestedTownID: request.RequestedTownID,
			Status:          request.Status,
			Reason:          request.RejectionReason,
		},
	})
}
