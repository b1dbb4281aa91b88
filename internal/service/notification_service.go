package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/townhall/civic-service/internal/authz"
	"github.com/townhall/civic-service/internal/domain"
	"github.com/townhall/civic-service/internal/events"
	"github.com/townhall/civic-service/internal/repository"
	apperrors "github.com/townhall/civic-service/pkg/util/errorutil"
)

// NotificationService turns domain events into per-principal notifications
// and serves the read API. Writes happen outside the producing transaction:
// a lost notification never rolls back the action it describes.
type NotificationService struct {
	store      repository.Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

func NewNotificationService(store repository.Store, dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{store: store, dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes the notification writers to the dispatcher.
func (s *NotificationService) RegisterHandlers() {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Subscribe(events.EventAccountApproved, s.onAccountDecision)
	s.dispatcher.Subscribe(events.EventAccountDeactivated, s.onAccountDecision)
	s.dispatcher.Subscribe(events.EventAccountRejected, s.onAccountRejected)
	s.dispatcher.Subscribe(events.EventTownChangeAdvanced, s.onTownChange)
	s.dispatcher.Subscribe(events.EventTownChangeRejected, s.onTownChange)
	s.dispatcher.Subscribe(events.EventComplaintUpdated, s.onComplaintUpdated)
	s.dispatcher.Subscribe(events.EventLicenseReviewed, s.onReview(domain.NotificationLicense, "license application"))
	s.dispatcher.Subscribe(events.EventEventReviewed, s.onReview(domain.NotificationEvent, "event submission"))
}

// List returns the actor's notifications.
func (s *NotificationService) List(ctx context.Context, actor authz.Context, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	notifications, err := s.store.Notifications().ListByPrincipal(ctx, actor.PrincipalID, unreadOnly, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return notifications, nil
}

// MarkRead marks one of the actor's notifications read.
func (s *NotificationService) MarkRead(ctx context.Context, actor authz.Context, id string) error {
	if err := s.store.Notifications().MarkRead(ctx, id, actor.PrincipalID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// MarkAllRead marks every unread notification of the actor read.
func (s *NotificationService) MarkAllRead(ctx context.Context, actor authz.Context) error {
	if err := s.store.Notifications().MarkAllRead(ctx, actor.PrincipalID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *NotificationService) onAccountDecision(ctx context.Context, event events.Event) error {
	title := "Account approved"
	message := "Your account has been approved. Your API credential is ready."
	if event.Type == events.EventAccountDeactivated {
		title = "Account deactivated"
		message = "Your account has been deactivated and requires re-approval."
	}
	return s.write(ctx, &domain.Notification{
		PrincipalID: event.SubjectID,
		Kind:        domain.NotificationAccount,
		Title:       title,
		Message:     message,
	})
}

// onAccountRejected logs only: the rejected principal no longer exists, so
// there is nowhere to persist a notification.
func (s *NotificationService) onAccountRejected(_ context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.AccountDecisionPayload)
	s.logger.Info("account rejected",
		zap.String("principal_id", event.SubjectID),
		zap.String("email", payload.Email),
		zap.String("reason", payload.Reason))
	return nil
}

func (s *NotificationService) onTownChange(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TownChangePayload)
	if !ok {
		return nil
	}

	var title, message string
	switch payload.Status {
	case domain.TownChangeStatusApprovedCurrent:
		title = "Relocation released"
		message = "Your current town approved your relocation request. The destination town decides next."
	case domain.TownChangeStatusCompleted:
		title = "Relocation complete"
		message = "Your relocation request was approved. Your town membership has moved."
	case domain.TownChangeStatusRejected:
		title = "Relocation rejected"
		message = "Your relocation request was rejected."
		if payload.Reason != "" {
			message = fmt.Sprintf("Your relocation request was rejected: %s", payload.Reason)
		}
	default:
		return nil
	}

	return s.write(ctx, &domain.Notification{
		PrincipalID: payload.PrincipalID,
		Kind:        domain.NotificationTownChange,
		Title:       title,
		Message:     message,
		ResourceID:  &payload.RequestID,
	})
}

func (s *NotificationService) onComplaintUpdated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ComplaintPayload)
	if !ok {
		return nil
	}
	message := fmt.Sprintf("Your complaint is now %s.", payload.Status)
	if payload.Comment != "" {
		message = fmt.Sprintf("Official update on your complaint: %s", payload.Comment)
	}
	return s.write(ctx, &domain.Notification{
		PrincipalID: payload.OwnerID,
		Kind:        domain.NotificationComplaint,
		Title:       "Complaint updated",
		Message:     message,
		ResourceID:  &payload.ComplaintID,
	})
}

func (s *NotificationService) onReview(kind domain.NotificationKind, what string) events.EventHandler {
	return func(ctx context.Context, event events.Event) error {
		payload, ok := event.Payload.(events.ReviewPayload)
		if !ok {
			return nil
		}
		message := fmt.Sprintf("Your %s was %s.", what, payload.Outcome)
		if payload.Note != "" {
			message += " Note: " + payload.Note
		}
		return s.write(ctx, &domain.Notification{
			PrincipalID: payload.OwnerID,
			Kind:        kind,
			Title:       fmt.Sprintf("Your %s was reviewed", what),
			Message:     message,
			ResourceID:  &payload.ResourceID,
		})
	}
}

func (s *NotificationService) write(ctx context.Context, notification *domain.Notification) error {
	if err := s.store.Notifications().Create(ctx, notification); err != nil {
		s.logger.Warn("notification write failed",
			zap.String("principal_id", notification.PrincipalID),
			zap.Error(err))
		return err
	}
	return nil
}
