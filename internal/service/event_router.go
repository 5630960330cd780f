package service

import (
	"context"
	"fmt"

	"github.com/JJulme/manito/internal/metrics"
	"github.com/JJulme/manito/internal/models"
	"github.com/JJulme/manito/internal/notifications"

	"go.uber.org/zap"
)

// EventRouter maps one change event to at most one push notification.
type EventRouter struct {
	resolver *RecipientResolver
	sender   Sender
	logger   *zap.Logger
}

func NewEventRouter(resolver *RecipientResolver, sender Sender, logger *zap.Logger) *EventRouter {
	return &EventRouter{
		resolver: resolver,
		sender:   sender,
		logger:   logger.Named("event_router"),
	}
}

// Handle never retries. Unsupported mission transitions yield a Suppressed outcome.
func (r *EventRouter) Handle(ctx context.Context, event models.ChangeEvent) models.DeliveryOutcome {
	var outcome models.DeliveryOutcome
	switch event.Kind {
	case models.EventKindCommentCreated:
		outcome = r.handleComment(ctx, event)
	case models.EventKindFriendRequestCreated:
		outcome = r.handleFriendRequest(ctx, event)
	case models.EventKindMissionProposed:
		outcome = r.handleMissionPropose(ctx, event)
	case models.EventKindMissionStatusChanged:
		outcome = r.handleMissionStatus(ctx, event)
	default:
		outcome = models.Failed(event.Kind, fmt.Errorf("%w: %s", models.ErrUnsupportedEvent, event.Kind))
	}
	r.record(outcome)
	return outcome
}

func (r *EventRouter) handleComment(ctx context.Context, event models.ChangeEvent) models.DeliveryOutcome {
	rec, err := event.CommentRecord()
	if err != nil {
		return models.Failed(event.Kind, err)
	}
	recipientID, err := r.resolver.ResolveCounterpart(ctx, rec.MissionID, rec.UserID)
	if err != nil {
		return models.Failed(event.Kind, err)
	}
	to, err := r.resolver.Resolve(ctx, recipientID)
	if err != nil {
		return failedFor(event.Kind, notifications.VariantComment, recipientID, err)
	}
	name, err := r.resolver.DisplayName(ctx, rec.UserID)
	if err != nil {
		return failedFor(event.Kind, notifications.VariantComment, recipientID, err)
	}
	payload := notifications.Build(notifications.VariantComment, notifications.VariantData{
		MissionID:  rec.MissionID,
		SenderID:   rec.UserID,
		SenderName: name,
		Comment:    rec.Comment,
	})
	return r.deliver(ctx, event.Kind, notifications.VariantComment, to, payload)
}

func (r *EventRouter) handleFriendRequest(ctx context.Context, event models.ChangeEvent) models.DeliveryOutcome {
	rec, err := event.FriendRequestRecord()
	if err != nil {
		return models.Failed(event.Kind, err)
	}
	to, err := r.resolver.Resolve(ctx, rec.ReceiverID)
	if err != nil {
		return failedFor(event.Kind, notifications.VariantFriendRequest, rec.ReceiverID, err)
	}
	name, err := r.resolver.DisplayName(ctx, rec.SenderID)
	if err != nil {
		return failedFor(event.Kind, notifications.VariantFriendRequest, rec.ReceiverID, err)
	}
	payload := notifications.Build(notifications.VariantFriendRequest, notifications.VariantData{
		SenderID:   rec.SenderID,
		SenderName: name,
	})
	return r.deliver(ctx, event.Kind, notifications.VariantFriendRequest, to, payload)
}

func (r *EventRouter) handleMissionPropose(ctx context.Context, event models.ChangeEvent) models.DeliveryOutcome {
	rec, err := event.MissionProposeRecord()
	if err != nil {
		return models.Failed(event.Kind, err)
	}
	to, err := r.resolver.Resolve(ctx, rec.FriendID)
	if err != nil {
		return failedFor(event.Kind, notifications.VariantMissionPropose, rec.FriendID, err)
	}
	payload := notifications.Build(notifications.VariantMissionPropose, notifications.VariantData{
		MissionID: rec.MissionID,
	})
	return r.deliver(ctx, event.Kind, notifications.VariantMissionPropose, to, payload)
}

func (r *EventRouter) handleMissionStatus(ctx context.Context, event models.ChangeEvent) models.DeliveryOutcome {
	rec, err := event.MissionRecord()
	if err != nil {
		return models.Failed(event.Kind, err)
	}
	transition := rec.Classify()
	variant, ok := notifications.VariantForTransition(transition)
	if !ok {
		r.logger.Debug("Mission update maps to no notification",
			zap.String("mission_id", rec.ID),
			zap.String("status", string(rec.Status)),
		)
		return models.Suppressed(event.Kind)
	}

	recipientID := rec.Recipient(transition)
	to, err := r.resolver.Resolve(ctx, recipientID)
	if err != nil {
		return failedFor(event.Kind, variant, recipientID, err)
	}
	payload := notifications.Build(variant, notifications.VariantData{MissionID: rec.ID})
	return r.deliver(ctx, event.Kind, variant, to, payload)
}

func (r *EventRouter) deliver(ctx context.Context, kind models.EventKind, variant notifications.Variant, to models.Recipient, payload *models.NotificationPayload) models.DeliveryOutcome {
	receipt, err := r.sender.Send(ctx, to.PushToken, payload)
	if err != nil {
		return failedFor(kind, variant, to.UserID, err)
	}
	return models.Delivered(kind, variant.Type(), to.UserID, receipt)
}

func failedFor(kind models.EventKind, variant notifications.Variant, recipientID string, err error) models.DeliveryOutcome {
	outcome := models.Failed(kind, err)
	outcome.Variant = variant.Type()
	outcome.RecipientID = recipientID
	return outcome
}

func (r *EventRouter) record(o models.DeliveryOutcome) {
	kind := o.Kind.String()
	metrics.EventsTotal.WithLabelValues(kind, o.Status.String()).Inc()

	log := r.logger.With(
		zap.String("kind", kind),
		zap.String("variant", o.Variant),
		zap.String("recipient_id", o.RecipientID),
	)
	switch o.Status {
	case models.OutcomeDelivered:
		log.Info("Push notification delivered")
	case models.OutcomeSuppressed:
		log.Info("No notification for event")
	default:
		reason := models.ErrorKind(o.Err)
		metrics.EventFailuresTotal.WithLabelValues(kind, reason).Inc()
		log.Warn("Event not delivered", zap.String("reason", reason), zap.Error(o.Err))
	}
}
