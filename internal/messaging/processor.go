package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/JJulme/manito/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const processTimeout = 30 * time.Second

// EventHandler is implemented by *service.EventRouter.
type EventHandler interface {
	Handle(ctx context.Context, event models.ChangeEvent) models.DeliveryOutcome
}

// Processor turns one queue message into one routed event.
// Delivered and suppressed events are acked; everything else is nacked without requeue.
type Processor struct {
	logger *zap.Logger
	events EventHandler
}

func NewProcessor(logger *zap.Logger, events EventHandler) *Processor {
	return &Processor{
		logger: logger.Named("processor"),
		events: events,
	}
}

func (p *Processor) ProcessMessage(ctx context.Context, d amqp.Delivery) {
	log := p.logger.With(zap.Uint64("delivery_tag", d.DeliveryTag))

	event, err := decodeEvent(d.Body)
	if err != nil {
		log.Error("Rejecting undecodable message", zap.Error(err), zap.ByteString("body", d.Body))
		p.nack(log, d)
		return
	}

	// a started delivery runs to completion even when the consumer is stopping
	processCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), processTimeout)
	defer cancel()

	outcome := p.events.Handle(processCtx, event)
	if outcome.Status == models.OutcomeFailed {
		log.Warn("Event failed, dropping message",
			zap.String("kind", event.Kind.String()),
			zap.String("reason", models.ErrorKind(outcome.Err)),
			zap.Error(outcome.Err),
		)
		p.nack(log, d)
		return
	}

	if err := d.Ack(false); err != nil {
		log.Error("Failed to ack message", zap.Error(err))
		return
	}
	log.Debug("Message acked", zap.String("kind", event.Kind.String()), zap.String("outcome", outcome.Status.String()))
}

func (p *Processor) nack(log *zap.Logger, d amqp.Delivery) {
	if err := d.Nack(false, false); err != nil {
		log.Error("Failed to nack message", zap.Error(err))
	}
}

func decodeEvent(body []byte) (models.ChangeEvent, error) {
	var payload models.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return models.ChangeEvent{}, fmt.Errorf("%w: %v", models.ErrInvalidEvent, err)
	}
	return payload.ToEvent()
}
