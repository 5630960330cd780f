package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/JJulme/manito/internal/models"
	"github.com/JJulme/manito/internal/service/mocks"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type fakeAcknowledger struct {
	acked   []uint64
	nacked  []uint64
	requeue []bool
}

func (a *fakeAcknowledger) Ack(tag uint64, _ bool) error {
	a.acked = append(a.acked, tag)
	return nil
}

func (a *fakeAcknowledger) Nack(tag uint64, _ bool, requeue bool) error {
	a.nacked = append(a.nacked, tag)
	a.requeue = append(a.requeue, requeue)
	return nil
}

func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

const proposeBody = `{"type":"INSERT","table":"mission_propose","record":{"mission_id":"m1","friend_id":"u3"}}`

func delivery(ack amqp.Acknowledger, tag uint64, body string) amqp.Delivery {
	return amqp.Delivery{Acknowledger: ack, DeliveryTag: tag, Body: []byte(body)}
}

func TestProcessor_AckOnDeliveredAndSuppressed(t *testing.T) {
	events := new(mocks.EventHandler)
	events.On("Handle", mock.Anything, mock.MatchedBy(func(e models.ChangeEvent) bool {
		return e.Kind == models.EventKindMissionProposed
	})).Return(models.Delivered(models.EventKindMissionProposed, "mission_propose", "u3", nil)).Once()
	events.On("Handle", mock.Anything, mock.MatchedBy(func(e models.ChangeEvent) bool {
		return e.Kind == models.EventKindMissionStatusChanged
	})).Return(models.Suppressed(models.EventKindMissionStatusChanged)).Once()

	ack := &fakeAcknowledger{}
	p := NewProcessor(zap.NewNop(), events)
	p.ProcessMessage(context.Background(), delivery(ack, 1, proposeBody))
	p.ProcessMessage(context.Background(), delivery(ack, 2,
		`{"type":"UPDATE","table":"missions","record":{"id":"m1","creator_id":"u1","manito_id":"u2","status":"x"}}`))

	assert.Equal(t, []uint64{1, 2}, ack.acked)
	assert.Empty(t, ack.nacked)
	events.AssertExpectations(t)
}

func TestProcessor_NackWithoutRequeueOnFailure(t *testing.T) {
	events := new(mocks.EventHandler)
	events.On("Handle", mock.Anything, mock.Anything).
		Return(models.Failed(models.EventKindMissionProposed, models.ErrRecipientNotFound)).Once()

	ack := &fakeAcknowledger{}
	p := NewProcessor(zap.NewNop(), events)
	p.ProcessMessage(context.Background(), delivery(ack, 7, proposeBody))

	assert.Empty(t, ack.acked)
	assert.Equal(t, []uint64{7}, ack.nacked)
	assert.Equal(t, []bool{false}, ack.requeue)
}

func TestProcessor_NackUndecodable(t *testing.T) {
	events := new(mocks.EventHandler)
	ack := &fakeAcknowledger{}
	p := NewProcessor(zap.NewNop(), events)

	p.ProcessMessage(context.Background(), delivery(ack, 1, `{broken`))
	p.ProcessMessage(context.Background(), delivery(ack, 2, `{"type":"DELETE","table":"profiles","record":{}}`))

	assert.Equal(t, []uint64{1, 2}, ack.nacked)
	assert.Equal(t, []bool{false, false}, ack.requeue)
	events.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}

func TestProcessor_InFlightSurvivesCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var handlerErr error

	events := new(mocks.EventHandler)
	events.On("Handle", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			handlerCtx := args.Get(0).(context.Context)
			time.AfterFunc(20*time.Millisecond, cancel)
			select {
			case <-handlerCtx.Done():
				handlerErr = handlerCtx.Err()
			case <-time.After(200 * time.Millisecond):
			}
		}).
		Return(models.Delivered(models.EventKindMissionProposed, "mission_propose", "u3", nil)).Once()

	ack := &fakeAcknowledger{}
	NewProcessor(zap.NewNop(), events).ProcessMessage(ctx, delivery(ack, 1, proposeBody))

	assert.Error(t, ctx.Err())
	assert.NoError(t, handlerErr)
	assert.Equal(t, []uint64{1}, ack.acked)
	assert.Empty(t, ack.nacked)
	events.AssertExpectations(t)
}
