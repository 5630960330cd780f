package messaging

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Consumer reads change events from a durable queue with a fixed number of workers.
type Consumer struct {
	conn        *amqp.Connection
	logger      *zap.Logger
	queueName   string
	concurrency int
	processor   *Processor
	stopChannel chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

func NewConsumer(conn *amqp.Connection, logger *zap.Logger, queueName string, concurrency int, processor *Processor) *Consumer {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Consumer{
		conn:        conn,
		logger:      logger.Named("consumer"),
		queueName:   queueName,
		concurrency: concurrency,
		processor:   processor,
		stopChannel: make(chan struct{}),
	}
}

// Start blocks until Stop is called or the delivery channel closes.
func (c *Consumer) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		c.queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue '%s': %w", c.queueName, err)
	}

	if err := ch.Qos(c.concurrency, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	consumerTag := "manito-notifier-" + uuid.NewString()
	msgs, err := ch.Consume(
		q.Name,
		consumerTag,
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}
	c.logger.Info("Consumer started",
		zap.String("queue", q.Name),
		zap.String("consumer_tag", consumerTag),
		zap.Int("concurrency", c.concurrency),
	)

	done := make(chan struct{})
	c.wg.Add(c.concurrency)
	for i := 0; i < c.concurrency; i++ {
		go func(workerID int) {
			defer c.wg.Done()
			logger := c.logger.With(zap.Int("worker_id", workerID))
			for {
				select {
				case <-ctx.Done():
					return
				case d, ok := <-msgs:
					if !ok {
						logger.Info("Delivery channel closed, worker exiting")
						return
					}
					c.processor.ProcessMessage(ctx, d)
				}
			}
		}(i)
	}
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-c.stopChannel:
		c.logger.Info("Stop requested, cancelling workers")
		if err := ch.Cancel(consumerTag, false); err != nil {
			c.logger.Warn("Failed to cancel consumer", zap.Error(err))
		}
		cancel()
		<-done
	case <-done:
		c.logger.Warn("All workers exited without a stop request")
	}
	c.logger.Info("Consumer stopped")
	return nil
}

func (c *Consumer) Stop() {
	c.stopOnce.Do(func() { close(c.stopChannel) })
}
