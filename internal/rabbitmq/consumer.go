package rabbitmq

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/airops/config"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const prefetch = 50

type Consumer struct {
	url      string
	exchange string
	queue    string
	topic    string
	logger   *zap.Logger
}

// NewConsumer reads topic through queue. With an exchange configured the
// queue is bound to it; otherwise the queue named topic is read directly.
func NewConsumer(cfg config.RabbitMQConfig, topic string, logger *zap.Logger) *Consumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	queue := cfg.Queue
	if queue == "" {
		queue = topic
	}
	return &Consumer{url: cfg.URL, exchange: cfg.Exchange, queue: queue, topic: topic, logger: logger}
}

// Consume delivers message bodies to handler until ctx ends. A failing
// message is rejected without requeue and consumption goes on.
func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, []byte) error) error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(prefetch, 0, false); err != nil {
		c.logger.Warn("rabbitmq set QoS failed", zap.Error(err))
	}
	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	if c.exchange != "" {
		if err := ch.ExchangeDeclare(c.exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
			return fmt.Errorf("exchange declare: %w", err)
		}
		if err := ch.QueueBind(c.queue, c.topic, c.exchange, false, nil); err != nil {
			return fmt.Errorf("queue bind: %w", err)
		}
	}

	deliveries, err := ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("deliveries channel closed")
			}
			if err := handler(ctx, d.Body); err != nil {
				c.logger.Warn("rabbitmq handle message failed", zap.String("message_id", d.MessageId), zap.Error(err))
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}
