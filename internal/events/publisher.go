package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// RabbitPublisher publishes order events as JSON to a fanout exchange.
type RabbitPublisher struct {
	conn     *amqp091.Connection
	ch       channel
	exchange string
}

func NewRabbitPublisher(url, exchange string) (*RabbitPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	return &RabbitPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

// NewRabbitPublisherWithChannel uses a channel whose exchange is already declared.
func NewRabbitPublisherWithChannel(ch channel, exchange string) *RabbitPublisher {
	return &RabbitPublisher{ch: ch, exchange: exchange}
}

func (p *RabbitPublisher) Publish(ctx context.Context, event string, payload map[string]any) error {
	body, err := json.Marshal(Envelope{Event: event, OccurredAt: time.Now().UTC(), Data: payload})
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", event, err)
	}

	err = p.ch.PublishWithContext(ctx, p.exchange, event, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Type:         event,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event, err)
	}
	return nil
}

func (p *RabbitPublisher) Close() error {
	if err := p.ch.Close(); err != nil {
		return err
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// LogPublisher writes events to the log. Used when no broker is configured.
type LogPublisher struct {
	log *zap.Logger
}

func NewLogPublisher(log *zap.Logger) *LogPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, event string, payload map[string]any) error {
	p.log.Info("order event", zap.String("event", event), zap.Any("payload", payload))
	return nil
}
