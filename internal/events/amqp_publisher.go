package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"delicioso/internal/config"
	"delicioso/internal/model"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// amqpChannel is the subset of *amqp.Channel used for publishing.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// amqpPublisher publishes order events to a RabbitMQ topic exchange.
type amqpPublisher struct {
	conn       *amqp.Connection
	mu         sync.Mutex // amqp channels are not safe for concurrent publishing
	channel    amqpChannel
	exchange   string
	routingKey string
	logger     zerolog.Logger
}

// NewAMQPPublisher dials RabbitMQ and declares the durable topic exchange.
func NewAMQPPublisher(cfg config.EventsConfig, logger zerolog.Logger) (Publisher, error) {
	logger = logger.With().Str("component", "amqp-publisher").Logger()

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		cfg.Exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	logger.Info().
		Str("exchange", cfg.Exchange).
		Str("routing_key", cfg.RoutingKey).
		Msg("RabbitMQ publisher initialised")

	return newAMQPPublisher(conn, channel, cfg.Exchange, cfg.RoutingKey, logger), nil
}

func newAMQPPublisher(conn *amqp.Connection, channel amqpChannel, exchange, routingKey string, logger zerolog.Logger) *amqpPublisher {
	return &amqpPublisher{
		conn:       conn,
		channel:    channel,
		exchange:   exchange,
		routingKey: routingKey,
		logger:     logger,
	}
}

// PublishOrderCreated publishes evt as a persistent JSON message.
func (p *amqpPublisher) PublishOrderCreated(ctx context.Context, evt model.OrderCreatedEvent) error {
	if evt.Event == "" {
		evt.Event = EventOrderCreated
	}

	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to encode order event: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    fmt.Sprintf("order-%d", evt.OrderID),
		Timestamp:    time.Now(),
		Type:         "order." + evt.Event,
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.channel.PublishWithContext(ctx, p.exchange, p.routingKey, false, false, msg); err != nil {
		p.logger.Error().Err(err).Int64("order_id", evt.OrderID).Msg("failed to publish order event")
		return fmt.Errorf("failed to publish order event: %w", err)
	}

	p.logger.Debug().Int64("order_id", evt.OrderID).Msg("order event published")
	return nil
}

// Close closes the channel and the connection.
func (p *amqpPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			firstErr = err
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
