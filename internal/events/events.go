package events

import (
	"context"

	"delicioso/internal/model"
)

// EventOrderCreated is the event name carried by order-created messages.
const EventOrderCreated = "created"

// Publisher delivers ledger events to downstream consumers.
type Publisher interface {
	// PublishOrderCreated announces a committed order.
	PublishOrderCreated(ctx context.Context, evt model.OrderCreatedEvent) error

	// Close releases resources held by the publisher.
	Close() error
}

type nopPublisher struct{}

// NewNopPublisher returns a Publisher that discards every event.
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) PublishOrderCreated(context.Context, model.OrderCreatedEvent) error { return nil }

func (nopPublisher) Close() error { return nil }
