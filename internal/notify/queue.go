package notify

import (
	"context"
)

// Handler processes one message. A non-nil error asks the queue to retry.
type Handler func(ctx context.Context, msg Message) error

// Queue decouples producing notifications from delivering them.
type Queue interface {
	// Enqueue hands msg to the queue without waiting for delivery.
	Enqueue(ctx context.Context, msg Message) error

	// Consume delivers messages to handler until ctx is cancelled.
	Consume(ctx context.Context, handler Handler) error
}
