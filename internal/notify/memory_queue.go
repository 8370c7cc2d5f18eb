package notify

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// ErrQueueFull is returned by MemoryQueue.Enqueue when the buffer is full.
var ErrQueueFull = errors.New("notification queue is full")

// MemoryQueue is an in-process queue backed by a buffered channel. Failed
// messages are retried with linear backoff up to maxAttempts, then dropped.
type MemoryQueue struct {
	ch          chan Message
	maxAttempts int
	backoff     time.Duration
	logger      zerolog.Logger
}

// NewMemoryQueue creates a MemoryQueue holding up to size pending messages.
func NewMemoryQueue(size, maxAttempts int, backoff time.Duration, logger zerolog.Logger) *MemoryQueue {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &MemoryQueue{
		ch:          make(chan Message, size),
		maxAttempts: maxAttempts,
		backoff:     backoff,
		logger:      logger.With().Str("component", "memory_queue").Logger(),
	}
}

// Enqueue never blocks.
func (q *MemoryQueue) Enqueue(ctx context.Context, msg Message) error {
	select {
	case q.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

// Consume processes messages one at a time until ctx is cancelled.
func (q *MemoryQueue) Consume(ctx context.Context, handler Handler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-q.ch:
			q.deliver(ctx, handler, msg)
		}
	}
}

func (q *MemoryQueue) deliver(ctx context.Context, handler Handler, msg Message) {
	for attempt := 1; attempt <= q.maxAttempts; attempt++ {
		msg.Attempt = attempt

		err := handler(ctx, msg)
		if err == nil {
			return
		}

		q.logger.Warn().Err(err).
			Str("kind", string(msg.Kind)).
			Str("order_number", msg.OrderNumber).
			Int("attempt", attempt).
			Msg("notification delivery failed")

		if attempt == q.maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(attempt) * q.backoff):
		}
	}

	q.logger.Error().
		Str("kind", string(msg.Kind)).
		Str("order_number", msg.OrderNumber).
		Int("attempts", q.maxAttempts).
		Msg("dropping notification after max attempts")
}
