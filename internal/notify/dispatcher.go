package notify

import (
	"context"
	"errors"

	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// Dispatcher drains a Queue into a Mailer.
type Dispatcher struct {
	queue  Queue
	mailer Mailer
	logger zerolog.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(queue Queue, mailer Mailer, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		queue:  queue,
		mailer: mailer,
		logger: logger.With().Str("component", "dispatcher").Logger(),
	}
}

// Run blocks until ctx is cancelled. Cancellation is not an error.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.logger.Info().Msg("notification dispatcher started")

	err := d.queue.Consume(ctx, d.handle)
	if errors.Is(err, context.Canceled) {
		d.logger.Info().Msg("notification dispatcher stopped")
		return nil
	}
	return err
}

func (d *Dispatcher) handle(ctx context.Context, msg Message) error {
	if msg.To == "" {
		d.logger.Warn().Str("kind", string(msg.Kind)).Msg("skipping notification without recipient")
		return nil
	}

	if err := d.mailer.Send(ctx, msg.To, msg.Subject, msg.HTML); err != nil {
		return err
	}

	d.logger.Info().
		Str("kind", string(msg.Kind)).
		Str("order_number", msg.OrderNumber).
		Int("attempt", msg.Attempt).
		Msg("notification delivered")
	return nil
}

// Notifier renders order notifications and enqueues them.
type Notifier struct {
	queue Queue
}

// NewNotifier creates a Notifier that publishes to queue.
func NewNotifier(queue Queue) *Notifier {
	return &Notifier{queue: queue}
}

// OrderPlaced enqueues the order confirmation.
func (n *Notifier) OrderPlaced(ctx context.Context, order *model.Order) error {
	msg, err := OrderConfirmation(order)
	if err != nil {
		return err
	}
	return n.queue.Enqueue(ctx, msg)
}

// StatusChanged enqueues a status update for the customer.
func (n *Notifier) StatusChanged(ctx context.Context, order *model.Order, entry model.StatusEntry) error {
	msg, err := StatusChanged(order, entry)
	if err != nil {
		return err
	}
	return n.queue.Enqueue(ctx, msg)
}
