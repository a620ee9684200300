package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/edureach360/leads-api/internal/entity"
	"github.com/edureach360/leads-api/internal/infra/mail"
)

const deliveryTimeout = 60 * time.Second

var errMalformed = errors.New("malformed notification")

// Deliverer performs the actual delivery; *mail.Notifier in production.
type Deliverer interface {
	NotifyLeadSaved(ctx context.Context, lead entity.LeadSnapshot) error
	NotifyWelcome(ctx context.Context, leadID, email, name string) error
	NotifyPaymentConfirmed(ctx context.Context, lead entity.LeadSnapshot) error
}

// Acknowledger is the subset of amqp.Delivery the worker settles messages with.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

type Worker struct {
	Channel   *amqp.Channel
	Deliverer Deliverer
	Logger    *slog.Logger
	OnResult  func(kind string, err error)
}

func NewWorker(ch *amqp.Channel, deliverer Deliverer, logger *slog.Logger) *Worker {
	return &Worker{Channel: ch, Deliverer: deliverer, Logger: logger}
}

// Start consumes q.notifications until ctx is done or the channel closes.
func (w *Worker) Start(ctx context.Context) error {
	if err := w.Channel.Qos(10, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	msgs, err := w.Channel.ConsumeWithContext(ctx, QueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	w.Logger.Info("notification worker started", slog.String("queue", QueueName))
	for {
		select {
		case <-ctx.Done():
			w.Logger.Info("notification worker stopped")
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("notification delivery channel closed")
			}
			w.Handle(ctx, d.Body, &d)
		}
	}
}

// Handle processes one message and settles it. Failed deliveries are
// dead-lettered; the mail layer has already retried transient errors.
func (w *Worker) Handle(ctx context.Context, body []byte, ack Acknowledger) {
	var msg NotificationMessage
	kind := "unknown"

	err := json.Unmarshal(body, &msg)
	if err != nil {
		err = fmt.Errorf("%w: %v", errMalformed, err)
	} else {
		kind = msg.Kind
		deliverCtx, cancel := context.WithTimeout(ctx, deliveryTimeout)
		err = w.deliver(deliverCtx, msg)
		cancel()
	}

	if w.OnResult != nil {
		w.OnResult(kind, err)
	}

	if err != nil {
		w.Logger.Error("notification delivery failed",
			slog.String("kind", kind),
			slog.String("lead_id", msg.LeadID),
			slog.String("error", err.Error()),
		)
		_ = ack.Nack(false, false)
		return
	}

	w.Logger.Info("notification delivered",
		slog.String("kind", kind),
		slog.String("lead_id", msg.LeadID),
	)
	_ = ack.Ack(false)
}

func (w *Worker) deliver(ctx context.Context, msg NotificationMessage) error {
	switch msg.Kind {
	case mail.KindWelcome:
		return w.Deliverer.NotifyWelcome(ctx, msg.LeadID, msg.Email, msg.Name)
	case mail.KindAdminNotification:
		if msg.Snapshot == nil {
			return fmt.Errorf("%w: %s without snapshot", errMalformed, msg.Kind)
		}
		return w.Deliverer.NotifyLeadSaved(ctx, *msg.Snapshot)
	case mail.KindPaymentConfirmation:
		if msg.Snapshot == nil {
			return fmt.Errorf("%w: %s without snapshot", errMalformed, msg.Kind)
		}
		return w.Deliverer.NotifyPaymentConfirmed(ctx, *msg.Snapshot)
	default:
		return fmt.Errorf("%w: unknown kind %q", errMalformed, msg.Kind)
	}
}
