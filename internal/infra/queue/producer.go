package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/edureach360/leads-api/internal/entity"
	"github.com/edureach360/leads-api/internal/infra/mail"
)

// NotificationMessage is the wire format of q.notifications.
type NotificationMessage struct {
	Kind     string               `json:"kind"`
	LeadID   string               `json:"lead_id"`
	Email    string               `json:"email"`
	Name     string               `json:"name"`
	Snapshot *entity.LeadSnapshot `json:"snapshot,omitempty"`
}

// Publisher is satisfied by *amqp.Channel.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// NotificationProducer hands notifications over to the queue instead of
// sending them inline.
type NotificationProducer struct {
	Ch Publisher
}

func NewProducer(ch Publisher) *NotificationProducer {
	return &NotificationProducer{Ch: ch}
}

func (p *NotificationProducer) NotifyLeadSaved(ctx context.Context, lead entity.LeadSnapshot) error {
	return p.publish(ctx, NotificationMessage{
		Kind:     mail.KindAdminNotification,
		LeadID:   lead.LeadID,
		Email:    lead.Email,
		Name:     lead.Name,
		Snapshot: &lead,
	})
}

func (p *NotificationProducer) NotifyWelcome(ctx context.Context, leadID, email, name string) error {
	return p.publish(ctx, NotificationMessage{
		Kind:   mail.KindWelcome,
		LeadID: leadID,
		Email:  email,
		Name:   name,
	})
}

func (p *NotificationProducer) NotifyPaymentConfirmed(ctx context.Context, lead entity.LeadSnapshot) error {
	return p.publish(ctx, NotificationMessage{
		Kind:     mail.KindPaymentConfirmation,
		LeadID:   lead.LeadID,
		Email:    lead.Email,
		Name:     lead.Name,
		Snapshot: &lead,
	})
}

func (p *NotificationProducer) publish(ctx context.Context, msg NotificationMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s notification: %w", msg.Kind, err)
	}
	return nil
}
