package mail

import (
	"context"
	"log/slog"

	"github.com/edureach360/leads-api/internal/entity"
)

// InteractionRecorder stores the email_sent trail on the lead.
type InteractionRecorder interface {
	Create(ctx context.Context, in *entity.Interaction) error
}

// Notifier sends lead notifications straight over SMTP and records each
// delivered email as an interaction on the lead.
type Notifier struct {
	Sender       *EmailSender
	AdminEmail   string
	Interactions InteractionRecorder
	Logger       *slog.Logger
}

func NewNotifier(sender *EmailSender, adminEmail string, interactions InteractionRecorder, logger *slog.Logger) *Notifier {
	return &Notifier{
		Sender:       sender,
		AdminEmail:   adminEmail,
		Interactions: interactions,
		Logger:       logger,
	}
}

func (n *Notifier) NotifyLeadSaved(ctx context.Context, lead entity.LeadSnapshot) error {
	if n.AdminEmail == "" {
		n.Logger.Debug("admin email not configured, skipping lead notification", slog.String("lead_id", lead.LeadID))
		return nil
	}
	if err := n.Sender.SendAdminNotification(ctx, n.AdminEmail, lead); err != nil {
		return err
	}
	n.record(ctx, lead.LeadID, KindAdminNotification, n.AdminEmail)
	return nil
}

func (n *Notifier) NotifyWelcome(ctx context.Context, leadID, email, name string) error {
	if err := n.Sender.SendWelcome(ctx, email, name); err != nil {
		return err
	}
	n.record(ctx, leadID, KindWelcome, email)
	return nil
}

func (n *Notifier) NotifyPaymentConfirmed(ctx context.Context, lead entity.LeadSnapshot) error {
	if err := n.Sender.SendPaymentConfirmation(ctx, lead); err != nil {
		return err
	}
	n.record(ctx, lead.LeadID, KindPaymentConfirmation, lead.Email)
	return nil
}

// record never fails the delivery; the email is already out.
func (n *Notifier) record(ctx context.Context, leadID, kind, to string) {
	if n.Interactions == nil || leadID == "" {
		return
	}
	in := entity.NewInteraction(leadID, entity.InteractionEmailSent, kind, map[string]any{"to": to})
	if err := n.Interactions.Create(ctx, in); err != nil {
		n.Logger.Error("failed to record email interaction",
			slog.String("lead_id", leadID),
			slog.String("kind", kind),
			slog.String("error", err.Error()),
		)
	}
}
