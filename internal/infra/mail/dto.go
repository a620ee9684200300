package mail

import (
	"fmt"

	"github.com/edureach360/leads-api/internal/entity"
)

const (
	KindWelcome             = "welcome"
	KindAdminNotification   = "admin-notification"
	KindPaymentConfirmation = "payment-confirmation"
)

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type welcomeData struct {
	Name string
}

// snapshotData decorates a lead snapshot for the admin and payment templates.
type snapshotData struct {
	entity.LeadSnapshot
}

// AmountDisplay renders the amount stored in the smallest currency unit.
func (d snapshotData) AmountDisplay() string {
	if d.Amount == 0 {
		return "-"
	}
	return fmt.Sprintf("%s %d.%02d", d.Currency, d.Amount/100, d.Amount%100)
}
