package entity

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrLeadNotFound       = errors.New("lead not found")
	ErrEmailAlreadyExists = errors.New("a lead with this email already exists")
)

const (
	SourceWebsite   = "website"
	DefaultCurrency = "INR"

	ContactEmail    = "email"
	ContactPhone    = "phone"
	ContactWhatsApp = "whatsapp"

	PaymentPending   = "pending"
	PaymentCompleted = "completed"
)

type Lead struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone *string `json:"phone,omitempty"`

	Role             *string  `json:"role,omitempty"`
	Experience       *string  `json:"experience,omitempty"`
	Goals            *string  `json:"goals,omitempty"`
	Interests        []string `json:"interests"`
	LearningStyle    *string  `json:"learning_style,omitempty"`
	Budget           *string  `json:"budget,omitempty"`
	International    *string  `json:"international,omitempty"`
	PreferredContact string   `json:"preferred_contact"`

	PlanInterest *string        `json:"plan_interest,omitempty"`
	HearAboutUs  *string        `json:"hear_about_us,omitempty"`
	QuizAnswers  map[string]any `json:"quiz_answers,omitempty"`

	AIScore *int       `json:"ai_score"`
	Status  LeadStatus `json:"status"`
	Source  string     `json:"source"`

	PaymentStatus *string `json:"payment_status,omitempty"`
	PaymentID     *string `json:"payment_id,omitempty"`
	OrderID       *string `json:"order_id,omitempty"`
	Amount        *int64  `json:"amount,omitempty"` // smallest currency unit (paise)
	Currency      string  `json:"currency"`

	MembershipPlanID *string         `json:"membership_plan_id,omitempty"`
	MembershipPlan   *MembershipPlan `json:"membership_plan,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewLead builds a lead as it is first captured from the website form.
func NewLead(name, email string) *Lead {
	now := time.Now()
	score := 0
	return &Lead{
		ID:               uuid.New().String(),
		Name:             strings.TrimSpace(name),
		Email:            NormalizeEmail(email),
		Interests:        []string{},
		PreferredContact: ContactEmail,
		AIScore:          &score,
		Status:           StatusNew,
		Source:           SourceWebsite,
		Currency:         DefaultCurrency,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// StoredScore returns the persisted score, treating a never-computed score as 0.
func (l *Lead) StoredScore() int {
	if l.AIScore == nil {
		return 0
	}
	return *l.AIScore
}

func (l *Lead) HasCompletedPayment() bool {
	return l.PaymentStatus != nil && *l.PaymentStatus == PaymentCompleted
}

// Present reports whether an optional text field carries a non-blank value.
func Present(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// LeadFilter drives the admin listing.
type LeadFilter struct {
	Status LeadStatus
	Search string
	Limit  int
	Offset int
}
