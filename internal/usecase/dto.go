package usecase

import (
	"encoding/json"

	"github.com/edureach360/leads-api/internal/entity"
)

// Optional distinguishes a field that was left out of the request (Set=false)
// from one explicitly sent as null (Null=true) or with a value.
type Optional[T any] struct {
	Value T
	Set   bool
	Null  bool
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Null = true
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

type UpsertLeadInput struct {
	Name  string `json:"name" validate:"notblank,max=200"`
	Email string `json:"email" validate:"notblank,emailshape,max=254"`

	Phone            Optional[string]         `json:"phone"`
	Role             Optional[string]         `json:"role"`
	Experience       Optional[string]         `json:"experience"`
	Goals            Optional[string]         `json:"goals"`
	Interests        Optional[[]string]       `json:"interests"`
	LearningStyle    Optional[string]         `json:"learning_style"`
	Budget           Optional[string]         `json:"budget"`
	International    Optional[string]         `json:"international"`
	PreferredContact Optional[string]         `json:"preferred_contact"`
	HearAboutUs      Optional[string]         `json:"hear_about_us"`
	PlanInterest     Optional[string]         `json:"plan_interest"`
	QuizAnswers      Optional[map[string]any] `json:"quiz_answers"`
	PaymentStatus    Optional[string]         `json:"payment_status"`
	PaymentID        Optional[string]         `json:"payment_id"`
	OrderID          Optional[string]         `json:"order_id"`
	Amount           Optional[int64]          `json:"amount"`
	Currency         Optional[string]         `json:"currency"`
	MembershipPlanID Optional[string]         `json:"membership_plan_id"`
}

type UpsertLeadOutput struct {
	Lead    *entity.Lead `json:"lead"`
	Created bool         `json:"created"`
}

type RecomputeScoreOutput struct {
	LeadID         string            `json:"lead_id"`
	Score          int               `json:"score"`
	PreviousStatus entity.LeadStatus `json:"previous_status"`
	Status         entity.LeadStatus `json:"status"`
}

type RescoreResult struct {
	Total   int `json:"total"`
	Updated int `json:"updated"`
}

type ListLeadsInput struct {
	Status string
	Search string
	Page   int
	Limit  int
}

type ListLeadsMeta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	TotalPages int `json:"total_pages"`
	Limit      int `json:"limit"`
}

type ListLeadsOutput struct {
	Data []*entity.Lead `json:"data"`
	Meta ListLeadsMeta  `json:"meta"`
}

type CreateOrderInput struct {
	LeadID   string            `json:"lead_id"`
	Amount   int64             `json:"amount" validate:"gt=0"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt" validate:"max=40"`
	Notes    map[string]string `json:"notes"`
}

type CreateOrderOutput struct {
	ID        string `json:"id"`
	Currency  string `json:"currency"`
	Amount    int64  `json:"amount"`
	Receipt   string `json:"receipt"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"created_at"`
}

type VerifyPaymentInput struct {
	LeadID            string `json:"lead_id" validate:"notblank"`
	RazorpayOrderID   string `json:"razorpay_order_id" validate:"notblank"`
	RazorpayPaymentID string `json:"razorpay_payment_id" validate:"notblank"`
	RazorpaySignature string `json:"razorpay_signature" validate:"notblank"`
	Amount            int64  `json:"amount" validate:"gte=0"`
	Currency          string `json:"currency"`
	PlanName          string `json:"plan_name"`
}

// ConfirmPaymentInput is a payment already authenticated by the caller, either
// through the checkout signature or a signed webhook.
type ConfirmPaymentInput struct {
	LeadID    string
	PaymentID string
	OrderID   string
	Amount    int64
	Currency  string
	PlanName  string
}

type VerifyPaymentOutput struct {
	Success   bool         `json:"success"`
	PaymentID string       `json:"payment_id"`
	OrderID   string       `json:"order_id"`
	Lead      *entity.Lead `json:"lead"`
}

type ChatInput struct {
	Messages       []entity.Message `json:"messages" validate:"min=1"`
	LeadID         string           `json:"lead_id"`
	ConversationID string           `json:"conversation_id"`
}

type ChatOutput struct {
	Content        string `json:"content"`
	ConversationID string `json:"conversation_id,omitempty"`
}

type ConversationOutput struct {
	ConversationID string           `json:"conversation_id,omitempty"`
	Messages       []entity.Message `json:"messages"`
}
