package entity

// LeadSnapshot is the payload handed to notification channels.
type LeadSnapshot struct {
	LeadID        string         `json:"lead_id"`
	Name          string         `json:"name"`
	Email         string         `json:"email"`
	Phone         string         `json:"phone"`
	Role          string         `json:"role,omitempty"`
	Experience    string         `json:"experience,omitempty"`
	Goals         string         `json:"goals,omitempty"`
	Plan          string         `json:"plan,omitempty"`
	QuizAnswers   map[string]any `json:"quiz_answers"`
	AIScore       int            `json:"ai_score"`
	Status        LeadStatus     `json:"status"`
	PaymentStatus string         `json:"payment_status,omitempty"`
	PaymentID     string         `json:"payment_id,omitempty"`
	Amount        int64          `json:"amount,omitempty"`
	Currency      string         `json:"currency"`
}

func (l *Lead) Snapshot() LeadSnapshot {
	s := LeadSnapshot{
		LeadID:        l.ID,
		Name:          l.Name,
		Email:         l.Email,
		Phone:         StringValue(l.Phone),
		Role:          StringValue(l.Role),
		Experience:    StringValue(l.Experience),
		Goals:         StringValue(l.Goals),
		Plan:          StringValue(l.PlanInterest),
		QuizAnswers:   l.QuizAnswers,
		AIScore:       l.StoredScore(),
		Status:        l.Status,
		PaymentStatus: StringValue(l.PaymentStatus),
		PaymentID:     StringValue(l.PaymentID),
		Currency:      l.Currency,
	}
	if s.QuizAnswers == nil {
		s.QuizAnswers = map[string]any{}
	}
	if l.Amount != nil {
		s.Amount = *l.Amount
	}
	if s.Currency == "" {
		s.Currency = DefaultCurrency
	}
	if l.MembershipPlan != nil && s.Plan == "" {
		s.Plan = l.MembershipPlan.Name
	}
	return s
}

// PaymentUpdate carries the gateway fields written onto a lead. Empty fields
// leave the stored value untouched.
type PaymentUpdate struct {
	Status    string
	PaymentID string
	OrderID   string
	Amount    *int64
	Currency  string
	Plan      string
}

// Apply copies the non-empty fields onto the lead.
func (p PaymentUpdate) Apply(l *Lead) {
	set := func(dst **string, v string) {
		if v != "" {
			*dst = &v
		}
	}
	set(&l.PaymentStatus, p.Status)
	set(&l.PaymentID, p.PaymentID)
	set(&l.OrderID, p.OrderID)
	set(&l.PlanInterest, p.Plan)
	if p.Amount != nil {
		amount := *p.Amount
		l.Amount = &amount
	}
	if p.Currency != "" {
		l.Currency = p.Currency
	}
}
