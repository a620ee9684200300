package usecase

import (
	"context"

	"github.com/edureach360/leads-api/internal/entity"
	"github.com/edureach360/leads-api/internal/infra/integration/razorpay"
)

const RecentInteractionsLimit = 10

type LeadRepository interface {
	FindByEmail(ctx context.Context, email string) (*entity.Lead, error)
	FindByID(ctx context.Context, id string) (*entity.Lead, error)
	Create(ctx context.Context, lead *entity.Lead) error
	Update(ctx context.Context, lead *entity.Lead) error
	UpdateScore(ctx context.Context, id string, score int, status entity.LeadStatus) error
	UpdatePayment(ctx context.Context, id string, payment entity.PaymentUpdate) error
	ListIDs(ctx context.Context) ([]string, error)
	List(ctx context.Context, filter entity.LeadFilter) ([]*entity.Lead, int, error)
}

type InteractionRepository interface {
	Create(ctx context.Context, in *entity.Interaction) error
	// FindRecentByLeadID returns at most limit interactions, newest first.
	FindRecentByLeadID(ctx context.Context, leadID string, limit int) ([]*entity.Interaction, error)
}

type ConversationRepository interface {
	Create(ctx context.Context, c *entity.Conversation) error
	AppendMessages(ctx context.Context, id, leadID string, messages []entity.Message) (*entity.Conversation, error)
	// FindByLeadID returns every conversation of the lead, most recently updated first.
	FindByLeadID(ctx context.Context, leadID string) ([]*entity.Conversation, error)
	FindLatestByLeadEmail(ctx context.Context, email string) (*entity.Conversation, error)
}

type PlanRepository interface {
	FindByID(ctx context.Context, id string) (*entity.MembershipPlan, error)
}

// Notifier delivers lead notifications. Calls are always made from a
// dispatched task, never from the request path.
type Notifier interface {
	NotifyLeadSaved(ctx context.Context, snapshot entity.LeadSnapshot) error
	NotifyWelcome(ctx context.Context, leadID, email, name string) error
	NotifyPaymentConfirmed(ctx context.Context, snapshot entity.LeadSnapshot) error
}

type PaymentGateway interface {
	CreateOrder(ctx context.Context, input razorpay.CreateOrderInput) (*razorpay.Order, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

// CRMSync mirrors converted leads into an external CRM.
type CRMSync interface {
	SyncPayment(ctx context.Context, snapshot entity.LeadSnapshot) error
}

type ChatCompleter interface {
	Complete(ctx context.Context, messages []entity.Message) (string, error)
}

// LeadRescorer recomputes and persists a single lead's score and status.
type LeadRescorer interface {
	Execute(ctx context.Context, leadID string) (*RecomputeScoreOutput, error)
}
