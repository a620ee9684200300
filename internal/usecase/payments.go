package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/edureach360/leads-api/internal/entity"
	"github.com/edureach360/leads-api/internal/infra/integration/razorpay"
)

type CreateOrderUseCase struct {
	Leads        LeadRepository
	Interactions InteractionRepository
	Gateway      PaymentGateway
	Logger       *slog.Logger
}

func NewCreateOrderUseCase(leads LeadRepository, interactions InteractionRepository, gateway PaymentGateway, logger *slog.Logger) *CreateOrderUseCase {
	return &CreateOrderUseCase{Leads: leads, Interactions: interactions, Gateway: gateway, Logger: logger}
}

func (uc *CreateOrderUseCase) Execute(ctx context.Context, input CreateOrderInput) (*CreateOrderOutput, error) {
	errs := validateStruct(input)
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = entity.DefaultCurrency
	}
	if len(currency) != 3 {
		errs = append(errs, ValidationError{"currency", "must be a 3 letter ISO code"})
	}
	if len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	leadID := strings.TrimSpace(input.LeadID)
	if leadID != "" {
		if _, err := uc.Leads.FindByID(ctx, leadID); err != nil {
			if errors.Is(err, entity.ErrLeadNotFound) {
				return nil, leadNotFound(leadID)
			}
			return nil, databaseError("failed to load lead", err)
		}
	}

	order, err := uc.Gateway.CreateOrder(ctx, razorpay.CreateOrderInput{
		Amount:   input.Amount,
		Currency: currency,
		Receipt:  input.Receipt,
		Notes:    input.Notes,
	})
	if err != nil {
		return nil, &TechnicalError{Code: CodeIntegration, Message: "failed to create order", Err: err}
	}

	if leadID != "" {
		uc.attachOrder(ctx, leadID, order)
	}

	return &CreateOrderOutput{
		ID:        order.ID,
		Currency:  order.Currency,
		Amount:    order.Amount,
		Receipt:   order.Receipt,
		Status:    order.Status,
		CreatedAt: order.CreatedAt,
	}, nil
}

// attachOrder records the order on the lead. The order already exists at the
// gateway, so failures here are logged and the order is still returned.
func (uc *CreateOrderUseCase) attachOrder(ctx context.Context, leadID string, order *razorpay.Order) {
	amount := order.Amount
	err := uc.Leads.UpdatePayment(ctx, leadID, entity.PaymentUpdate{
		Status:   entity.PaymentPending,
		OrderID:  order.ID,
		Amount:   &amount,
		Currency: order.Currency,
	})
	if err != nil {
		uc.Logger.Error("failed to attach order to lead",
			slog.String("lead_id", leadID),
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	in := entity.NewInteraction(leadID, entity.InteractionOrderCreated, "", map[string]any{
		"order_id": order.ID,
		"amount":   order.Amount,
		"currency": order.Currency,
	})
	if err := uc.Interactions.Create(ctx, in); err != nil {
		uc.Logger.Error("failed to record order interaction",
			slog.String("lead_id", leadID),
			slog.String("error", err.Error()),
		)
	}
}

type VerifyPaymentUseCase struct {
	Leads        LeadRepository
	Interactions InteractionRepository
	Gateway      PaymentGateway
	Rescorer     LeadRescorer
	Dispatcher   Dispatcher
	Notifier     Notifier
	// CRM is optional; nil disables the sync.
	CRM    CRMSync
	Logger *slog.Logger
}

func NewVerifyPaymentUseCase(
	leads LeadRepository,
	interactions InteractionRepository,
	gateway PaymentGateway,
	rescorer LeadRescorer,
	dispatcher Dispatcher,
	notifier Notifier,
	logger *slog.Logger,
) *VerifyPaymentUseCase {
	return &VerifyPaymentUseCase{
		Leads:        leads,
		Interactions: interactions,
		Gateway:      gateway,
		Rescorer:     rescorer,
		Dispatcher:   dispatcher,
		Notifier:     notifier,
		Logger:       logger,
	}
}

func (uc *VerifyPaymentUseCase) Execute(ctx context.Context, input VerifyPaymentInput) (*VerifyPaymentOutput, error) {
	if errs := validateStruct(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	if !uc.Gateway.VerifySignature(input.RazorpayOrderID, input.RazorpayPaymentID, input.RazorpaySignature) {
		uc.Logger.Warn("payment signature mismatch",
			slog.String("lead_id", input.LeadID),
			slog.String("order_id", input.RazorpayOrderID),
		)
		return nil, &DomainError{Code: CodeInvalidSignature, Message: "invalid payment signature"}
	}

	lead, err := uc.Confirm(ctx, ConfirmPaymentInput{
		LeadID:    input.LeadID,
		PaymentID: input.RazorpayPaymentID,
		OrderID:   input.RazorpayOrderID,
		Amount:    input.Amount,
		Currency:  input.Currency,
		PlanName:  input.PlanName,
	})
	if err != nil {
		return nil, err
	}

	return &VerifyPaymentOutput{
		Success:   true,
		PaymentID: input.RazorpayPaymentID,
		OrderID:   input.RazorpayOrderID,
		Lead:      lead,
	}, nil
}

// Confirm marks an authenticated payment as completed on the lead, appends the
// payment interaction, rescores the lead and schedules the confirmation email.
// Confirming a payment id that is already recorded as completed is a no-op.
func (uc *VerifyPaymentUseCase) Confirm(ctx context.Context, input ConfirmPaymentInput) (*entity.Lead, error) {
	lead, err := uc.Leads.FindByID(ctx, input.LeadID)
	if errors.Is(err, entity.ErrLeadNotFound) {
		return nil, leadNotFound(input.LeadID)
	}
	if err != nil {
		return nil, databaseError("failed to load lead", err)
	}

	if lead.HasCompletedPayment() && entity.StringValue(lead.PaymentID) == input.PaymentID {
		uc.Logger.Info("payment already confirmed",
			slog.String("lead_id", lead.ID),
			slog.String("payment_id", input.PaymentID),
		)
		return lead, nil
	}

	update := entity.PaymentUpdate{
		Status:    entity.PaymentCompleted,
		PaymentID: input.PaymentID,
		OrderID:   input.OrderID,
		Currency:  strings.ToUpper(strings.TrimSpace(input.Currency)),
		Plan:      strings.TrimSpace(input.PlanName),
	}
	if input.Amount > 0 {
		amount := input.Amount
		update.Amount = &amount
	}
	if err := uc.Leads.UpdatePayment(ctx, lead.ID, update); err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return nil, leadNotFound(lead.ID)
		}
		return nil, databaseError("failed to store payment", err)
	}
	update.Apply(lead)

	in := entity.NewInteraction(lead.ID, entity.InteractionPaymentCompleted, "", map[string]any{
		"payment_id": input.PaymentID,
		"order_id":   input.OrderID,
		"amount":     input.Amount,
		"plan":       update.Plan,
	})
	if err := uc.Interactions.Create(ctx, in); err != nil {
		uc.Logger.Error("failed to record payment interaction",
			slog.String("lead_id", lead.ID),
			slog.String("error", err.Error()),
		)
	}

	if out, err := uc.Rescorer.Execute(ctx, lead.ID); err != nil {
		uc.Logger.Error("rescoring after payment failed",
			slog.String("lead_id", lead.ID),
			slog.String("error", err.Error()),
		)
	} else {
		score := out.Score
		lead.AIScore = &score
		lead.Status = out.Status
	}

	snapshot := lead.Snapshot()
	uc.Dispatcher.Dispatch(ctx, NotificationTask{
		Name:   TaskPaymentConfirmed,
		LeadID: lead.ID,
		Run: func(ctx context.Context) error {
			return uc.Notifier.NotifyPaymentConfirmed(ctx, snapshot)
		},
	})
	if uc.CRM != nil {
		uc.Dispatcher.Dispatch(ctx, NotificationTask{
			Name:   TaskCRMSync,
			LeadID: lead.ID,
			Run: func(ctx context.Context) error {
				return uc.CRM.SyncPayment(ctx, snapshot)
			},
		})
	}

	return lead, nil
}
