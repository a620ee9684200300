package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/edureach360/leads-api/internal/entity"
	"github.com/edureach360/leads-api/internal/infra/http/middleware"
	"github.com/edureach360/leads-api/internal/infra/integration/razorpay"
	"github.com/edureach360/leads-api/internal/usecase"
)

const eventPaymentCaptured = "payment.captured"

// PaymentConfirmer is satisfied by *usecase.VerifyPaymentUseCase.
type PaymentConfirmer interface {
	Confirm(ctx context.Context, input usecase.ConfirmPaymentInput) (*entity.Lead, error)
}

// WebhookHandler receives Razorpay server-to-server events. Captured payments
// carrying a lead_id note complete the lead exactly like a checkout verification.
type WebhookHandler struct {
	Secret    string
	Confirmer PaymentConfirmer
	Logger    *slog.Logger
}

func NewWebhookHandler(secret string, confirmer PaymentConfirmer, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{Secret: secret, Confirmer: confirmer, Logger: logger}
}

func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_BODY", "could not read body")
		return
	}

	if !razorpay.VerifyWebhook(h.Secret, body, r.Header.Get("X-Razorpay-Signature")) {
		middleware.RecordPaymentVerification("invalid_signature")
		writeErrorResponse(w, http.StatusBadRequest, usecase.CodeInvalidSignature, "invalid webhook signature")
		return
	}

	var event razorpay.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "invalid JSON body")
		return
	}

	payment := event.Payload.Payment.Entity
	leadID := payment.Notes["lead_id"]
	if event.Event != eventPaymentCaptured || leadID == "" {
		h.Logger.Debug("webhook event ignored",
			slog.String("event", event.Event),
			slog.String("payment_id", payment.ID),
		)
		w.WriteHeader(http.StatusOK)
		return
	}

	_, err = h.Confirmer.Confirm(r.Context(), usecase.ConfirmPaymentInput{
		LeadID:    leadID,
		PaymentID: payment.ID,
		OrderID:   payment.OrderID,
		Amount:    payment.Amount,
		Currency:  payment.Currency,
		PlanName:  payment.Notes["plan_name"],
	})
	if err != nil {
		// Unknown leads are acknowledged so Razorpay stops redelivering.
		if usecase.ErrorCode(err) == usecase.CodeLeadNotFound {
			h.Logger.Warn("webhook for unknown lead", slog.String("lead_id", leadID), slog.String("payment_id", payment.ID))
			w.WriteHeader(http.StatusOK)
			return
		}
		middleware.RecordPaymentVerification("error")
		writeUseCaseError(w, h.Logger, r, err)
		return
	}

	middleware.RecordPaymentVerification("success")
	w.WriteHeader(http.StatusOK)
}
