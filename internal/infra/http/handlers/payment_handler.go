package handlers

import (
	"log/slog"
	"net/http"

	"github.com/edureach360/leads-api/internal/infra/http/middleware"
	"github.com/edureach360/leads-api/internal/usecase"
)

type PaymentHandler struct {
	CreateOrderUC   *usecase.CreateOrderUseCase
	VerifyPaymentUC *usecase.VerifyPaymentUseCase
	Logger          *slog.Logger
}

func NewPaymentHandler(createOrder *usecase.CreateOrderUseCase, verify *usecase.VerifyPaymentUseCase, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{CreateOrderUC: createOrder, VerifyPaymentUC: verify, Logger: logger}
}

// CreateOrder (POST /api/razorpay/create-order)
func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateOrderInput
	if !decodeJSON(w, r, &input) {
		return
	}

	output, err := h.CreateOrderUC.Execute(r.Context(), input)
	if err != nil {
		if usecase.ErrorCode(err) == usecase.CodeIntegration {
			middleware.RecordIntegrationError("razorpay")
		}
		writeUseCaseError(w, h.Logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, output)
}

// VerifyPayment (POST /api/razorpay/verify-payment)
func (h *PaymentHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var input usecase.VerifyPaymentInput
	if !decodeJSON(w, r, &input) {
		return
	}

	output, err := h.VerifyPaymentUC.Execute(r.Context(), input)
	if err != nil {
		result := "error"
		if usecase.ErrorCode(err) == usecase.CodeInvalidSignature {
			result = "invalid_signature"
		}
		middleware.RecordPaymentVerification(result)
		writeUseCaseError(w, h.Logger, r, err)
		return
	}
	middleware.RecordPaymentVerification("success")
	writeJSON(w, http.StatusOK, output)
}
