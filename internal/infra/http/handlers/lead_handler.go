package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/edureach360/leads-api/internal/infra/http/middleware"
	"github.com/edureach360/leads-api/internal/usecase"
)

type LeadHandler struct {
	UpsertUC    *usecase.UpsertLeadUseCase
	ListUC      *usecase.ListLeadsUseCase
	RecomputeUC *usecase.RecomputeScoreUseCase
	RescoreUC   *usecase.RescoreAllUseCase
	Logger      *slog.Logger
}

func NewLeadHandler(
	upsert *usecase.UpsertLeadUseCase,
	list *usecase.ListLeadsUseCase,
	recompute *usecase.RecomputeScoreUseCase,
	rescore *usecase.RescoreAllUseCase,
	logger *slog.Logger,
) *LeadHandler {
	return &LeadHandler{
		UpsertUC:    upsert,
		ListUC:      list,
		RecomputeUC: recompute,
		RescoreUC:   rescore,
		Logger:      logger,
	}
}

// Upsert (POST /api/leads) answers 201 for a new lead and 200 for an update.
func (h *LeadHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var input usecase.UpsertLeadInput
	if !decodeJSON(w, r, &input) {
		return
	}

	output, err := h.UpsertUC.Execute(r.Context(), input)
	if err != nil {
		middleware.RecordLeadUpsert("error")
		writeUseCaseError(w, h.Logger, r, err)
		return
	}

	status := http.StatusOK
	result := "updated"
	if output.Created {
		status = http.StatusCreated
		result = "created"
	}
	middleware.RecordLeadUpsert(result)
	middleware.RecordLeadScore(output.Lead.StoredScore())

	writeJSON(w, status, output)
}

// List (GET /api/leads?status=&search=&page=&limit=)
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	input := usecase.ListLeadsInput{
		Status: q.Get("status"),
		Search: q.Get("search"),
		Page:   atoiOrZero(q.Get("page")),
		Limit:  atoiOrZero(q.Get("limit")),
	}

	output, err := h.ListUC.Execute(r.Context(), input)
	if err != nil {
		writeUseCaseError(w, h.Logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, output)
}

// Recompute (POST /api/leads/{id}/score)
func (h *LeadHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeErrorResponse(w, http.StatusBadRequest, usecase.CodeValidation, "id is required")
		return
	}

	output, err := h.RecomputeUC.Execute(r.Context(), id)
	if err != nil {
		writeUseCaseError(w, h.Logger, r, err)
		return
	}
	middleware.RecordLeadScore(output.Score)
	writeJSON(w, http.StatusOK, output)
}

// RescoreAll (POST /api/leads/rescore) runs the batch synchronously.
func (h *LeadHandler) RescoreAll(w http.ResponseWriter, r *http.Request) {
	result, err := h.RescoreUC.Execute(r.Context())
	middleware.RecordRescoreRun(err)
	if err != nil {
		writeUseCaseError(w, h.Logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func atoiOrZero(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}
