package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/edureach360/leads-api/internal/usecase"
)

const maxBodyBytes = 1 << 20

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}

// decodeJSON reads a bounded JSON body into dst and answers 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		msg := "invalid JSON body"
		if errors.Is(err, io.EOF) {
			msg = "request body is empty"
		}
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", msg)
		return false
	}
	return true
}

// writeUseCaseError maps use case errors to HTTP. Technical errors are logged
// and answered with a generic message.
func writeUseCaseError(w http.ResponseWriter, logger *slog.Logger, r *http.Request, err error) {
	var de *usecase.DomainError
	if errors.As(err, &de) {
		writeErrorResponse(w, statusForCode(de.Code), de.Code, de.Message)
		return
	}

	var te *usecase.TechnicalError
	if errors.As(err, &te) {
		logger.Error("request failed",
			slog.String("path", r.URL.Path),
			slog.String("code", te.Code),
			slog.String("error", te.Error()),
		)
		writeErrorResponse(w, statusForCode(te.Code), te.Code, te.Message)
		return
	}

	logger.Error("request failed", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
	writeErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

func statusForCode(code string) int {
	switch code {
	case usecase.CodeValidation, usecase.CodeInvalidSignature:
		return http.StatusBadRequest
	case usecase.CodeLeadNotFound:
		return http.StatusNotFound
	case usecase.CodeLeadConflict:
		return http.StatusConflict
	case usecase.CodeIntegration:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
