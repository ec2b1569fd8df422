package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/boddenberg/influencer-bfa-go/internal/domain"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Shared helper functions
// ============================================================

type errorResponse struct {
	Error  string              `json:"error"`
	Step   int                 `json:"step,omitempty"`
	Fields map[string][]string `json:"fields,omitempty"`
	Code   string              `json:"code,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &domain.ErrValidation{Field: "body", Message: "invalid request body"}
	}
	return nil
}

// idParam reads a positive integer URL parameter.
func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, &domain.ErrValidation{Field: name, Message: "must be a positive integer"}
	}
	return id, nil
}

// handleServiceError maps domain errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var notFound *domain.ErrNotFound
	var circuitOpen *domain.ErrCircuitOpen
	var validation *domain.ErrValidation
	var incomplete *domain.ErrIncompleteStep
	var reportClosed *domain.ErrReportClosed
	var unauthorized *domain.ErrUnauthorized
	var apiErr *domain.ErrAPI
	var external *domain.ErrExternalService

	switch {
	case errors.As(err, &notFound):
		logger.Debug("not found", zap.String("error", err.Error()))
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &circuitOpen):
		logger.Error("circuit breaker open", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &validation):
		logger.Debug("validation error", zap.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &incomplete):
		logger.Debug("incomplete step", zap.Int("step", incomplete.Step), zap.Strings("fields", incomplete.Fields))
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:  err.Error(),
			Step:   incomplete.Step,
			Fields: map[string][]string{"missing": incomplete.Fields},
		})
	case errors.As(err, &reportClosed):
		logger.Debug("report closed")
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &unauthorized):
		logger.Warn("unauthorized", zap.String("error", err.Error()))
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.As(err, &apiErr):
		handleAPIError(w, apiErr, logger)
	case errors.As(err, &external):
		logger.Error("upstream failure", zap.String("service", external.Service), zap.Error(err))
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		logger.Error("unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// handleAPIError forwards a normalized upstream error with its detail.
func handleAPIError(w http.ResponseWriter, apiErr *domain.ErrAPI, logger *zap.Logger) {
	status := http.StatusBadGateway
	switch apiErr.Kind {
	case domain.KindValidation:
		status = http.StatusBadRequest
	case domain.KindPrecondition:
		status = http.StatusUnprocessableEntity
	case domain.KindUnauthorized:
		status = http.StatusUnauthorized
	case domain.KindNotFound:
		status = http.StatusNotFound
	}

	if status == http.StatusBadGateway {
		logger.Error("upstream error", zap.Int("upstream_status", apiErr.Status), zap.Error(apiErr))
	} else {
		logger.Debug("upstream rejected request",
			zap.Int("upstream_status", apiErr.Status),
			zap.String("kind", string(apiErr.Kind)),
			zap.String("error", apiErr.Error()),
		)
	}
	writeJSON(w, status, errorResponse{
		Error:  apiErr.Error(),
		Fields: apiErr.Fields,
		Code:   apiErr.Code,
	})
}
