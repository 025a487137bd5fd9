package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"raseed/internal/core"
	"raseed/internal/expenditure"
	"raseed/internal/log"
	"raseed/internal/services"
	"raseed/internal/storage"
)

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	OK(w, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := s.deps.Ready(ctx); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			ErrorResponse(http.StatusServiceUnavailable, "not ready").Write(w)
			return
		}
	}
	OK(w, map[string]string{"status": "ready"})
}

func (s *Server) handleListInsights(w http.ResponseWriter, r *http.Request) {
	limit, err := ParseLimit(r.URL.Query(), "limit", storage.DefaultListLimit, storage.MaxListLimit)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	items, err := s.deps.Insights.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, log.OpList, err)
		return
	}
	out := insightListView{Insights: make([]insightView, len(items))}
	for i, in := range items {
		out.Insights[i] = newInsightView(in)
	}
	OK(w, out)
}

// writeError maps service errors to status codes and logs server-side
// failures.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	switch {
	case errors.Is(err, expenditure.ErrInvalidPeriod):
		NewJSONResponse().Status(http.StatusBadRequest).
			Body(ErrorBody{Error: err.Error(), ValidOptions: expenditure.ValidPeriods()}).
			Write(w)
	case errors.Is(err, expenditure.ErrEmptyPassStore):
		logger.LogError(ctx, "No passes available", err, op, nil)
		InternalServerError("could not fetch passes").Write(w)
	case errors.Is(err, services.ErrNoFile), errors.Is(err, services.ErrUnsupportedFileType):
		BadRequestError(err.Error()).Write(w)
	case errors.Is(err, services.ErrFileTooLarge):
		ErrorResponse(http.StatusRequestEntityTooLarge, err.Error()).Write(w)
	case isValidationError(err):
		UnprocessableEntityError(err.Error()).Write(w)
	case errors.Is(err, services.ErrExtraction):
		logger.LogError(ctx, "Receipt extraction failed", err, op, nil)
		BadGatewayError(err.Error()).Write(w)
	case errors.Is(err, services.ErrNoSpend):
		NotFoundError(err.Error()).Write(w)
	default:
		logger.LogError(ctx, "Request failed", err, op, nil)
		InternalServerError("internal server error").Write(w)
	}
}

func isValidationError(err error) bool {
	for _, target := range []error{
		core.ErrEmptyMerchant,
		core.ErrMerchantTooLong,
		core.ErrInvalidDate,
		core.ErrInvalidAmount,
		core.ErrEmptyCategory,
		services.ErrUnknownCategory,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
