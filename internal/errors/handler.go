package errors

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

// ErrorHandler converts errors into RFC 7807 responses and logs them
// with request context.
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler creates an error handler.
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{
		logger: logger.With(slog.String("component", "error_handler")),
	}
}

// HandleError logs err and writes its problem-details response.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	reqID := middleware.GetReqID(r.Context())
	h.logger.ErrorContext(r.Context(), "request failed",
		slog.String("error", err.Error()),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path))

	problem := h.ErrorToProblem(err, r)
	if reqID != "" {
		problem.WithExtension("trace_id", reqID)
	}
	h.writeProblem(w, r, problem)
}

// writeProblem writes the response directly; go-chi/render's JSON
// responder would overwrite the problem+json content type.
func (h *ErrorHandler) writeProblem(w http.ResponseWriter, r *http.Request, problem *ProblemDetails) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(problem.Status)
	if err := json.NewEncoder(w).Encode(problem); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to write problem response",
			slog.String("error", err.Error()))
	}
}

// ErrorToProblem maps an error to its RFC 7807 representation.
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return NewProblemDetails(
			http.StatusGatewayTimeout,
			TypeTimeout,
			"Request Timeout",
			"The request took too long to process and was cancelled",
			r.URL.Path,
		)
	case errors.Is(err, ErrPlanNotFound):
		return NewProblemDetails(
			http.StatusNotFound,
			TypePlanNotFound,
			"Plan Not Found",
			err.Error(),
			r.URL.Path,
		)
	case errors.Is(err, ErrPlanInvalid):
		return NewProblemDetails(
			http.StatusUnprocessableEntity,
			TypePlanInvalid,
			"Plan Rejected",
			err.Error(),
			r.URL.Path,
		)
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := make([]string, 0, len(validationErrs))
		for _, fe := range validationErrs {
			fields = append(fields, fe.Namespace())
		}
		return NewProblemDetails(
			http.StatusUnprocessableEntity,
			TypeValidation,
			"Validation Failed",
			"One or more records failed validation",
			r.URL.Path,
		).WithExtension("fields", fields)
	}

	var problem *ProblemDetails
	if errors.As(err, &problem) {
		return problem
	}

	return NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred",
		r.URL.Path,
	)
}

// Error implements the error interface so handlers can return problems
// directly.
func (pd *ProblemDetails) Error() string {
	return pd.Title + ": " + pd.Detail
}
