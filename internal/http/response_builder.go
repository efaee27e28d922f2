package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"salesboard/internal/core"
	applog "salesboard/internal/log"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorBody{Error: msg})
}

// statusFor maps a query error onto an HTTP status and a client-safe message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrInvalidMonth),
		errors.Is(err, core.ErrInvalidPage),
		errors.Is(err, core.ErrInvalidPerPage):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "query timed out"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// writeError logs the failure and writes the JSON error. fields may be nil.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error, fields applog.LogFields) {
	if fields == nil {
		fields = applog.NewFields()
	}
	ctx := r.Context()
	logger := applog.FromContext(ctx)

	status, msg := statusFor(err)
	switch {
	case status < http.StatusInternalServerError:
		fields.
			WithErrorType(applog.ErrorTypeValidation).
			WithError(err).
			WithOperation(op).
			WithComponent(applog.ComponentHTTP)
		logger.DebugContext(ctx, "Rejected query parameters", fields.ToSlice()...)
	case status == http.StatusGatewayTimeout:
		applog.NewStructuredLogger(logger).LogError(ctx, "Query timed out", err,
			applog.ComponentQuery, op, fields.WithErrorType(applog.ErrorTypeTimeout))
	default:
		applog.NewStructuredLogger(logger).LogError(ctx, "Query failed", err,
			applog.ComponentQuery, op, fields.WithErrorType(applog.ErrorTypeDatabase))
	}
	writeErrorMessage(w, status, msg)
}

func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	writeErrorMessage(w, http.StatusMethodNotAllowed, "method not allowed")
}
