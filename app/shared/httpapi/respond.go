// Package httpapi holds the JSON plumbing and middleware shared by the HTTP handlers.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Black-And-White-Club/truthtable/app/shared/attr"
	"github.com/Black-And-White-Club/truthtable/app/shared/gameerrors"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

// ErrorBody is the JSON error envelope.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Kind    gameerrors.Kind `json:"kind"`
	Message string          `json:"message"`
	Details map[string]int  `json:"details,omitempty"`
}

// StatusFor maps an error kind onto an HTTP status.
func StatusFor(kind gameerrors.Kind) int {
	switch kind {
	case gameerrors.KindNotFound:
		return http.StatusNotFound
	case gameerrors.KindDuplicateDecision, gameerrors.KindAlreadyPurchased, gameerrors.KindConcurrencyConflict:
		return http.StatusConflict
	case gameerrors.KindInsufficientBudget:
		return http.StatusPaymentRequired
	case gameerrors.KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError renders err as the JSON error envelope. Unclassified errors are
// logged and reported without their internal text.
func WriteError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	kind := gameerrors.KindOf(err)
	status := StatusFor(kind)
	body := ErrorBody{Error: ErrorDetail{
		Kind:    kind,
		Message: gameerrors.MessageOf(err),
		Details: gameerrors.DetailsOf(err),
	}}
	if status >= http.StatusInternalServerError && logger != nil {
		logger.ErrorContext(r.Context(), "Request failed",
			attr.ExtractCorrelationID(r.Context()),
			attr.String("method", r.Method),
			attr.String("path", r.URL.Path),
			attr.Error(err),
		)
	}
	WriteJSON(w, status, body)
}

// DecodeBody decodes a JSON request body into T, rejecting unknown fields.
func DecodeBody[T any](r *http.Request) (T, error) {
	var out T
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		if errors.Is(err, io.EOF) {
			return out, gameerrors.Validation("request body is required")
		}
		return out, gameerrors.Wrap(gameerrors.KindValidation, err, "malformed request body")
	}
	return out, nil
}

// IntParam parses a positive integer path parameter.
func IntParam(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, gameerrors.Validation("%s must be a positive integer, got %q", name, raw)
	}
	return n, nil
}

// PathParam returns a required string path parameter.
func PathParam(r *http.Request, name string) (string, error) {
	v := chi.URLParam(r, name)
	if v == "" {
		return "", gameerrors.Validation("%s is required", name)
	}
	return v, nil
}
