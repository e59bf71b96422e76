// Package httputil centralizes JSON encoding and domain error translation for
// HTTP handlers so every endpoint returns the same envelopes.
package httputil

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	dErrors "intake/pkg/domain-errors"
)

// errorResponse is the wire shape for failures. Internal errors omit the
// description so infrastructure details never leak to clients.
type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into the JSON error envelope.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	resp := errorResponse{Error: string(code)}
	if code != dErrors.CodeInternal {
		resp.ErrorDescription = dErrors.MessageOf(err)
	}
	WriteJSON(w, StatusFor(code), resp)
}

// StatusFor maps domain error codes to HTTP status codes.
func StatusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest, dErrors.CodeValidation, dErrors.CodeMissingReason:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeSessionExpired:
		return http.StatusGone
	case dErrors.CodeConflict, dErrors.CodeDuplicateIdentifier,
		dErrors.CodeInvalidTransition, dErrors.CodeAlreadyApproved,
		dErrors.CodeAlreadyRejected, dErrors.CodeInvalidState:
		return http.StatusConflict
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// DecodeAndPrepare decodes the request body into T and runs its Validate
// method when present. On failure it writes the error response and returns
// ok=false so handlers can bail out with a single if.
func DecodeAndPrepare[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body",
			"request_id", requestID,
			"error", err.Error(),
		)
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		var zero T
		return zero, false
	}
	if v, ok := any(&req).(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			WriteError(w, err)
			var zero T
			return zero, false
		}
	}
	return req, true
}
