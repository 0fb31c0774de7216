package response

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/corray333/backend-labs/checkout/internal/service/models/apperr"
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

// WriteJSON writes body with the given status code.
func WriteJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.ErrorContext(ctx, "Error sending response", "error", err)
	}
}

// WriteError reports err to the caller as a 400 with its message and kind code.
// Errors without a kind are reported with a generic message.
func WriteError(ctx context.Context, w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	msg := err.Error()
	if kind == apperr.KindInternal {
		msg = "Internal error"
	}

	slog.WarnContext(ctx, "Request failed", "code", kind.Code(), "error", err)

	WriteJSON(ctx, w, http.StatusBadRequest, errorResponse{
		Success: false,
		Error:   msg,
		Code:    kind.Code(),
	})
}
