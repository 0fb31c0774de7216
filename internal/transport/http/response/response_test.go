package response

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/corray333/backend-labs/checkout/internal/service/models/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantMsg  string
		wantCode string
	}{
		{
			name:     "item not found",
			err:      apperr.ItemNotFound("Z"),
			wantMsg:  "Item Z not found",
			wantCode: "item_not_found",
		},
		{
			name:     "unauthorized hides cause",
			err:      apperr.Unauthorized(errors.New("token expired")),
			wantMsg:  "Unauthorized",
			wantCode: "unauthorized",
		},
		{
			name:     "unclassified",
			err:      errors.New("pq: something internal"),
			wantMsg:  "Internal error",
			wantCode: "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(context.Background(), rec, tt.err)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.wantMsg, body["error"])
			assert.Equal(t, tt.wantCode, body["code"])
		})
	}
}
