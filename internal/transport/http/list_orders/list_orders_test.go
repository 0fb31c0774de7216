package listorders

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/corray333/backend-labs/checkout/internal/service/models/apperr"
	"github.com/corray333/backend-labs/checkout/internal/service/models/order"
	"github.com/corray333/backend-labs/checkout/internal/service/models/orderitem"
	"github.com/corray333/backend-labs/checkout/internal/service/models/session"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	orders []order.Order
	err    error
	got    *order.QueryOrdersModel
}

func (s *stubService) Authenticate(_ context.Context, authorization string) (session.Session, error) {
	if authorization != "Bearer good" {
		return session.Session{}, apperr.Unauthorized(errors.New("rejected"))
	}

	return session.Session{UserID: "user-1"}, nil
}

func (s *stubService) ListOrders(_ context.Context, _ session.Session, query order.QueryOrdersModel) ([]order.Order, error) {
	s.got = &query

	return s.orders, s.err
}

func serve(svc *stubService, target, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	ListOrders(rec, req, svc)

	return rec
}

func TestListOrders(t *testing.T) {
	id := uuid.New()
	svc := &stubService{orders: []order.Order{{
		ID:              id,
		UserID:          "user-1",
		ShippingAddress: json.RawMessage(`"1 Main St"`),
		Status:          order.StatusCreated,
		TotalCents:      1500,
		OrderItems:      []orderitem.OrderItem{{ID: 1, OrderID: id, ItemID: "A", Quantity: 1}},
	}}}

	rec := serve(svc, "/api/orders?limit=10&offset=20", "Bearer good")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, order.QueryOrdersModel{Limit: 10, Offset: 20}, *svc.got)

	var body struct {
		Success bool          `json:"success"`
		Orders  []order.Order `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.Len(t, body.Orders, 1)
	assert.Equal(t, id, body.Orders[0].ID)
	assert.Len(t, body.Orders[0].OrderItems, 1)
}

func TestListOrders_DefaultLimit(t *testing.T) {
	svc := &stubService{}

	rec := serve(svc, "/api/orders", "Bearer good")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, defaultLimit, svc.got.Limit)
}

func TestListOrders_Errors(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		auth     string
		svcErr   error
		wantCode string
	}{
		{name: "unauthorized", target: "/api/orders", wantCode: "unauthorized"},
		{name: "bad limit", target: "/api/orders?limit=abc", auth: "Bearer good", wantCode: "malformed_request"},
		{name: "limit too large", target: "/api/orders?limit=1000", auth: "Bearer good", wantCode: "malformed_request"},
		{name: "negative offset", target: "/api/orders?offset=-1", auth: "Bearer good", wantCode: "malformed_request"},
		{
			name:     "store failure",
			target:   "/api/orders",
			auth:     "Bearer good",
			svcErr:   apperr.Persistence("failed to query orders", errors.New("timeout")),
			wantCode: "persistence_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(&stubService{err: tt.svcErr}, tt.target, tt.auth)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.wantCode, body["code"])
		})
	}
}
