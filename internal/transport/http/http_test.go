package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/corray333/backend-labs/checkout/internal/service/models/apperr"
	"github.com/corray333/backend-labs/checkout/internal/service/models/order"
	"github.com/corray333/backend-labs/checkout/internal/service/models/session"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	receipt order.Receipt
	err     error
}

func (s *stubService) Authenticate(_ context.Context, authorization string) (session.Session, error) {
	if authorization != "Bearer good" {
		return session.Session{}, apperr.Unauthorized(errors.New("rejected"))
	}

	return session.Session{UserID: "user-1"}, nil
}

func (s *stubService) CreateOrder(context.Context, session.Session, order.CreateRequest) (order.Receipt, error) {
	return s.receipt, s.err
}

func (s *stubService) ListOrders(context.Context, session.Session, order.QueryOrdersModel) ([]order.Order, error) {
	return []order.Order{}, s.err
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func newTestTransport(t *testing.T, svc *stubService, db pinger) http.Handler {
	t.Helper()

	viper.Set("server.http.cors.allowed_origins", []string{"*"})
	viper.Set("server.http.cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	viper.Set("server.http.cors.allowed_headers", []string{"authorization", "x-client-info", "apikey", "content-type"})
	t.Cleanup(viper.Reset)

	h := NewHTTPTransport(svc, db)
	h.RegisterRoutes()

	return h.Handler()
}

const body = `{"recipient_name":"Bob","shipping_address":"1 Main St","items":[{"item_id":"A","quantity":2}]}`

func TestPreflight(t *testing.T) {
	handler := newTestTransport(t, &stubService{}, stubPinger{})

	req := httptest.NewRequest(http.MethodOptions, "/api/orders", nil)
	req.Header.Set("Origin", "https://shop.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "authorization, content-type")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
	assert.Contains(t, strings.ToLower(rec.Header().Get("Access-Control-Allow-Headers")), "authorization")
}

func TestPlainOptions(t *testing.T) {
	handler := newTestTransport(t, &stubService{}, stubPinger{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/orders", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestCreateOrder_CORSOnEveryOutcome(t *testing.T) {
	tests := []struct {
		name       string
		auth       string
		svc        *stubService
		wantStatus int
	}{
		{
			name:       "success",
			auth:       "Bearer good",
			svc:        &stubService{receipt: order.Receipt{OrderID: uuid.New(), OrderTotalCents: 2500}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "unauthorized",
			auth:       "Bearer nope",
			svc:        &stubService{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "item not found",
			auth:       "Bearer good",
			svc:        &stubService{err: apperr.ItemNotFound("Z")},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestTransport(t, tt.svc, stubPinger{})

			req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
			req.Header.Set("Origin", "https://shop.example")
			req.Header.Set("Authorization", tt.auth)
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestHealthz(t *testing.T) {
	handler := newTestTransport(t, &stubService{}, stubPinger{})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	handler = newTestTransport(t, &stubService{}, stubPinger{err: errors.New("down")})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var out map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "unavailable", out["status"])
}
