package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tiendazen/payment-service/internal/application/services"
	"github.com/tiendazen/payment-service/internal/config"
	"github.com/tiendazen/payment-service/internal/domain"
	"github.com/tiendazen/payment-service/internal/interfaces/rest/handlers"
	"github.com/tiendazen/payment-service/internal/sign"
)

const testSecret = "handler-secret"

func newTestMux(store *services.MockOrderStore, gw *services.MockGatewayClient) *http.ServeMux {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	commerce := config.CommerceConfig{
		PublicBaseURL: "https://pay.example",
		StoreBaseURL:  "https://store.example",
		OrderPrefix:   "tz",
		MinAmount:     350,
		Currency:      "CLP",
	}

	checkout := services.NewCheckoutService(store, gw, commerce, logger)
	confirmation := services.NewConfirmationService(store, gw, testSecret, logger)

	h := handlers.NewHandlers(checkout, confirmation, commerce.StoreBaseURL, logger)

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return mux
}

func seedPaidableOrder(t *testing.T, store *services.MockOrderStore) *domain.Order {
	t.Helper()
	token := "tok-1"
	now := time.Now().UTC()
	order := &domain.Order{
		CommerceOrderID: "tz_1700000000000_abcdef123456",
		GatewayToken:    &token,
		TotalAmount:     12990,
		LineItems: []domain.LineItem{
			{ProductID: "p-1", Name: "Mate gourd", UnitPrice: 12990, Quantity: 1},
		},
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, store.Create(context.Background(), order))
	return order
}

func TestHandleCreate_Success(t *testing.T) {
	store := services.NewMockOrderStore()
	mux := newTestMux(store, &services.MockGatewayClient{})

	body := `{
		"amount": 12990,
		"items": [{"productId": "p-1", "name": "Mate gourd", "unitPrice": 12990, "quantity": 1}],
		"email": "buyer@example.com"
	}`

	req := httptest.NewRequest(http.MethodPost, "/payment/create", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			URL           string `json:"url"`
			Token         string `json:"token"`
			CommerceOrder string `json:"commerceOrder"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Data.URL)
	assert.NotEmpty(t, resp.Data.Token)
	assert.True(t, strings.HasPrefix(resp.Data.CommerceOrder, "tz_"))
}

func TestHandleCreate_InvalidBody(t *testing.T) {
	mux := newTestMux(services.NewMockOrderStore(), &services.MockGatewayClient{})

	req := httptest.NewRequest(http.MethodPost, "/payment/create", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCreate_MissingItems(t *testing.T) {
	mux := newTestMux(services.NewMockOrderStore(), &services.MockGatewayClient{})

	req := httptest.NewRequest(http.MethodPost, "/payment/create", strings.NewReader(`{"amount": 1000, "items": []}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCreate_BelowMinimum(t *testing.T) {
	gw := &services.MockGatewayClient{}
	mux := newTestMux(services.NewMockOrderStore(), gw)

	body := `{
		"amount": 300,
		"items": [{"productId": "p-1", "name": "Sticker", "unitPrice": 300, "quantity": 1}]
	}`
	req := httptest.NewRequest(http.MethodPost, "/payment/create", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.ErrCodeBelowMinimum, resp.Error.Code)
	assert.Equal(t, 0, gw.GetCalls("CreatePayment"))
}

func TestHandleConfirm_Malformed(t *testing.T) {
	mux := newTestMux(services.NewMockOrderStore(), &services.MockGatewayClient{})

	req := httptest.NewRequest(http.MethodPost, "/payment/confirm", strings.NewReader("token=tok-1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleConfirm_Paid(t *testing.T) {
	store := services.NewMockOrderStore()
	order := seedPaidableOrder(t, store)
	mux := newTestMux(store, &services.MockGatewayClient{})

	form := url.Values{}
	form.Set("token", "tok-1")
	form.Set("commerceOrder", order.CommerceOrderID)

	req := httptest.NewRequest(http.MethodPost, "/payment/confirm", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool   `json:"success"`
		Status  string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "paid", resp.Status)
}

func TestHandleConfirm_SignedCallbackViaQuery(t *testing.T) {
	store := services.NewMockOrderStore()
	order := seedPaidableOrder(t, store)
	mux := newTestMux(store, &services.MockGatewayClient{})

	fields := map[string]string{
		"token":         "tok-1",
		"commerceOrder": order.CommerceOrderID,
	}
	query := url.Values{}
	for name, value := range fields {
		query.Set(name, value)
	}
	query.Set(sign.Field, sign.Sign(fields, testSecret))

	req := httptest.NewRequest(http.MethodGet, "/payment/confirm?"+query.Encode(), nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleConfirm_BadSignature(t *testing.T) {
	store := services.NewMockOrderStore()
	order := seedPaidableOrder(t, store)
	mux := newTestMux(store, &services.MockGatewayClient{})

	form := url.Values{}
	form.Set("token", "tok-1")
	form.Set("commerceOrder", order.CommerceOrderID)
	form.Set(sign.Field, "deadbeef")

	req := httptest.NewRequest(http.MethodPost, "/payment/confirm", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, domain.StatusPending, order.Status)
}

func TestHandleConfirm_ReconciliationFailureStillAcknowledged(t *testing.T) {
	store := services.NewMockOrderStore()
	store.TransitionFn = func(ctx context.Context, commerceOrderID string, target domain.OrderStatus) (*domain.Order, error) {
		return nil, context.DeadlineExceeded
	}
	mux := newTestMux(store, &services.MockGatewayClient{})

	form := url.Values{}
	form.Set("token", "tok-1")
	form.Set("commerceOrder", "tz_1700000000000_abcdef123456")

	req := httptest.NewRequest(http.MethodPost, "/payment/confirm", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	// The gateway still gets a 200 so it stops retrying; the gap is
	// flagged in the body and the logs instead.
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "reconciliation")
}

func TestHandleReturn_Redirects(t *testing.T) {
	mux := newTestMux(services.NewMockOrderStore(), &services.MockGatewayClient{})

	tests := []struct {
		name   string
		status string
		want   string
	}{
		{"paid", "2", "payment=success"},
		{"rejected", "3", "payment=error"},
		{"missing", "", "payment=error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query := url.Values{}
			query.Set("token", "tok-1")
			query.Set("commerceOrder", "tz_1_abc")
			if tt.status != "" {
				query.Set("status", tt.status)
			}

			req := httptest.NewRequest(http.MethodGet, "/payment/return?"+query.Encode(), nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			require.Equal(t, http.StatusFound, rec.Code)
			location := rec.Header().Get("Location")
			assert.True(t, strings.HasPrefix(location, "https://store.example/cart?"))
			assert.Contains(t, location, tt.want)
			assert.Contains(t, location, "order=tz_1_abc")
		})
	}
}
