package stripe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"toutaunclicla/domain"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T, h http.HandlerFunc) *StripeRepository {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	return NewStripeRepository(StripeConfig{
		StripeSecretKey: "sk_test_123",
		StripeBaseURL:   srv.URL,
		Currency:        "eur",
	})
}

func TestStripeRepository_Authorize(t *testing.T) {
	repo := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/payment_intents", r.URL.Path)
		assert.Equal(t, "order-key-1", r.Header.Get("Idempotency-Key"))

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "sk_test_123", user)
		assert.Empty(t, pass)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "5400", r.PostForm.Get("amount"))
		assert.Equal(t, "eur", r.PostForm.Get("currency"))
		assert.Equal(t, "true", r.PostForm.Get("confirm"))
		assert.Equal(t, "pm_card_visa", r.PostForm.Get("payment_method"))
		assert.Equal(t, "ord_1", r.PostForm.Get("metadata[order_id]"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_1","status":"succeeded","amount":5400,"currency":"eur"}`))
	})

	intent, err := repo.Authorize(context.Background(), domain.PaymentRequest{
		Amount:          decimal.RequireFromString("54.00"),
		PaymentMethodID: "pm_card_visa",
		IdempotencyKey:  "order-key-1",
		Metadata:        map[string]string{"order_id": "ord_1"},
	})
	require.NoError(t, err)

	assert.Equal(t, "pi_1", intent.ID)
	assert.True(t, intent.Succeeded())
	assert.True(t, intent.Amount.Equal(decimal.RequireFromString("54.00")))
}

func TestStripeRepository_CardDeclined(t *testing.T) {
	repo := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":{"type":"card_error","code":"card_declined","decline_code":"insufficient_funds","message":"Your card has insufficient funds."}}`))
	})

	_, err := repo.Authorize(context.Background(), domain.PaymentRequest{Amount: decimal.NewFromInt(10)})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusPaymentRequired, apiErr.StatusCode)
	assert.Equal(t, "card_declined", apiErr.Code)
	assert.Equal(t, "insufficient_funds", apiErr.DeclineCode)
	assert.True(t, apiErr.OutcomeKnown())
}

func TestAPIError_OutcomeKnown(t *testing.T) {
	tests := []struct {
		status int
		known  bool
	}{
		{http.StatusBadRequest, true},
		{http.StatusPaymentRequired, true},
		{http.StatusNotFound, true},
		{http.StatusConflict, false},
		{http.StatusInternalServerError, false},
		{http.StatusBadGateway, false},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.known, (&APIError{StatusCode: tt.status}).OutcomeKnown())
		})
	}
}

func TestStripeRepository_Refund(t *testing.T) {
	calls := 0
	repo := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/refunds", r.URL.Path)
		assert.Equal(t, "refund-pi_1", r.Header.Get("Idempotency-Key"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "pi_1", r.PostForm.Get("payment_intent"))

		_, _ = w.Write([]byte(`{"id":"re_1","status":"succeeded"}`))
	})

	require.NoError(t, repo.Refund(context.Background(), "pi_1"))
	assert.Equal(t, 1, calls)
}

func TestStripeRepository_TransportErrorIsWrapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	repo := NewStripeRepository(StripeConfig{StripeSecretKey: "sk", StripeBaseURL: srv.URL})
	err := repo.Refund(context.Background(), "pi_1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stripe refund")

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestStripeRepository_ListPaymentMethods(t *testing.T) {
	repo := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/customers/cus_1/payment_methods", r.URL.Path)
		assert.Equal(t, "card", r.URL.Query().Get("type"))
		_, _ = w.Write([]byte(`{"data":[{"id":"pm_1","type":"card","card":{"brand":"visa","last4":"4242","exp_month":12,"exp_year":2030}}]}`))
	})

	methods, err := repo.ListPaymentMethods(context.Background(), "cus_1")
	require.NoError(t, err)
	require.Len(t, methods, 1)
	assert.Equal(t, "4242", methods[0].Last4)
	assert.Equal(t, "visa", methods[0].Brand)
}

func TestToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(1999), toMinorUnits(decimal.RequireFromString("19.99")))
	assert.Equal(t, int64(5), toMinorUnits(decimal.RequireFromString("0.045")))
	assert.Equal(t, int64(0), toMinorUnits(decimal.Zero))
}
