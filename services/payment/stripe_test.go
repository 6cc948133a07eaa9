package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
)

func stripeTestGateway(t *testing.T, handler http.HandlerFunc) *StripeGateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	return NewStripeGatewayWithBackend("sk_test_123", backend)
}

func TestStripeInitiate(t *testing.T) {
	gw := stripeTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "bf-1", r.PostForm.Get("client_reference_id"))
		assert.Equal(t, "250000", r.PostForm.Get("line_items[0][price_data][unit_amount]"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_test_1","object":"checkout.session","url":"https://checkout.stripe.test/cs_test_1","status":"open","payment_status":"unpaid"}`))
	})

	res, err := gw.Initiate(context.Background(), InitiateRequest{Amount: 250000, OrderID: "bf-1", CallbackURL: "http://app/payments/callback"})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", res.TrackingID)
	assert.Equal(t, "https://checkout.stripe.test/cs_test_1", res.RedirectURL)
}

func TestStripeVerify(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		outcome Outcome
		wantErr bool
	}{
		{"paid", `{"id":"cs_1","object":"checkout.session","status":"complete","payment_status":"paid"}`, OutcomeSuccess, false},
		{"expired", `{"id":"cs_1","object":"checkout.session","status":"expired","payment_status":"unpaid"}`, OutcomeFailed, false},
		{"still open", `{"id":"cs_1","object":"checkout.session","status":"open","payment_status":"unpaid"}`, "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gw := stripeTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v1/checkout/sessions/cs_1", r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tc.body))
			})

			res, err := gw.Verify(context.Background(), "cs_1")
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrGateway)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.outcome, res.Outcome)
		})
	}
}

func TestStripeAPIError(t *testing.T) {
	gw := stripeTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"No such checkout.session"}}`))
	})

	_, err := gw.Inquire(context.Background(), "cs_missing")
	require.Error(t, err)
	var gwErr *Error
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, http.StatusNotFound, gwErr.Code)
	assert.False(t, gwErr.Timeout)
}
