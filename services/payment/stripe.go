package payment

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
)

// StripeGateway implements Gateway with Stripe Checkout sessions
type StripeGateway struct {
	sessions session.Client
}

// NewStripeGateway creates a gateway using the given secret key
func NewStripeGateway(secretKey string, timeout time.Duration) *StripeGateway {
	base := NewBaseService(timeout)
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		HTTPClient: base.client,
	})
	return NewStripeGatewayWithBackend(secretKey, backend)
}

// NewStripeGatewayWithBackend creates a gateway over a specific Stripe backend
func NewStripeGatewayWithBackend(secretKey string, backend stripe.Backend) *StripeGateway {
	return &StripeGateway{sessions: session.Client{B: backend, Key: secretKey}}
}

// Name implements Gateway
func (s *StripeGateway) Name() string {
	return "stripe"
}

// Initiate implements Gateway by opening a one-item Checkout session
func (s *StripeGateway) Initiate(ctx context.Context, in InitiateRequest) (*InitiateResult, error) {
	if in.Amount <= 0 {
		return nil, &Error{Provider: s.Name(), Op: "request", Message: "amount must be positive"}
	}
	currency := strings.ToLower(in.Currency)
	if currency == "" {
		currency = "irr"
	}
	description := in.Description
	if description == "" {
		description = "Payment " + in.OrderID
	}
	returnURL := in.CallbackURL
	if strings.Contains(returnURL, "?") {
		returnURL += "&"
	} else {
		returnURL += "?"
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(in.OrderID),
		SuccessURL:        stripe.String(returnURL + "success=1&trackId={CHECKOUT_SESSION_ID}"),
		CancelURL:         stripe.String(returnURL + "success=0&trackId={CHECKOUT_SESSION_ID}"),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(currency),
					UnitAmount: stripe.Int64(in.Amount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(description),
					},
				},
			},
		},
	}
	params.Context = ctx

	cs, err := s.sessions.New(params)
	if err != nil {
		return nil, stripeError(s.Name(), "request", err)
	}
	return &InitiateResult{
		TrackingID:  cs.ID,
		RedirectURL: cs.URL,
		Raw:         sessionRaw(cs),
	}, nil
}

// Verify implements Gateway. Stripe settles on its own, so verifying a paid session
// always reports success; an expired session is an explicit failure.
func (s *StripeGateway) Verify(ctx context.Context, trackingID string) (*VerifyResult, error) {
	cs, err := s.get(ctx, "verify", trackingID)
	if err != nil {
		return nil, err
	}
	raw := sessionRaw(cs)
	switch {
	case cs.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid:
		return &VerifyResult{Outcome: OutcomeSuccess, Message: string(cs.Status), RefNumber: cs.ID, Raw: raw}, nil
	case cs.Status == stripe.CheckoutSessionStatusExpired:
		return &VerifyResult{Outcome: OutcomeFailed, Message: string(cs.Status), Raw: raw}, nil
	default:
		return nil, &Error{Provider: s.Name(), Op: "verify", Message: "checkout session is " + string(cs.Status) + " and " + string(cs.PaymentStatus)}
	}
}

// Inquire implements Gateway
func (s *StripeGateway) Inquire(ctx context.Context, trackingID string) (map[string]interface{}, error) {
	cs, err := s.get(ctx, "inquiry", trackingID)
	if err != nil {
		return nil, err
	}
	return sessionRaw(cs), nil
}

func (s *StripeGateway) get(ctx context.Context, op, trackingID string) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	cs, err := s.sessions.Get(trackingID, params)
	if err != nil {
		return nil, stripeError(s.Name(), op, err)
	}
	return cs, nil
}

func sessionRaw(cs *stripe.CheckoutSession) map[string]interface{} {
	return map[string]interface{}{
		"id":                  cs.ID,
		"status":              string(cs.Status),
		"payment_status":      string(cs.PaymentStatus),
		"amount_total":        cs.AmountTotal,
		"currency":            string(cs.Currency),
		"client_reference_id": cs.ClientReferenceID,
	}
}

// stripeError maps a stripe-go failure onto a gateway Error
func stripeError(provider, op string, err error) *Error {
	var se *stripe.Error
	if errors.As(err, &se) {
		code := se.HTTPStatusCode
		return &Error{
			Provider: provider,
			Op:       op,
			Code:     code,
			Message:  se.Msg,
			Timeout:  code == http.StatusGatewayTimeout || code == http.StatusRequestTimeout,
			Err:      err,
		}
	}
	return transportError(provider, op, err)
}
