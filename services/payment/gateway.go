package payment

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Outcome is the result of verifying a payment with the gateway
type Outcome string

const (
	OutcomeSuccess         Outcome = "success"
	OutcomeAlreadyVerified Outcome = "already_verified"
	OutcomeFailed          Outcome = "failed"
)

// Settled reports whether the gateway confirmed the money arrived
func (o Outcome) Settled() bool {
	return o == OutcomeSuccess || o == OutcomeAlreadyVerified
}

// InitiateRequest describes a payment to start
type InitiateRequest struct {
	Amount      int64
	Currency    string
	CallbackURL string
	OrderID     string
	Description string
	Mobile      string
}

// InitiateResult is the gateway's answer to a new payment
type InitiateResult struct {
	TrackingID  string
	RedirectURL string
	Raw         map[string]interface{}
}

// VerifyResult is the gateway's answer to a verification
type VerifyResult struct {
	Outcome   Outcome
	Code      int
	Message   string
	RefNumber string
	Raw       map[string]interface{}
}

// Gateway is implemented by every payment provider
type Gateway interface {
	// Name identifies the provider in stored transactions
	Name() string

	// Initiate registers a payment and returns where to send the payer
	Initiate(ctx context.Context, req InitiateRequest) (*InitiateResult, error)

	// Verify settles a payment. Repeating it for a settled payment reports
	// OutcomeAlreadyVerified or OutcomeSuccess, never an error.
	Verify(ctx context.Context, trackingID string) (*VerifyResult, error)

	// Inquire returns the provider's raw view of a payment without changing it
	Inquire(ctx context.Context, trackingID string) (map[string]interface{}, error)
}

// ErrGateway is matched by every gateway failure
var ErrGateway = errors.New("payment gateway error")

// Error is a failed gateway call. Timeout is set when the gateway did not answer in time.
type Error struct {
	Provider string
	Op       string
	Code     int
	Message  string
	Timeout  bool
	Err      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s failed", e.Provider, e.Op)
	if e.Code != 0 {
		msg += fmt.Sprintf(" (code %d)", e.Code)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrGateway, e.Err}
	}
	return []error{ErrGateway}
}

// IsTimeout reports whether err is a gateway timeout
func IsTimeout(err error) bool {
	var gwErr *Error
	if errors.As(err, &gwErr) && gwErr.Timeout {
		return true
	}
	return isTimeout(err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// transportError wraps a failed request, flagging timeouts
func transportError(provider, op string, err error) *Error {
	return &Error{Provider: provider, Op: op, Timeout: isTimeout(err), Err: err}
}

// DefaultTimeout bounds every gateway call
const DefaultTimeout = 15 * time.Second

// BaseService provides the shared HTTP client
type BaseService struct {
	client *http.Client
}

// NewBaseService creates a base service whose requests time out after timeout
func NewBaseService(timeout time.Duration) BaseService {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return BaseService{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Options configures the built-in providers
type Options struct {
	ZibalMerchant   string
	ZibalBaseURL    string
	StripeSecretKey string
	Timeout         time.Duration
}

var (
	providersMu sync.RWMutex
	providers   = map[string]Gateway{}
)

// RegisterProvider installs a gateway under name; a nil gateway removes it
func RegisterProvider(name string, g Gateway) {
	providersMu.Lock()
	defer providersMu.Unlock()
	name = strings.ToLower(name)
	if g == nil {
		delete(providers, name)
		return
	}
	providers[name] = g
}

// GetProvider returns a registered gateway or builds a built-in one
func GetProvider(name string, opts Options) (Gateway, error) {
	providersMu.RLock()
	g, ok := providers[strings.ToLower(name)]
	providersMu.RUnlock()
	if ok {
		return g, nil
	}

	switch strings.ToLower(name) {
	case "zibal", "":
		return NewZibalGateway(opts.ZibalMerchant, opts.ZibalBaseURL, opts.Timeout), nil
	case "stripe":
		if opts.StripeSecretKey == "" {
			return nil, fmt.Errorf("stripe secret key is not set")
		}
		return NewStripeGateway(opts.StripeSecretKey, opts.Timeout), nil
	default:
		return nil, fmt.Errorf("payment provider not implemented: %s", name)
	}
}
