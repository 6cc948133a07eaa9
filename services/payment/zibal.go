package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ZibalBaseURL is the production endpoint; the "zibal" merchant selects sandbox mode
var ZibalBaseURL = "https://gateway.zibal.ir"

// Zibal result codes
const (
	zibalResultSuccess         = 100
	zibalResultAlreadyVerified = 201
	zibalResultNotPaid         = 202
	zibalResultInvalidTrackID  = 203
)

// ZibalGateway implements Gateway for zibal.ir
type ZibalGateway struct {
	BaseService
	merchant string
	baseURL  string
}

// NewZibalGateway creates a Zibal gateway. Empty arguments fall back to the sandbox
// merchant and the production URL.
func NewZibalGateway(merchant, baseURL string, timeout time.Duration) *ZibalGateway {
	if merchant == "" {
		merchant = "zibal"
	}
	if baseURL == "" {
		baseURL = ZibalBaseURL
	}
	return &ZibalGateway{
		BaseService: NewBaseService(timeout),
		merchant:    merchant,
		baseURL:     strings.TrimRight(baseURL, "/"),
	}
}

// Name implements Gateway
func (z *ZibalGateway) Name() string {
	return "zibal"
}

type zibalRequest struct {
	Merchant    string `json:"merchant"`
	Amount      int64  `json:"amount"`
	CallbackURL string `json:"callbackUrl"`
	Description string `json:"description,omitempty"`
	OrderID     string `json:"orderId,omitempty"`
	Mobile      string `json:"mobile,omitempty"`
}

type zibalTrackRequest struct {
	Merchant string `json:"merchant"`
	TrackID  int64  `json:"trackId"`
}

type zibalResponse struct {
	Result    int             `json:"result"`
	Message   string          `json:"message"`
	TrackID   json.Number     `json:"trackId"`
	RefNumber json.RawMessage `json:"refNumber"`
	Status    int             `json:"status"`
}

// post sends body to path and decodes the reply into both the typed and the raw form
func (z *ZibalGateway) post(ctx context.Context, op, path string, body interface{}) (*zibalResponse, map[string]interface{}, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, nil, &Error{Provider: z.Name(), Op: op, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, z.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, nil, &Error{Provider: z.Name(), Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := z.client.Do(req)
	if err != nil {
		return nil, nil, transportError(z.Name(), op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, &Error{Provider: z.Name(), Op: op, Code: resp.StatusCode, Message: "API returned status " + strconv.Itoa(resp.StatusCode)}
	}

	var raw map[string]interface{}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, nil, transportError(z.Name(), op, fmt.Errorf("failed to decode response: %w", err))
	}
	// Re-encode the raw map so numeric fields keep their exact digits
	encoded, _ := json.Marshal(raw)
	var typed zibalResponse
	if err := json.Unmarshal(encoded, &typed); err != nil {
		return nil, nil, &Error{Provider: z.Name(), Op: op, Err: fmt.Errorf("unexpected response: %w", err)}
	}
	return &typed, raw, nil
}

// Initiate implements Gateway
func (z *ZibalGateway) Initiate(ctx context.Context, in InitiateRequest) (*InitiateResult, error) {
	if in.Amount <= 0 {
		return nil, &Error{Provider: z.Name(), Op: "request", Message: "amount must be positive"}
	}
	resp, raw, err := z.post(ctx, "request", "/v1/request", zibalRequest{
		Merchant:    z.merchant,
		Amount:      in.Amount,
		CallbackURL: in.CallbackURL,
		Description: in.Description,
		OrderID:     in.OrderID,
		Mobile:      in.Mobile,
	})
	if err != nil {
		return nil, err
	}
	if resp.Result != zibalResultSuccess || resp.TrackID == "" {
		return nil, &Error{Provider: z.Name(), Op: "request", Code: resp.Result, Message: resp.Message}
	}
	trackID := resp.TrackID.String()
	return &InitiateResult{
		TrackingID:  trackID,
		RedirectURL: z.baseURL + "/start/" + trackID,
		Raw:         raw,
	}, nil
}

func (z *ZibalGateway) trackRequest(op, trackingID string) (zibalTrackRequest, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(trackingID), 10, 64)
	if err != nil {
		return zibalTrackRequest{}, &Error{Provider: z.Name(), Op: op, Message: "invalid track id " + strconv.Quote(trackingID)}
	}
	return zibalTrackRequest{Merchant: z.merchant, TrackID: id}, nil
}

// Verify implements Gateway. 100 and 201 settle the payment; 202 and 203 are an explicit
// failure; any other result is an error.
func (z *ZibalGateway) Verify(ctx context.Context, trackingID string) (*VerifyResult, error) {
	body, err := z.trackRequest("verify", trackingID)
	if err != nil {
		return nil, err
	}
	resp, raw, err := z.post(ctx, "verify", "/v1/verify", body)
	if err != nil {
		return nil, err
	}

	result := &VerifyResult{Code: resp.Result, Message: resp.Message, RefNumber: rawString(resp.RefNumber), Raw: raw}
	switch resp.Result {
	case zibalResultSuccess:
		result.Outcome = OutcomeSuccess
	case zibalResultAlreadyVerified:
		result.Outcome = OutcomeAlreadyVerified
	case zibalResultNotPaid, zibalResultInvalidTrackID:
		result.Outcome = OutcomeFailed
	default:
		return nil, &Error{Provider: z.Name(), Op: "verify", Code: resp.Result, Message: resp.Message}
	}
	return result, nil
}

// Inquire implements Gateway
func (z *ZibalGateway) Inquire(ctx context.Context, trackingID string) (map[string]interface{}, error) {
	body, err := z.trackRequest("inquiry", trackingID)
	if err != nil {
		return nil, err
	}
	resp, raw, err := z.post(ctx, "inquiry", "/v1/inquiry", body)
	if err != nil {
		return nil, err
	}
	if resp.Result != zibalResultSuccess {
		return nil, &Error{Provider: z.Name(), Op: "inquiry", Code: resp.Result, Message: resp.Message}
	}
	return raw, nil
}

// rawString renders a JSON scalar that may arrive as a number or a string
func rawString(m json.RawMessage) string {
	s := string(m)
	if s == "" || s == "null" {
		return ""
	}
	return strings.Trim(s, `"`)
}
