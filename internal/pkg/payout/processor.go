package payout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/EivindHaugen/SponsorFlow/internal/pkg/env"
)

const defaultProcessorBaseURL = "https://api.payment-processor.test/v1"

// Client is the interface the registry and checkout services call out
// through. All calls block the handling request; a timeout is treated like
// any other processor error.
type Client interface {
	CreateAccount(ctx context.Context, req CreateAccountRequest, idempotencyKey string) (*Account, error)
	CreateAccountLink(ctx context.Context, accountID string, req CreateAccountLinkRequest, idempotencyKey string) (*AccountLink, error)
	GetAccount(ctx context.Context, accountID string) (*Account, error)
	CreatePaymentIntent(ctx context.Context, req CreatePaymentIntentRequest) (*PaymentIntent, error)
}

// CreateAccountRequest creates a payout-capable connected account.
type CreateAccountRequest struct {
	Email        string `json:"email"`
	BusinessName string `json:"business_name"`
	Country      string `json:"country"`
}

// CreateAccountLinkRequest mints a time-boxed onboarding link.
type CreateAccountLinkRequest struct {
	ReturnURL  string `json:"return_url"`
	RefreshURL string `json:"refresh_url"`
}

// Account mirrors the processor's account resource. The three flags are the
// only fields the registry derives local status from.
type Account struct {
	ID               string `json:"id"`
	ChargesEnabled   bool   `json:"charges_enabled"`
	PayoutsEnabled   bool   `json:"payouts_enabled"`
	DetailsSubmitted bool   `json:"details_submitted"`
}

// AccountLink is a single-use onboarding URL with an expiry.
type AccountLink struct {
	URL       string `json:"url"`
	ExpiresAt int64  `json:"expires_at"`
}

// CreatePaymentIntentRequest charges a sponsor. ApplicationFee is retained by
// the platform; the remainder is routed to the destination account. Metadata
// carries the attribution tuple so any charge explains itself without a join
// back into local storage.
type CreatePaymentIntentRequest struct {
	Amount             int64             `json:"amount"`
	Currency           string            `json:"currency"`
	ApplicationFee     int64             `json:"application_fee_amount"`
	DestinationAccount string            `json:"destination_account"`
	ReceiptEmail       string            `json:"receipt_email,omitempty"`
	Metadata           map[string]string `json:"metadata,omitempty"`
}

// PaymentIntent is the processor's charge resource.
type PaymentIntent struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Amount int64  `json:"amount"`
}

// HTTPClient talks to the processor's REST API. Idempotency keys are passed
// through on the header the processor deduplicates on.
type HTTPClient struct {
	BaseURL   string
	SecretKey string

	HTTP *http.Client
}

// NewClientFromEnv builds a processor client from environment configuration.
// External calls use a finite timeout; there is no internal retry loop.
func NewClientFromEnv() *HTTPClient {
	return &HTTPClient{
		BaseURL:   strings.TrimRight(env.GetEnv("PROCESSOR_API_BASE_URL", defaultProcessorBaseURL), "/"),
		SecretKey: strings.TrimSpace(env.GetEnv("PROCESSOR_SECRET_KEY", "")),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *HTTPClient) CreateAccount(ctx context.Context, req CreateAccountRequest, idempotencyKey string) (*Account, error) {
	if strings.TrimSpace(req.Email) == "" {
		return nil, errors.New("account email is required")
	}
	var out Account
	if err := c.do(ctx, http.MethodPost, "/accounts", req, idempotencyKey, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.ID) == "" {
		return nil, errors.New("processor returned account without id")
	}
	return &out, nil
}

func (c *HTTPClient) CreateAccountLink(ctx context.Context, accountID string, req CreateAccountLinkRequest, idempotencyKey string) (*AccountLink, error) {
	if strings.TrimSpace(accountID) == "" {
		return nil, errors.New("account id is required")
	}
	var out AccountLink
	path := "/accounts/" + url.PathEscape(accountID) + "/links"
	if err := c.do(ctx, http.MethodPost, path, req, idempotencyKey, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.URL) == "" {
		return nil, errors.New("processor returned empty onboarding link")
	}
	return &out, nil
}

func (c *HTTPClient) GetAccount(ctx context.Context, accountID string) (*Account, error) {
	if strings.TrimSpace(accountID) == "" {
		return nil, errors.New("account id is required")
	}
	var out Account
	if err := c.do(ctx, http.MethodGet, "/accounts/"+url.PathEscape(accountID), nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) CreatePaymentIntent(ctx context.Context, req CreatePaymentIntentRequest) (*PaymentIntent, error) {
	if req.Amount <= 0 {
		return nil, errors.New("payment amount must be positive")
	}
	var out PaymentIntent
	if err := c.do(ctx, http.MethodPost, "/payment_intents", req, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, payload interface{}, idempotencyKey string, out interface{}) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode processor request: %w", err)
		}
		body = strings.NewReader(string(encoded))
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.SecretKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.SecretKey)
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &ProcessorError{Code: "network_error", Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeProcessorError(resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode processor response: %w", err)
	}
	return nil
}

func decodeProcessorError(status int, raw []byte) error {
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Code != "" {
		return &ProcessorError{
			Code:       envelope.Error.Code,
			Message:    envelope.Error.Message,
			HTTPStatus: status,
		}
	}
	return &ProcessorError{
		Code:       "http_" + strconv.Itoa(status),
		Message:    strings.TrimSpace(string(raw)),
		HTTPStatus: status,
	}
}
