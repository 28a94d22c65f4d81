package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// CheckoutClient is the HTTP implementation of Provider.
type CheckoutClient struct {
	client    *http.Client
	baseURL   string
	secretKey string
}

var _ Provider = (*CheckoutClient)(nil)

func NewCheckoutClient(baseURL, secretKey string) *CheckoutClient {
	return &CheckoutClient{
		client:    &http.Client{Timeout: 15 * time.Second},
		baseURL:   baseURL,
		secretKey: secretKey,
	}
}

func (c *CheckoutClient) CreateCheckoutSession(ctx context.Context, p CreateSessionParams) (*Session, error) {
	if p.Currency == "" {
		p.Currency = "usd"
	}
	var s Session
	if err := c.do(ctx, http.MethodPost, "/checkout/sessions", p, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *CheckoutClient) RetrieveSession(ctx context.Context, sessionID string) (*Session, error) {
	var s Session
	if err := c.do(ctx, http.MethodGet, "/checkout/sessions/"+sessionID, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *CheckoutClient) RetrievePaymentIntent(ctx context.Context, intentID string) (*Intent, error) {
	var i Intent
	if err := c.do(ctx, http.MethodGet, "/payment_intents/"+intentID, nil, &i); err != nil {
		return nil, err
	}
	return &i, nil
}

func (c *CheckoutClient) CapturePaymentIntent(ctx context.Context, intentID string) error {
	return c.do(ctx, http.MethodPost, "/payment_intents/"+intentID+"/capture", nil, nil)
}

func (c *CheckoutClient) CancelPaymentIntent(ctx context.Context, intentID string) error {
	return c.do(ctx, http.MethodPost, "/payment_intents/"+intentID+"/cancel", nil, nil)
}

func (c *CheckoutClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("call %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s returned %d: %s", method, path, resp.StatusCode, msg)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
