package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// CardProvider talks to an external card gateway over HTTP.
type CardProvider struct {
	baseURL string
	secret  string
	client  *http.Client
}

// NewCardProvider creates a card provider for the given gateway.
func NewCardProvider(baseURL, secret string) *CardProvider {
	return &CardProvider{
		baseURL: baseURL,
		secret:  secret,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *CardProvider) Name() string { return ProviderCard }

func (p *CardProvider) CreateIntent(ctx context.Context, rideID string, amountCents int64) (*Intent, error) {
	return p.post(ctx, "/v1/intents", map[string]any{
		"reference":    rideID,
		"amount_cents": amountCents,
		"currency":     "usd",
	})
}

func (p *CardProvider) Confirm(ctx context.Context, ref string) (*Intent, error) {
	return p.post(ctx, "/v1/intents/"+ref+"/confirm", map[string]any{})
}

func (p *CardProvider) post(ctx context.Context, path string, body map[string]any) (*Intent, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.secret)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("card gateway: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("card gateway status %d", resp.StatusCode)
	}

	var out struct {
		ID           string  `json:"id"`
		ClientSecret *string `json:"client_secret"`
		Status       string  `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("card gateway decode: %w", err)
	}
	return &Intent{Ref: out.ID, ClientSecret: out.ClientSecret, Status: out.Status}, nil
}
