package payments

import (
	"context"
	"fmt"

	"globapp-api/internal/config"
)

// Payment method tags accepted on the wire.
const (
	ProviderCash = "cash"
	ProviderCard = "card"
)

// UnknownProviderError is returned when a payment request names a method
// this deployment does not support.
type UnknownProviderError struct {
	Provider string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("unknown payment provider %q", e.Provider)
}

// Intent is a provider-side payment intent.
type Intent struct {
	Ref          string  `json:"ref"`
	ClientSecret *string `json:"client_secret,omitempty"`
	Status       string  `json:"status"`
}

// Provider abstracts a payment method. Implementations must be safe for
// concurrent use.
type Provider interface {
	Name() string
	CreateIntent(ctx context.Context, rideID string, amountCents int64) (*Intent, error)
	Confirm(ctx context.Context, ref string) (*Intent, error)
}

// NewProvider resolves a provider tag to an implementation. The card
// provider is only available when a gateway is configured.
func NewProvider(tag string, cfg *config.Config) (Provider, error) {
	switch tag {
	case ProviderCash:
		return &CashProvider{}, nil
	case ProviderCard:
		if cfg.CardGatewayURL == "" {
			return nil, &UnknownProviderError{Provider: tag}
		}
		return NewCardProvider(cfg.CardGatewayURL, cfg.CardGatewaySecret), nil
	default:
		return nil, &UnknownProviderError{Provider: tag}
	}
}
