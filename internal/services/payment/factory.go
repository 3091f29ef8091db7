package payment

import (
	"context"
	"fmt"
)

// Factory creates gateway instances based on provider type.
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

// CreateGateway creates a gateway based on provider type and configuration.
func (f *Factory) CreateGateway(ctx context.Context, provider Provider, config interface{}) (Gateway, error) {
	switch provider {
	case ProviderStripe:
		stripeConfig, ok := config.(*StripeConfig)
		if !ok {
			return nil, fmt.Errorf("invalid stripe config type, expected *StripeConfig")
		}
		return NewStripeGateway(stripeConfig)

	default:
		return nil, fmt.Errorf("unsupported payment provider: %s", provider)
	}
}

// GetSupportedProviders returns the list of supported checkout providers.
func (f *Factory) GetSupportedProviders() []Provider {
	return []Provider{ProviderStripe}
}
