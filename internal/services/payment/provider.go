// Package payment abstracts the external checkout provider behind a small
// interface so the payment bridge can be exercised without network access.
package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// Provider identifies a checkout provider implementation.
type Provider string

const (
	ProviderStripe Provider = "stripe"
)

// CheckoutRequest describes one reservation charge. Amount is in major
// currency units; gateways convert to minor units themselves.
type CheckoutRequest struct {
	ReservationID string          `json:"reservation_id"`
	HostID        string          `json:"host_id"`
	VehicleName   string          `json:"vehicle_name"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	SuccessURL    string          `json:"success_url"`
	CancelURL     string          `json:"cancel_url"`
}

// CheckoutSession is the provider-side session the client is redirected to.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// EventType classifies parsed webhook deliveries.
type EventType string

const (
	EventCheckoutCompleted EventType = "checkout_completed"
	EventIgnored           EventType = "ignored"
)

// WebhookEvent is a provider webhook normalized to the engine's vocabulary.
type WebhookEvent struct {
	Type          EventType       `json:"type"`
	ReservationID string          `json:"reservation_id"`
	HostID        string          `json:"host_id"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
}

// Gateway is the common interface for all checkout providers.
type Gateway interface {
	// Provider returns the provider identity.
	Provider() Provider

	// CreateCheckoutSession opens a hosted checkout session for one reservation.
	CreateCheckoutSession(ctx context.Context, req *CheckoutRequest) (*CheckoutSession, error)

	// ParseWebhook verifies the delivery signature and normalizes the payload.
	// Signature failures return an error; irrelevant event types return a
	// WebhookEvent with Type == EventIgnored.
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)

	// Close releases any provider connections.
	Close(ctx context.Context) error
}
