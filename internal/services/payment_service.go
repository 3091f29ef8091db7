package services

import (
	"context"
	"errors"
	"log/slog"

	"rental-system/config"
	"rental-system/internal/services/payment"
	"rental-system/internal/status"
	"rental-system/models"
	"rental-system/monitoring"
	"rental-system/utils"

	"github.com/shopspring/decimal"
)

// ReservationEngine is the slice of the reservation service the payment
// bridge needs. Narrowed to an interface so bridge tests run against mocks.
type ReservationEngine interface {
	Reservation(ctx context.Context, reservationID string) (*models.Reservation, error)
	Vehicle(ctx context.Context, vehicleID string) (*models.Vehicle, error)
	ConfirmPayment(ctx context.Context, reservationID, hostID string, amountPaid decimal.Decimal) (bool, error)
}

// PaymentService bridges reservations to the external checkout provider:
// it opens checkout sessions and feeds provider webhooks back into the
// reservation engine.
type PaymentService struct {
	gateway payment.Gateway
	engine  ReservationEngine
	breaker *utils.CircuitBreaker
	cfg     *config.Config
}

func NewPaymentService(gateway payment.Gateway, engine ReservationEngine, cfg *config.Config) *PaymentService {
	return &PaymentService{
		gateway: gateway,
		engine:  engine,
		breaker: utils.NewCircuitBreaker("payment-provider"),
		cfg:     cfg,
	}
}

// CreateCheckoutSession opens a provider checkout session for the
// reservation and returns the redirect URL. Only the guest can pay, and
// only while the reservation is still payable.
func (s *PaymentService) CreateCheckoutSession(ctx context.Context, reservationID, callerID string) (string, error) {
	reservation, err := s.engine.Reservation(ctx, reservationID)
	if err != nil {
		return "", err
	}
	if reservation.GuestID != callerID {
		return "", status.Forbidden("only the guest can pay for a reservation")
	}
	if reservation.PaymentStatus != models.PaymentPending {
		return "", status.InvalidState("reservation is already paid")
	}
	if reservation.Status != models.ReservationPending && reservation.Status != models.ReservationConfirmed {
		return "", status.InvalidState("reservation is not payable")
	}

	vehicleName := "vehicle"
	if vehicle, err := s.engine.Vehicle(ctx, reservation.VehicleID); err == nil {
		vehicleName = vehicle.Name
	}

	req := &payment.CheckoutRequest{
		ReservationID: reservation.ID,
		HostID:        reservation.HostID,
		VehicleName:   vehicleName,
		Amount:        decimal.NewFromFloat(reservation.TotalPrice),
		Currency:      s.cfg.Currency,
		SuccessURL:    s.cfg.CheckoutSuccessURL,
		CancelURL:     s.cfg.CheckoutCancelURL,
	}

	result, err := s.breaker.Execute(ctx, func() (interface{}, error) {
		return s.gateway.CreateCheckoutSession(ctx, req)
	})
	if err != nil {
		if errors.Is(err, utils.ErrCircuitOpen) {
			return "", status.Unavailable("payment provider temporarily unavailable")
		}
		slog.Error("checkout session creation failed", "reservation", reservationID, "error", err)
		return "", status.Unavailable("payment provider error")
	}

	session := result.(*payment.CheckoutSession)
	slog.Info("checkout session created",
		"reservation", reservationID, "session", session.ID, "provider", s.gateway.Provider())

	return session.URL, nil
}

// HandleWebhook verifies and applies one provider webhook delivery.
// Signature failures return InvalidInput so the handler answers 400 and the
// provider retries; duplicate deliveries succeed as no-ops.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		monitoring.TrackPaymentWebhook("signature_failed")
		slog.Warn("webhook rejected", "provider", s.gateway.Provider(), "error", err)
		return status.InvalidInput("invalid webhook signature")
	}

	if event.Type != payment.EventCheckoutCompleted {
		monitoring.TrackPaymentWebhook("ignored")
		return nil
	}
	if event.ReservationID == "" {
		// Verified but missing our metadata; redelivery cannot fix that, so
		// acknowledge instead of triggering the provider's retry loop.
		monitoring.TrackPaymentWebhook("malformed")
		slog.Warn("webhook missing reservation reference", "provider", s.gateway.Provider())
		return nil
	}

	changed, err := s.engine.ConfirmPayment(ctx, event.ReservationID, event.HostID, event.AmountPaid)
	if err != nil {
		monitoring.TrackPaymentWebhook("error")
		slog.Error("payment confirmation failed", "reservation", event.ReservationID, "error", err)
		return err
	}

	if changed {
		monitoring.TrackPaymentWebhook("processed")
	} else {
		monitoring.TrackPaymentWebhook("duplicate")
	}
	return nil
}
