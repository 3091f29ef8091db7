package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"rental-system/internal/services"
	"rental-system/internal/status"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

const maxWebhookBody = 64 << 10

type PaymentHandler struct {
	app      *pocketbase.PocketBase
	payments *services.PaymentService
}

func NewPaymentHandler(app *pocketbase.PocketBase, payments *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		app:      app,
		payments: payments,
	}
}

// CreateCheckout - Open a provider checkout session for a reservation
func (h *PaymentHandler) CreateCheckout(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req struct {
		ReservationID string `json:"reservationId"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	url, err := h.payments.CreateCheckoutSession(e.Request.Context(), req.ReservationID, e.Auth.Id)
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{"url": url})
}

// Webhook - Provider payment callback. 400 on signature failure so the
// provider retries; permanently-bad events are acknowledged to stop retry
// storms; transient failures get a 500 and a redelivery.
func (h *PaymentHandler) Webhook(e *core.RequestEvent) error {
	payload, err := io.ReadAll(io.LimitReader(e.Request.Body, maxWebhookBody))
	if err != nil {
		return apis.NewBadRequestError("Invalid payload", err)
	}

	signature := e.Request.Header.Get("Stripe-Signature")

	err = h.payments.HandleWebhook(e.Request.Context(), payload, signature)
	switch status.CodeOf(err) {
	case "":
		if err != nil {
			return apis.NewInternalServerError("webhook processing failed", err)
		}
	case status.CodeInvalidInput:
		return apis.NewBadRequestError(err.Error(), nil)
	case status.CodeNotFound:
		// Reservation is gone; redelivery cannot fix that.
		slog.Warn("webhook for unknown reservation acknowledged", "error", err)
	default:
		return apis.NewInternalServerError("webhook processing failed", err)
	}

	return e.JSON(http.StatusOK, map[string]any{"received": true})
}
