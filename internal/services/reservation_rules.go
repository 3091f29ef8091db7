package services

import (
	"fmt"
	"time"

	"rental-system/internal/status"
	"rental-system/models"
)

// Guard functions validate one reservation mutation each. They are pure:
// every guard is evaluated against the loaded record before anything is
// written, so a failed mutation leaves the record untouched. Actor checks
// run before state checks so the caller learns "not yours" rather than
// internal state details.

func guardConfirm(r *models.Reservation, actorID string) error {
	if r.HostID != actorID {
		return status.Forbidden("only the host can confirm a reservation")
	}
	if r.Status != models.ReservationPending {
		return status.InvalidState(fmt.Sprintf("cannot confirm a %s reservation", r.Status))
	}
	return nil
}

func guardCancel(r *models.Reservation, actorID string) error {
	if r.GuestID != actorID {
		return status.Forbidden("only the guest can cancel a reservation")
	}
	if r.Status != models.ReservationPending && r.Status != models.ReservationConfirmed {
		return status.InvalidState(fmt.Sprintf("cannot cancel a %s reservation", r.Status))
	}
	return nil
}

func guardStart(r *models.Reservation, actorID, code string) error {
	if r.GuestID != actorID {
		return status.Forbidden("only the guest can start a reservation")
	}
	if r.Status != models.ReservationConfirmed {
		return status.InvalidState(fmt.Sprintf("cannot start a %s reservation", r.Status))
	}
	if code != r.PickupCode {
		return status.InvalidInput("incorrect code")
	}
	return nil
}

func guardComplete(r *models.Reservation, actorID, code string) error {
	if r.GuestID != actorID {
		return status.Forbidden("only the guest can complete a reservation")
	}
	if r.Status != models.ReservationActive {
		return status.InvalidState(fmt.Sprintf("cannot complete a %s reservation", r.Status))
	}
	if code != r.ReturnCode {
		return status.InvalidInput("incorrect code")
	}
	return nil
}

// validateWindow checks the requested booking window: parseable dates are
// assumed; start must precede end and must not be in the past relative to
// now's UTC date.
func validateWindow(start, end, now time.Time) error {
	if !start.Before(end) {
		return status.InvalidInput("start date must be before end date")
	}
	today := time.Date(now.UTC().Year(), now.UTC().Month(), now.UTC().Day(), 0, 0, 0, 0, time.UTC)
	if start.Before(today) {
		return status.InvalidInput("start date must not be in the past")
	}
	return nil
}

// expirable reports whether a reservation picked up by the expiry sweep is
// still safe to cancel. Anything no longer pending on both axes has moved on
// since the sweep query and is left alone.
func expirable(r *models.Reservation) bool {
	return r.Status == models.ReservationPending && r.PaymentStatus == models.PaymentPending
}

// paymentConfirmedChanges computes the effect of a payment-confirmed
// webhook. A second delivery for an already-paid reservation reports
// changed == false, which is how the bridge stays idempotent: no status,
// payment or balance writes happen twice.
func paymentConfirmedChanges(r *models.Reservation) (newStatus models.ReservationStatus, newPayment models.PaymentStatus, changed bool) {
	if r.PaymentStatus == models.PaymentPaid {
		return r.Status, r.PaymentStatus, false
	}

	newStatus = r.Status
	if r.Status == models.ReservationPending {
		newStatus = models.ReservationConfirmed
	}
	return newStatus, models.PaymentPaid, true
}
