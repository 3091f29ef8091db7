package services

import (
	"testing"
	"time"

	"rental-system/internal/status"
	"rental-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testGuestID = "guest-123"
	testHostID  = "host-456"
)

func pendingReservation() *models.Reservation {
	return &models.Reservation{
		ID:         "res-1",
		GuestID:    testGuestID,
		HostID:     testHostID,
		VehicleID:  "vehicle-1",
		Status:     models.ReservationPending,
		PickupCode: "PICKUP",
		ReturnCode: "RETURN",
	}
}

func TestGuardConfirm_HostCanConfirmPending(t *testing.T) {
	r := pendingReservation()
	assert.NoError(t, guardConfirm(r, testHostID))
}

func TestGuardConfirm_GuestCannotConfirm(t *testing.T) {
	r := pendingReservation()
	err := guardConfirm(r, testGuestID)
	assert.True(t, status.Is(err, status.CodeForbidden), "got %v", err)
}

func TestGuardConfirm_OnlyFromPending(t *testing.T) {
	for _, s := range []models.ReservationStatus{
		models.ReservationConfirmed,
		models.ReservationActive,
		models.ReservationCompleted,
		models.ReservationCancelled,
	} {
		r := pendingReservation()
		r.Status = s
		err := guardConfirm(r, testHostID)
		assert.True(t, status.Is(err, status.CodeInvalidState), "status %s: got %v", s, err)
	}
}

func TestGuardConfirm_ActorCheckedBeforeState(t *testing.T) {
	// A stranger probing a completed reservation learns "not yours", not
	// what state the reservation is in.
	r := pendingReservation()
	r.Status = models.ReservationCompleted

	err := guardConfirm(r, "stranger")
	assert.True(t, status.Is(err, status.CodeForbidden), "got %v", err)
}

func TestGuardCancel_GuestCanCancelPendingAndConfirmed(t *testing.T) {
	for _, s := range []models.ReservationStatus{
		models.ReservationPending,
		models.ReservationConfirmed,
	} {
		r := pendingReservation()
		r.Status = s
		assert.NoError(t, guardCancel(r, testGuestID), "status %s", s)
	}
}

func TestGuardCancel_HostCannotCancel(t *testing.T) {
	r := pendingReservation()
	err := guardCancel(r, testHostID)
	assert.True(t, status.Is(err, status.CodeForbidden), "got %v", err)
}

func TestGuardCancel_NotAfterPickup(t *testing.T) {
	for _, s := range []models.ReservationStatus{
		models.ReservationActive,
		models.ReservationCompleted,
		models.ReservationCancelled,
	} {
		r := pendingReservation()
		r.Status = s
		err := guardCancel(r, testGuestID)
		assert.True(t, status.Is(err, status.CodeInvalidState), "status %s: got %v", s, err)
	}
}

func TestGuardStart_CorrectCode(t *testing.T) {
	r := pendingReservation()
	r.Status = models.ReservationConfirmed

	assert.NoError(t, guardStart(r, testGuestID, "PICKUP"))
}

func TestGuardStart_WrongCode(t *testing.T) {
	r := pendingReservation()
	r.Status = models.ReservationConfirmed

	err := guardStart(r, testGuestID, "WRONG")
	require.True(t, status.Is(err, status.CodeInvalidInput), "got %v", err)
	assert.Equal(t, "incorrect code", err.Error())
}

func TestGuardStart_RequiresConfirmed(t *testing.T) {
	r := pendingReservation()
	err := guardStart(r, testGuestID, "PICKUP")
	assert.True(t, status.Is(err, status.CodeInvalidState), "got %v", err)
}

func TestGuardStart_HostCannotStart(t *testing.T) {
	r := pendingReservation()
	r.Status = models.ReservationConfirmed

	// Even with the right code the host is not the driver.
	err := guardStart(r, testHostID, "PICKUP")
	assert.True(t, status.Is(err, status.CodeForbidden), "got %v", err)
}

func TestGuardComplete_CorrectCode(t *testing.T) {
	r := pendingReservation()
	r.Status = models.ReservationActive

	assert.NoError(t, guardComplete(r, testGuestID, "RETURN"))
}

func TestGuardComplete_WrongCode(t *testing.T) {
	r := pendingReservation()
	r.Status = models.ReservationActive

	err := guardComplete(r, testGuestID, "PICKUP")
	assert.True(t, status.Is(err, status.CodeInvalidInput), "got %v", err)
}

func TestGuardComplete_RequiresActive(t *testing.T) {
	r := pendingReservation()
	r.Status = models.ReservationConfirmed

	err := guardComplete(r, testGuestID, "RETURN")
	assert.True(t, status.Is(err, status.CodeInvalidState), "got %v", err)
}

func TestValidateWindow(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)
	day := func(d int) time.Time {
		return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
	}

	// Starting today is allowed even when now is past midnight.
	assert.NoError(t, validateWindow(day(10), day(12), now))
	assert.NoError(t, validateWindow(day(11), day(12), now))

	// Start must precede end.
	err := validateWindow(day(12), day(10), now)
	assert.True(t, status.Is(err, status.CodeInvalidInput), "got %v", err)

	// Zero-length windows are rejected.
	err = validateWindow(day(10), day(10), now)
	assert.True(t, status.Is(err, status.CodeInvalidInput), "got %v", err)

	// No bookings in the past.
	err = validateWindow(day(9), day(12), now)
	assert.True(t, status.Is(err, status.CodeInvalidInput), "got %v", err)
}

func TestExpirable_StalePendingReservation(t *testing.T) {
	r := pendingReservation()
	r.PaymentStatus = models.PaymentPending

	assert.True(t, expirable(r))
}

func TestExpirable_PaymentLandsBeforeSweepWrite(t *testing.T) {
	// The sweep queried this reservation as stale, then the payment webhook
	// confirmed and paid it. The re-check at write time must leave it alone.
	r := pendingReservation()
	r.Status = models.ReservationConfirmed
	r.PaymentStatus = models.PaymentPaid

	assert.False(t, expirable(r))
}

func TestExpirable_NeverCancelsOffPendingAxes(t *testing.T) {
	// Paid but not yet promoted.
	r := pendingReservation()
	r.PaymentStatus = models.PaymentPaid
	assert.False(t, expirable(r))

	// Already moved through the lifecycle.
	for _, s := range []models.ReservationStatus{
		models.ReservationConfirmed,
		models.ReservationActive,
		models.ReservationCompleted,
		models.ReservationCancelled,
	} {
		r := pendingReservation()
		r.Status = s
		assert.False(t, expirable(r), "status %s", s)
	}
}

func TestPaymentConfirmedChanges_PendingBecomesConfirmed(t *testing.T) {
	r := pendingReservation()
	r.PaymentStatus = models.PaymentPending

	newStatus, newPayment, changed := paymentConfirmedChanges(r)

	assert.True(t, changed)
	assert.Equal(t, models.ReservationConfirmed, newStatus)
	assert.Equal(t, models.PaymentPaid, newPayment)
}

func TestPaymentConfirmedChanges_ConfirmedStaysConfirmed(t *testing.T) {
	// Host confirmed before the guest paid; payment only flips the
	// payment axis.
	r := pendingReservation()
	r.Status = models.ReservationConfirmed
	r.PaymentStatus = models.PaymentPending

	newStatus, newPayment, changed := paymentConfirmedChanges(r)

	assert.True(t, changed)
	assert.Equal(t, models.ReservationConfirmed, newStatus)
	assert.Equal(t, models.PaymentPaid, newPayment)
}

func TestPaymentConfirmedChanges_DuplicateDeliveryIsNoop(t *testing.T) {
	r := pendingReservation()
	r.Status = models.ReservationConfirmed
	r.PaymentStatus = models.PaymentPaid

	newStatus, newPayment, changed := paymentConfirmedChanges(r)

	assert.False(t, changed)
	assert.Equal(t, models.ReservationConfirmed, newStatus)
	assert.Equal(t, models.PaymentPaid, newPayment)
}
