package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.ParseInLocation(DateOnlyLayout, s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func TestParseDateOnly_DateOnly(t *testing.T) {
	parsed, err := ParseDateOnly("2026-03-10")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), parsed)
}

func TestParseDateOnly_RFC3339Truncated(t *testing.T) {
	parsed, err := ParseDateOnly("2026-03-10T15:04:05Z")
	require.NoError(t, err)

	// Full timestamps are accepted but the time of day is dropped.
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), parsed)
}

func TestParseDateOnly_Invalid(t *testing.T) {
	invalid := []string{"", "10-03-2026", "2026/03/10", "not a date"}

	for _, input := range invalid {
		_, err := ParseDateOnly(input)
		assert.Error(t, err, "input %q should not parse", input)
	}
}

func TestRentalDays(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		days  int64
	}{
		{"two full days", "2026-03-10", "2026-03-12", 2},
		{"single day", "2026-03-10", "2026-03-11", 1},
		{"same day floors to one", "2026-03-10", "2026-03-10", 1},
		{"week", "2026-03-01", "2026-03-08", 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.days, RentalDays(date(tt.start), date(tt.end)))
		})
	}
}

func TestRentalDays_PartialDayRoundsUp(t *testing.T) {
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	end := start.Add(36 * time.Hour)

	assert.Equal(t, int64(2), RentalDays(start, end))
}

func TestTotalPrice(t *testing.T) {
	// 2 rental days at 50.00 per day.
	price := TotalPrice(date("2026-03-10"), date("2026-03-12"), 50.0)
	assert.True(t, price.Equal(decimal.NewFromInt(100)), "got %s", price)

	// Fractional daily rates stay exact.
	price = TotalPrice(date("2026-03-10"), date("2026-03-13"), 33.33)
	assert.True(t, price.Equal(decimal.RequireFromString("99.99")), "got %s", price)
}

func TestOverlapsClosed(t *testing.T) {
	tests := []struct {
		name     string
		aStart   string
		aEnd     string
		bStart   string
		bEnd     string
		overlaps bool
	}{
		{"identical ranges", "2026-03-10", "2026-03-12", "2026-03-10", "2026-03-12", true},
		{"contained range", "2026-03-01", "2026-03-31", "2026-03-10", "2026-03-12", true},
		{"partial overlap", "2026-03-10", "2026-03-15", "2026-03-14", "2026-03-20", true},
		{"touching at end", "2026-03-10", "2026-03-12", "2026-03-12", "2026-03-14", true},
		{"touching at start", "2026-03-12", "2026-03-14", "2026-03-10", "2026-03-12", true},
		{"adjacent days", "2026-03-10", "2026-03-12", "2026-03-13", "2026-03-15", false},
		{"fully disjoint", "2026-03-01", "2026-03-05", "2026-03-20", "2026-03-25", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OverlapsClosed(date(tt.aStart), date(tt.aEnd), date(tt.bStart), date(tt.bEnd))
			assert.Equal(t, tt.overlaps, got)

			// Overlap is symmetric.
			reversed := OverlapsClosed(date(tt.bStart), date(tt.bEnd), date(tt.aStart), date(tt.aEnd))
			assert.Equal(t, tt.overlaps, reversed)
		})
	}
}

func TestReservation_Blocking(t *testing.T) {
	blocking := map[ReservationStatus]bool{
		ReservationPending:   false,
		ReservationConfirmed: true,
		ReservationActive:    true,
		ReservationCompleted: false,
		ReservationCancelled: false,
	}

	for status, want := range blocking {
		r := Reservation{Status: status}
		assert.Equal(t, want, r.Blocking(), "status %s", status)
	}
}

func TestCanTransition(t *testing.T) {
	allowed := []struct {
		from ReservationStatus
		to   ReservationStatus
	}{
		{ReservationPending, ReservationConfirmed},
		{ReservationPending, ReservationCancelled},
		{ReservationConfirmed, ReservationActive},
		{ReservationConfirmed, ReservationCancelled},
		{ReservationActive, ReservationCompleted},
	}

	for _, tt := range allowed {
		assert.True(t, CanTransition(tt.from, tt.to), "%s -> %s should be allowed", tt.from, tt.to)
	}

	denied := []struct {
		from ReservationStatus
		to   ReservationStatus
	}{
		{ReservationPending, ReservationActive},
		{ReservationPending, ReservationCompleted},
		{ReservationConfirmed, ReservationCompleted},
		{ReservationActive, ReservationCancelled},
		{ReservationCompleted, ReservationActive},
		{ReservationCancelled, ReservationPending},
		{ReservationCancelled, ReservationConfirmed},
	}

	for _, tt := range denied {
		assert.False(t, CanTransition(tt.from, tt.to), "%s -> %s should be denied", tt.from, tt.to)
	}
}

func TestReservation_JSONSerialization(t *testing.T) {
	reservation := Reservation{
		ID:             "res-123",
		GuestID:        "guest-456",
		HostID:         "host-789",
		VehicleID:      "vehicle-321",
		StartDate:      date("2026-03-10"),
		EndDate:        date("2026-03-12"),
		TotalPrice:     100.0,
		Status:         ReservationPending,
		PaymentStatus:  PaymentPending,
		PickupCode:     "ABC234",
		ReturnCode:     "XYZ789",
		PickupLocation: "Berlin",
		ReturnLocation: "Berlin",
	}

	jsonData, err := json.Marshal(reservation)
	require.NoError(t, err)

	var unmarshaled Reservation
	err = json.Unmarshal(jsonData, &unmarshaled)
	require.NoError(t, err)

	assert.Equal(t, reservation.ID, unmarshaled.ID)
	assert.Equal(t, reservation.GuestID, unmarshaled.GuestID)
	assert.Equal(t, reservation.HostID, unmarshaled.HostID)
	assert.Equal(t, reservation.VehicleID, unmarshaled.VehicleID)
	assert.Equal(t, reservation.TotalPrice, unmarshaled.TotalPrice)
	assert.Equal(t, reservation.Status, unmarshaled.Status)
	assert.Equal(t, reservation.PaymentStatus, unmarshaled.PaymentStatus)
	assert.Equal(t, reservation.PickupCode, unmarshaled.PickupCode)
	assert.WithinDuration(t, reservation.StartDate, unmarshaled.StartDate, time.Second)
	assert.WithinDuration(t, reservation.EndDate, unmarshaled.EndDate, time.Second)
}

func TestVehicle_Bookable(t *testing.T) {
	tests := []struct {
		name     string
		approval VehicleApproval
		avail    bool
		bookable bool
	}{
		{"approved and available", VehicleApprovalApproved, true, true},
		{"approved but unavailable", VehicleApprovalApproved, false, false},
		{"pending approval", VehicleApprovalPending, true, false},
		{"rejected", VehicleApprovalRejected, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Vehicle{ApprovalStatus: tt.approval, IsAvailable: tt.avail}
			assert.Equal(t, tt.bookable, v.Bookable())
		})
	}
}
