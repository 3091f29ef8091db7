package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationActive    ReservationStatus = "active"
	ReservationCompleted ReservationStatus = "completed"
	ReservationCancelled ReservationStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

type Reservation struct {
	ID             string            `json:"id"`
	GuestID        string            `json:"guest"`
	HostID         string            `json:"host"`
	VehicleID      string            `json:"vehicle"`
	StartDate      time.Time         `json:"start_date"`
	EndDate        time.Time         `json:"end_date"`
	TotalPrice     float64           `json:"total_price"`
	Status         ReservationStatus `json:"status"`
	PaymentStatus  PaymentStatus     `json:"payment_status"`
	PickupCode     string            `json:"pickup_code,omitempty"`
	ReturnCode     string            `json:"return_code,omitempty"`
	PickupLocation string            `json:"pickup_location"`
	ReturnLocation string            `json:"return_location"`
	Notes          string            `json:"notes,omitempty"`
	Created        time.Time         `json:"created"`
	Updated        time.Time         `json:"updated"`
}

// DateOnlyLayout is the wire format for reservation dates. Times of day are
// not part of the booking contract; everything is normalized to UTC midnight.
const DateOnlyLayout = "2006-01-02"

// ParseDateOnly parses a reservation date and truncates it to UTC midnight.
// RFC3339 input is accepted for clients that send full timestamps.
func ParseDateOnly(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateOnlyLayout, s, time.UTC)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, err
		}
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// RentalDays returns the billable day count for a date span: the span in
// 24h units rounded up, with a floor of one day.
func RentalDays(start, end time.Time) int64 {
	span := end.Sub(start)
	days := int64(span / (24 * time.Hour))
	if span%(24*time.Hour) != 0 {
		days++
	}
	if days < 1 {
		days = 1
	}
	return days
}

// TotalPrice computes days * pricePerDay using decimal arithmetic.
func TotalPrice(start, end time.Time, pricePerDay float64) decimal.Decimal {
	return decimal.NewFromFloat(pricePerDay).Mul(decimal.NewFromInt(RentalDays(start, end)))
}

// OverlapsClosed reports whether the closed intervals [aStart,aEnd] and
// [bStart,bEnd] intersect. Touching endpoints count as overlap: a vehicle
// returned on the 12th cannot be picked up again on the 12th.
func OverlapsClosed(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !bStart.After(aEnd)
}

// Overlaps reports whether the reservation's date range intersects [start,end].
func (r *Reservation) Overlaps(start, end time.Time) bool {
	return OverlapsClosed(r.StartDate, r.EndDate, start, end)
}

// Blocking reports whether the reservation's status makes its dates
// unavailable to other guests. Pending reservations do not block; cancelled
// and completed ones never do.
func (r *Reservation) Blocking() bool {
	return r.Status == ReservationConfirmed || r.Status == ReservationActive
}

var reservationTransitions = map[ReservationStatus][]ReservationStatus{
	ReservationPending:   {ReservationConfirmed, ReservationCancelled},
	ReservationConfirmed: {ReservationActive, ReservationCancelled},
	ReservationActive:    {ReservationCompleted},
}

// CanTransition reports whether the status state machine allows from -> to.
func CanTransition(from, to ReservationStatus) bool {
	for _, next := range reservationTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
