package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"rental-system/config"
	"rental-system/internal/status"
	"rental-system/models"
	"rental-system/monitoring"
	"rental-system/utils"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
	"github.com/shopspring/decimal"
)

// ReservationService owns reservation creation, the availability-conflict
// check, pricing and every legal state transition. All persistence goes
// through the app's record store; validation fully precedes any write.
type ReservationService struct {
	app      core.App
	lock     *utils.VehicleLock
	notifier *Notifier
	cfg      *config.Config
}

func NewReservationService(app core.App, lock *utils.VehicleLock, notifier *Notifier, cfg *config.Config) *ReservationService {
	return &ReservationService{
		app:      app,
		lock:     lock,
		notifier: notifier,
		cfg:      cfg,
	}
}

// CreateReservationRequest is the booking payload. Dates are date-only
// strings; total price is always derived server-side.
type CreateReservationRequest struct {
	VehicleID      string `json:"vehicleId"`
	StartDate      string `json:"startDate"`
	EndDate        string `json:"endDate"`
	PickupLocation string `json:"pickupLocation"`
	ReturnLocation string `json:"returnLocation"`
	Notes          string `json:"notes"`
	DirectPay      bool   `json:"completedDirectPay"`
}

func (s *ReservationService) CreateReservation(ctx context.Context, guestID string, req CreateReservationRequest) (*core.Record, error) {
	start, err := models.ParseDateOnly(req.StartDate)
	if err != nil {
		return nil, status.InvalidInput("invalid start date")
	}
	end, err := models.ParseDateOnly(req.EndDate)
	if err != nil {
		return nil, status.InvalidInput("invalid end date")
	}
	if err := validateWindow(start, end, time.Now()); err != nil {
		return nil, err
	}

	vehicleRecord, err := s.app.FindRecordById("vehicles", req.VehicleID)
	if err != nil {
		return nil, status.NotFound("vehicle not found")
	}
	vehicle := vehicleFromRecord(vehicleRecord)

	if !vehicle.Bookable() {
		return nil, status.InvalidState("vehicle not available")
	}
	if vehicle.OwnerID == guestID {
		return nil, status.Forbidden("cannot reserve own vehicle")
	}

	// The availability check and the insert must not interleave with another
	// booking for the same vehicle. Serialize per vehicle via Redis.
	lockStart := time.Now()
	token, err := s.lock.Acquire(ctx, vehicle.ID, s.cfg.VehicleLockTimeout)
	if err != nil {
		monitoring.TrackReservationCreated("lock_failed")
		return nil, status.Unavailable("booking system busy, please retry")
	}
	defer s.lock.Release(ctx, vehicle.ID, token)
	monitoring.ObserveLockWait(time.Since(lockStart))

	conflict, err := s.hasDateConflict(vehicle.ID, start, end)
	if err != nil {
		return nil, status.Unavailable("could not check availability")
	}
	if conflict {
		monitoring.TrackReservationCreated("conflict")
		return nil, status.Conflict("dates unavailable")
	}

	pickupCode, err := utils.GenerateBookingCode(s.cfg.BookingCodeLength)
	if err != nil {
		return nil, err
	}
	returnCode, err := utils.GenerateBookingCode(s.cfg.BookingCodeLength)
	if err != nil {
		return nil, err
	}

	totalPrice := models.TotalPrice(start, end, vehicle.PricePerDay)

	collection, err := s.app.FindCollectionByNameOrId("reservations")
	if err != nil {
		return nil, err
	}

	record := core.NewRecord(collection)
	record.Set("guest", guestID)
	record.Set("host", vehicle.OwnerID)
	record.Set("vehicle", vehicle.ID)
	record.Set("start_date", start.Format(types.DefaultDateLayout))
	record.Set("end_date", end.Format(types.DefaultDateLayout))
	record.Set("total_price", totalPrice.InexactFloat64())
	record.Set("pickup_code", pickupCode)
	record.Set("return_code", returnCode)
	record.Set("pickup_location", defaultLocation(req.PickupLocation, vehicle.Location))
	record.Set("return_location", defaultLocation(req.ReturnLocation, vehicle.Location))
	record.Set("notes", req.Notes)

	if req.DirectPay {
		record.Set("status", string(models.ReservationCompleted))
		record.Set("payment_status", string(models.PaymentPaid))
	} else {
		record.Set("status", string(models.ReservationPending))
		record.Set("payment_status", string(models.PaymentPending))
	}

	if err := s.app.SaveWithContext(ctx, record); err != nil {
		monitoring.TrackReservationCreated("error")
		return nil, status.Unavailable("could not save reservation")
	}

	monitoring.TrackReservationCreated("created")

	if errs := s.app.ExpandRecord(record, []string{"guest", "host", "vehicle"}, nil); len(errs) > 0 {
		slog.Warn("reservation expand failed", "reservation", record.Id, "errors", errs)
	}

	s.notifier.NotifyUser(vehicle.OwnerID, map[string]any{
		"type":           "reservation_created",
		"reservation_id": record.Id,
		"vehicle_id":     vehicle.ID,
		"start_date":     start.Format(models.DateOnlyLayout),
		"end_date":       end.Format(models.DateOnlyLayout),
	})

	return record, nil
}

// hasDateConflict scans the vehicle's blocking reservations for a closed
// interval intersection with [start, end].
func (s *ReservationService) hasDateConflict(vehicleID string, start, end time.Time) (bool, error) {
	records, err := s.app.FindRecordsByFilter(
		"reservations",
		"vehicle = {:vehicle} && (status = 'confirmed' || status = 'active')",
		"-created",
		0,
		0,
		dbx.Params{"vehicle": vehicleID},
	)
	if err != nil {
		return false, err
	}

	for _, record := range records {
		existing := reservationFromRecord(record)
		if existing.Overlaps(start, end) {
			return true, nil
		}
	}
	return false, nil
}

// ListReservations returns the caller's reservations, optionally narrowed to
// the guest or host side and to one status, newest first.
func (s *ReservationService) ListReservations(ctx context.Context, userID, typeFilter, statusFilter string) ([]*core.Record, error) {
	filter := "(guest = {:user} || host = {:user})"
	switch typeFilter {
	case "":
	case "guest":
		filter = "guest = {:user}"
	case "host":
		filter = "host = {:user}"
	default:
		return nil, status.InvalidInput("type must be guest or host")
	}

	params := dbx.Params{"user": userID}
	if statusFilter != "" {
		if !validReservationStatus(statusFilter) {
			return nil, status.InvalidInput("unknown reservation status")
		}
		filter += " && status = {:status}"
		params["status"] = statusFilter
	}

	records, err := s.app.FindRecordsByFilter("reservations", filter, "-created", 0, 0, params)
	if err != nil {
		return nil, status.Unavailable("could not list reservations")
	}
	return records, nil
}

// GetReservation loads a reservation for a party to it. Callers that are
// neither guest nor host get NotFound so reservation ids leak nothing.
func (s *ReservationService) GetReservation(ctx context.Context, reservationID, callerID string) (*core.Record, error) {
	record, err := s.app.FindRecordById("reservations", reservationID)
	if err != nil {
		return nil, status.NotFound("reservation not found")
	}
	if record.GetString("guest") != callerID && record.GetString("host") != callerID {
		return nil, status.NotFound("reservation not found")
	}

	if errs := s.app.ExpandRecord(record, []string{"guest", "host", "vehicle"}, nil); len(errs) > 0 {
		slog.Warn("reservation expand failed", "reservation", record.Id, "errors", errs)
	}
	return record, nil
}

// Reservation loads a reservation without caller scoping, for internal
// collaborators such as the payment bridge.
func (s *ReservationService) Reservation(ctx context.Context, reservationID string) (*models.Reservation, error) {
	record, err := s.app.FindRecordById("reservations", reservationID)
	if err != nil {
		return nil, status.NotFound("reservation not found")
	}
	return reservationFromRecord(record), nil
}

// Vehicle loads a vehicle for internal collaborators.
func (s *ReservationService) Vehicle(ctx context.Context, vehicleID string) (*models.Vehicle, error) {
	record, err := s.app.FindRecordById("vehicles", vehicleID)
	if err != nil {
		return nil, status.NotFound("vehicle not found")
	}
	return vehicleFromRecord(record), nil
}

// Confirm moves pending -> confirmed. Host-only, no code involved.
func (s *ReservationService) Confirm(ctx context.Context, reservationID, actorID string) (*core.Record, error) {
	return s.transition(ctx, reservationID, models.ReservationConfirmed, "reservation_confirmed", func(r *models.Reservation) error {
		return guardConfirm(r, actorID)
	})
}

// Cancel moves pending/confirmed -> cancelled. Guest-only. Vehicle
// availability is untouched: the conflict check ignores cancelled rows, so
// the dates free up on their own.
func (s *ReservationService) Cancel(ctx context.Context, reservationID, actorID string) (*core.Record, error) {
	return s.transition(ctx, reservationID, models.ReservationCancelled, "reservation_cancelled", func(r *models.Reservation) error {
		return guardCancel(r, actorID)
	})
}

// Start moves confirmed -> active after the guest presents the pickup code.
func (s *ReservationService) Start(ctx context.Context, reservationID, actorID, code string) (*core.Record, error) {
	return s.transition(ctx, reservationID, models.ReservationActive, "reservation_started", func(r *models.Reservation) error {
		return guardStart(r, actorID, code)
	})
}

// Complete moves active -> completed after the guest presents the return code.
func (s *ReservationService) Complete(ctx context.Context, reservationID, actorID, code string) (*core.Record, error) {
	return s.transition(ctx, reservationID, models.ReservationCompleted, "reservation_completed", func(r *models.Reservation) error {
		return guardComplete(r, actorID, code)
	})
}

func (s *ReservationService) transition(ctx context.Context, reservationID string, to models.ReservationStatus, event string, guard func(*models.Reservation) error) (*core.Record, error) {
	record, err := s.app.FindRecordById("reservations", reservationID)
	if err != nil {
		return nil, status.NotFound("reservation not found")
	}

	reservation := reservationFromRecord(record)
	if err := guard(reservation); err != nil {
		return nil, err
	}

	record.Set("status", string(to))
	if err := s.app.SaveWithContext(ctx, record); err != nil {
		return nil, status.Unavailable("could not update reservation")
	}

	monitoring.TrackStateTransition(string(reservation.Status), string(to))

	message := map[string]any{
		"type":           event,
		"reservation_id": record.Id,
		"status":         string(to),
	}
	s.notifier.NotifyUser(reservation.GuestID, message)
	s.notifier.NotifyUser(reservation.HostID, message)

	return record, nil
}

// ConfirmPayment applies a payment-confirmed webhook: marks the reservation
// paid, promotes pending -> confirmed and credits the host balance, all in
// one store transaction. Redelivered webhooks are a no-op (changed ==
// false), never an error.
func (s *ReservationService) ConfirmPayment(ctx context.Context, reservationID, hostID string, amountPaid decimal.Decimal) (bool, error) {
	var reservation *models.Reservation
	var prevStatus models.ReservationStatus
	changed := false

	err := s.app.RunInTransaction(func(txApp core.App) error {
		record, err := txApp.FindRecordById("reservations", reservationID)
		if err != nil {
			return status.NotFound("reservation not found")
		}
		reservation = reservationFromRecord(record)
		prevStatus = reservation.Status

		if hostID != "" && hostID != reservation.HostID {
			slog.Warn("payment webhook host mismatch",
				"reservation", reservationID, "webhook_host", hostID, "record_host", reservation.HostID)
		}

		newStatus, newPayment, c := paymentConfirmedChanges(reservation)
		changed = c
		if !changed {
			return nil
		}

		record.Set("status", string(newStatus))
		record.Set("payment_status", string(newPayment))
		if err := txApp.Save(record); err != nil {
			return fmt.Errorf("save reservation: %w", err)
		}

		host, err := txApp.FindRecordById("users", reservation.HostID)
		if err != nil {
			return fmt.Errorf("load host: %w", err)
		}
		host.Set("balance", host.GetFloat("balance")+amountPaid.InexactFloat64())
		if err := txApp.Save(host); err != nil {
			return fmt.Errorf("credit host balance: %w", err)
		}

		reservation.Status = newStatus
		reservation.PaymentStatus = newPayment
		return nil
	})
	if err != nil {
		return false, err
	}

	if changed {
		if reservation.Status != prevStatus {
			monitoring.TrackStateTransition(string(prevStatus), string(reservation.Status))
		}
		message := map[string]any{
			"type":           "payment_confirmed",
			"reservation_id": reservationID,
			"amount":         amountPaid.InexactFloat64(),
		}
		s.notifier.NotifyUser(reservation.GuestID, message)
		s.notifier.NotifyUser(reservation.HostID, message)
	}

	return changed, nil
}

// ExpirePending cancels pending, unpaid reservations older than ttl so
// abandoned checkouts do not linger forever. Returns the number of
// reservations cancelled.
func (s *ReservationService) ExpirePending(ctx context.Context, ttl time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-ttl)

	records, err := s.app.FindRecordsByFilter(
		"reservations",
		"status = 'pending' && payment_status = 'pending' && created < {:cutoff}",
		"created",
		0,
		0,
		dbx.Params{"cutoff": cutoff.Format(types.DefaultDateLayout)},
	)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, record := range records {
		// A payment webhook can land between the sweep query and this write.
		// Re-fetch inside the transaction and cancel only if the reservation
		// is still pending on both axes; a stale in-memory record must never
		// overwrite a paid confirmation.
		skipped := false
		var guestID string
		err := s.app.RunInTransaction(func(txApp core.App) error {
			current, err := txApp.FindRecordById("reservations", record.Id)
			if err != nil {
				return err
			}
			reservation := reservationFromRecord(current)
			if !expirable(reservation) {
				skipped = true
				return nil
			}
			guestID = reservation.GuestID
			current.Set("status", string(models.ReservationCancelled))
			return txApp.Save(current)
		})
		if err != nil {
			slog.Error("failed to expire reservation", "reservation", record.Id, "error", err)
			continue
		}
		if skipped {
			continue
		}
		monitoring.TrackStateTransition("pending", "cancelled")
		s.notifier.NotifyUser(guestID, map[string]any{
			"type":           "reservation_expired",
			"reservation_id": record.Id,
		})
		expired++
	}

	return expired, nil
}

func defaultLocation(requested, vehicleLocation string) string {
	if requested != "" {
		return requested
	}
	return vehicleLocation
}

func validReservationStatus(s string) bool {
	switch models.ReservationStatus(s) {
	case models.ReservationPending, models.ReservationConfirmed, models.ReservationActive,
		models.ReservationCompleted, models.ReservationCancelled:
		return true
	}
	return false
}

func reservationFromRecord(r *core.Record) *models.Reservation {
	return &models.Reservation{
		ID:             r.Id,
		GuestID:        r.GetString("guest"),
		HostID:         r.GetString("host"),
		VehicleID:      r.GetString("vehicle"),
		StartDate:      r.GetDateTime("start_date").Time(),
		EndDate:        r.GetDateTime("end_date").Time(),
		TotalPrice:     r.GetFloat("total_price"),
		Status:         models.ReservationStatus(r.GetString("status")),
		PaymentStatus:  models.PaymentStatus(r.GetString("payment_status")),
		PickupCode:     r.GetString("pickup_code"),
		ReturnCode:     r.GetString("return_code"),
		PickupLocation: r.GetString("pickup_location"),
		ReturnLocation: r.GetString("return_location"),
		Notes:          r.GetString("notes"),
		Created:        r.GetDateTime("created").Time(),
		Updated:        r.GetDateTime("updated").Time(),
	}
}

func vehicleFromRecord(r *core.Record) *models.Vehicle {
	return &models.Vehicle{
		ID:             r.Id,
		OwnerID:        r.GetString("owner"),
		Name:           r.GetString("name"),
		Brand:          r.GetString("brand"),
		Model:          r.GetString("model"),
		Location:       r.GetString("location"),
		PricePerDay:    r.GetFloat("price_per_day"),
		IsAvailable:    r.GetBool("is_available"),
		ApprovalStatus: models.VehicleApproval(r.GetString("approval_status")),
		Created:        r.GetDateTime("created").Time(),
		Updated:        r.GetDateTime("updated").Time(),
	}
}
