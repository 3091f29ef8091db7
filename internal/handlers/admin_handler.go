package handlers

import (
	"net/http"

	"rental-system/internal/services"
	"rental-system/models"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type AdminHandler struct {
	app      *pocketbase.PocketBase
	notifier *services.Notifier
}

func NewAdminHandler(app *pocketbase.PocketBase, notifier *services.Notifier) *AdminHandler {
	return &AdminHandler{
		app:      app,
		notifier: notifier,
	}
}

func (h *AdminHandler) requireAdmin(e *core.RequestEvent) error {
	if e.Auth == nil || e.Auth.GetString("role") != string(models.RoleAdmin) {
		return apis.NewUnauthorizedError("Admin access required", nil)
	}
	return nil
}

// GetDashboard - Marketplace overview for the back office
func (h *AdminHandler) GetDashboard(e *core.RequestEvent) error {
	if err := h.requireAdmin(e); err != nil {
		return err
	}

	reservationCounts := map[string]int64{}
	for _, s := range []string{"pending", "confirmed", "active", "completed", "cancelled"} {
		count, err := h.app.CountRecords("reservations", dbx.HashExp{"status": s})
		if err != nil {
			continue
		}
		reservationCounts[s] = count
	}

	moderationQueue, _ := h.app.CountRecords("vehicles", dbx.HashExp{"approval_status": "pending"})

	var paidVolume float64
	h.app.DB().
		NewQuery("SELECT COALESCE(SUM(total_price), 0) FROM reservations WHERE payment_status = 'paid'").
		Row(&paidVolume)

	return e.JSON(http.StatusOK, map[string]any{
		"reservations":     reservationCounts,
		"moderation_queue": moderationQueue,
		"paid_volume":      paidVolume,
	})
}

// ListReservations - Unscoped reservation list with optional status filter
func (h *AdminHandler) ListReservations(e *core.RequestEvent) error {
	if err := h.requireAdmin(e); err != nil {
		return err
	}

	filter := "id != ''"
	params := dbx.Params{}
	if s := e.Request.URL.Query().Get("status"); s != "" {
		filter = "status = {:status}"
		params["status"] = s
	}

	records, err := h.app.FindRecordsByFilter("reservations", filter, "-created", 0, 0, params)
	if err != nil {
		return apis.NewBadRequestError("Failed to list reservations", err)
	}

	return e.JSON(http.StatusOK, records)
}

// ApproveVehicle - Admit a vehicle to the public catalog
func (h *AdminHandler) ApproveVehicle(e *core.RequestEvent) error {
	return h.moderateVehicle(e, models.VehicleApprovalApproved)
}

// RejectVehicle - Keep a vehicle out of the public catalog
func (h *AdminHandler) RejectVehicle(e *core.RequestEvent) error {
	return h.moderateVehicle(e, models.VehicleApprovalRejected)
}

func (h *AdminHandler) moderateVehicle(e *core.RequestEvent, decision models.VehicleApproval) error {
	if err := h.requireAdmin(e); err != nil {
		return err
	}

	record, err := h.app.FindRecordById("vehicles", e.Request.PathValue("id"))
	if err != nil {
		return apis.NewNotFoundError("Vehicle not found", nil)
	}

	record.Set("approval_status", string(decision))
	if err := h.app.SaveWithContext(e.Request.Context(), record); err != nil {
		return apis.NewBadRequestError("Failed to update vehicle", err)
	}

	h.notifier.NotifyUser(record.GetString("owner"), map[string]any{
		"type":       "vehicle_moderated",
		"vehicle_id": record.Id,
		"decision":   string(decision),
	})

	return e.JSON(http.StatusOK, record)
}
