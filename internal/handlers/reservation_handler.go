package handlers

import (
	"net/http"

	"rental-system/internal/services"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type ReservationHandler struct {
	app          *pocketbase.PocketBase
	reservations *services.ReservationService
}

func NewReservationHandler(app *pocketbase.PocketBase, reservations *services.ReservationService) *ReservationHandler {
	return &ReservationHandler{
		app:          app,
		reservations: reservations,
	}
}

// Create - Book a vehicle for a date range
func (h *ReservationHandler) Create(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req services.CreateReservationRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	record, err := h.reservations.CreateReservation(e.Request.Context(), e.Auth.Id, req)
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusCreated, record)
}

// List - Reservations where the caller is guest or host
func (h *ReservationHandler) List(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	query := e.Request.URL.Query()
	records, err := h.reservations.ListReservations(
		e.Request.Context(),
		e.Auth.Id,
		query.Get("type"),
		query.Get("status"),
	)
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, records)
}

// Get - Single reservation, guest or host only
func (h *ReservationHandler) Get(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	record, err := h.reservations.GetReservation(e.Request.Context(), e.Request.PathValue("id"), e.Auth.Id)
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, record)
}

// Cancel - Guest cancels a pending or confirmed reservation
func (h *ReservationHandler) Cancel(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	record, err := h.reservations.Cancel(e.Request.Context(), e.Request.PathValue("id"), e.Auth.Id)
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, record)
}

// Confirm - Host accepts a pending reservation
func (h *ReservationHandler) Confirm(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	record, err := h.reservations.Confirm(e.Request.Context(), e.Request.PathValue("id"), e.Auth.Id)
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, record)
}

// Start - Guest starts a confirmed reservation with the pickup code
func (h *ReservationHandler) Start(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	record, err := h.reservations.Start(e.Request.Context(), e.Request.PathValue("id"), e.Auth.Id, req.Code)
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, record)
}

// Complete - Guest completes an active reservation with the return code
func (h *ReservationHandler) Complete(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	record, err := h.reservations.Complete(e.Request.Context(), e.Request.PathValue("id"), e.Auth.Id, req.Code)
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, record)
}
