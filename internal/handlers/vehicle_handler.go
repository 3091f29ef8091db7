package handlers

import (
	"net/http"

	"rental-system/models"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type VehicleHandler struct {
	app *pocketbase.PocketBase
}

func NewVehicleHandler(app *pocketbase.PocketBase) *VehicleHandler {
	return &VehicleHandler{app: app}
}

// List - Public catalog of approved, available vehicles
func (h *VehicleHandler) List(e *core.RequestEvent) error {
	query := e.Request.URL.Query()

	filter := "approval_status = 'approved' && is_available = true"
	params := dbx.Params{}

	if location := query.Get("location"); location != "" {
		filter += " && location ~ {:location}"
		params["location"] = location
	}
	if maxPrice := query.Get("maxPrice"); maxPrice != "" {
		filter += " && price_per_day <= {:maxPrice}"
		params["maxPrice"] = maxPrice
	}

	records, err := h.app.FindRecordsByFilter("vehicles", filter, "-created", 0, 0, params)
	if err != nil {
		return apis.NewBadRequestError("Failed to list vehicles", err)
	}

	return e.JSON(http.StatusOK, records)
}

// Get - Public vehicle detail
func (h *VehicleHandler) Get(e *core.RequestEvent) error {
	record, err := h.app.FindRecordById("vehicles", e.Request.PathValue("id"))
	if err != nil {
		return apis.NewNotFoundError("Vehicle not found", nil)
	}

	return e.JSON(http.StatusOK, record)
}

// Create - List a vehicle for rental; goes to the moderation queue
func (h *VehicleHandler) Create(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req struct {
		Name        string  `json:"name"`
		Brand       string  `json:"brand"`
		Model       string  `json:"model"`
		Location    string  `json:"location"`
		PricePerDay float64 `json:"pricePerDay"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.Name == "" || req.Location == "" {
		return apis.NewBadRequestError("Name and location are required", nil)
	}
	if req.PricePerDay <= 0 {
		return apis.NewBadRequestError("Price per day must be positive", nil)
	}

	collection, err := h.app.FindCollectionByNameOrId("vehicles")
	if err != nil {
		return apis.NewInternalServerError("internal error", err)
	}

	record := core.NewRecord(collection)
	record.Set("owner", e.Auth.Id)
	record.Set("name", req.Name)
	record.Set("brand", req.Brand)
	record.Set("model", req.Model)
	record.Set("location", req.Location)
	record.Set("price_per_day", req.PricePerDay)
	record.Set("is_available", true)
	record.Set("approval_status", string(models.VehicleApprovalPending))

	if err := h.app.SaveWithContext(e.Request.Context(), record); err != nil {
		return apis.NewBadRequestError("Failed to create vehicle", err)
	}

	return e.JSON(http.StatusCreated, record)
}

// SetAvailability - Owner toggles the availability gate
func (h *VehicleHandler) SetAvailability(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req struct {
		IsAvailable bool `json:"isAvailable"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	record, err := h.app.FindRecordById("vehicles", e.Request.PathValue("id"))
	if err != nil {
		return apis.NewNotFoundError("Vehicle not found", nil)
	}
	if record.GetString("owner") != e.Auth.Id {
		return apis.NewForbiddenError("Only the owner can change availability", nil)
	}

	record.Set("is_available", req.IsAvailable)
	if err := h.app.SaveWithContext(e.Request.Context(), record); err != nil {
		return apis.NewBadRequestError("Failed to update vehicle", err)
	}

	return e.JSON(http.StatusOK, record)
}
