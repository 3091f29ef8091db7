package models

import (
	"time"
)

type VehicleApproval string

const (
	VehicleApprovalPending  VehicleApproval = "pending"
	VehicleApprovalApproved VehicleApproval = "approved"
	VehicleApprovalRejected VehicleApproval = "rejected"
)

type Vehicle struct {
	ID             string          `json:"id"`
	OwnerID        string          `json:"owner"`
	Name           string          `json:"name"`
	Brand          string          `json:"brand"`
	Model          string          `json:"model"`
	Location       string          `json:"location"`
	PricePerDay    float64         `json:"price_per_day"`
	IsAvailable    bool            `json:"is_available"`
	ApprovalStatus VehicleApproval `json:"approval_status"`
	Created        time.Time       `json:"created"`
	Updated        time.Time       `json:"updated"`
}

// Bookable reports whether the vehicle can accept new reservations at all.
// Date conflicts are a separate check.
func (v *Vehicle) Bookable() bool {
	return v.ApprovalStatus == VehicleApprovalApproved && v.IsAvailable
}
