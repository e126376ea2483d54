package models

import "time"

// Lead status values. Transitions: pending -> contacted -> converted | lost.
const (
	LeadStatusPending   = "pending"
	LeadStatusContacted = "contacted"
	LeadStatusConverted = "converted"
	LeadStatusLost      = "lost"
)

type Lead struct {
	ID               int       `json:"id"`
	ServerID         *int      `json:"server_id,omitempty"`
	FranchiseID      *int      `json:"franchise_id,omitempty"`
	FranchisePhoneID *int      `json:"franchise_phone_id,omitempty"`
	Status           string    `json:"status"`
	Date             time.Time `json:"date"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// CreateLeadRequest represents a manual lead registration
type CreateLeadRequest struct {
	ServerID    *int `json:"server_id,omitempty"`
	FranchiseID *int `json:"franchise_id,omitempty"`
}

// UpdateLeadStatusRequest moves a lead through its lifecycle
type UpdateLeadStatusRequest struct {
	Status      string  `json:"status"`
	Amount      float64 `json:"amount,omitempty"`      // conversion amount when status=converted
	Description string  `json:"description,omitempty"` // conversion description
}
