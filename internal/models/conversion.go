package models

import "time"

type Conversion struct {
	ID               int       `json:"id"`
	LeadID           *int      `json:"lead_id,omitempty"`
	FranchiseID      *int      `json:"franchise_id,omitempty"`
	FranchisePhoneID *int      `json:"franchise_phone_id,omitempty"`
	Date             time.Time `json:"date"`
	Amount           float64   `json:"amount"`
	Description      string    `json:"description,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// CreateConversionRequest registers an ad-hoc conversion directly against a
// franchise and phone, without a prior lead
type CreateConversionRequest struct {
	FranchiseID int     `json:"franchise_id"`
	PhoneID     int     `json:"phone_id"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Count       int     `json:"count"` // bulk registration, defaults to 1
}
