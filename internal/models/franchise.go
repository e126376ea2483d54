package models

import "time"

type Franchise struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"` // 'active', 'inactive'
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateFranchiseRequest represents the request body for creating a franchise
type CreateFranchiseRequest struct {
	Name string `json:"name"`
}

// UpdateFranchiseRequest represents the request body for updating a franchise
type UpdateFranchiseRequest struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}
