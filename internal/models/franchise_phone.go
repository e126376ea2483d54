package models

import "time"

type FranchisePhone struct {
	ID          int       `json:"id"`
	FranchiseID int       `json:"franchise_id"`
	PhoneNumber string    `json:"phone_number"` // stored in E.164
	OrderNumber int       `json:"order_number"` // rotation rank within the franchise
	IsActive    bool      `json:"is_active"`
	DailyGoal   *int      `json:"daily_goal,omitempty"` // line-level target, optional
	Category    string    `json:"category,omitempty"`
	Tags        string    `json:"tags,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateFranchisePhoneRequest represents the request body for adding a phone line
type CreateFranchisePhoneRequest struct {
	PhoneNumber string `json:"phone_number"`
	OrderNumber int    `json:"order_number"`
	DailyGoal   *int   `json:"daily_goal,omitempty"`
	Category    string `json:"category"`
	Tags        string `json:"tags"`
	Notes       string `json:"notes"`
}

// UpdateFranchisePhoneRequest represents the request body for updating a phone line
type UpdateFranchisePhoneRequest struct {
	PhoneNumber string `json:"phone_number"`
	IsActive    *bool  `json:"is_active,omitempty"`
	DailyGoal   *int   `json:"daily_goal,omitempty"`
	Category    string `json:"category"`
	Tags        string `json:"tags"`
	Notes       string `json:"notes"`
}
