package models

import "time"

type DistributionGoal struct {
	ID            int       `json:"id"`
	FranchiseID   int       `json:"franchise_id"`
	FranchiseName string    `json:"franchise_name,omitempty"` // Denormalized for display
	DailyGoal     int       `json:"daily_goal"`
	Priority      int       `json:"priority"` // lower = served first
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateDistributionGoalRequest represents the request body for creating a goal
type CreateDistributionGoalRequest struct {
	FranchiseID int `json:"franchise_id"`
	DailyGoal   int `json:"daily_goal"`
	Priority    int `json:"priority"`
}

// UpdateDistributionGoalRequest represents the request body for updating a goal
type UpdateDistributionGoalRequest struct {
	DailyGoal int   `json:"daily_goal"`
	Priority  int   `json:"priority"`
	IsActive  *bool `json:"is_active,omitempty"`
}
