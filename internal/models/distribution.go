package models

import "time"

// DailyDistribution is one ledger row: running counters for a
// (date, franchise, phone) triple. Rows are created on first assignment of
// the day and never deleted; the date key gives the implicit daily reset.
type DailyDistribution struct {
	ID               int       `json:"id"`
	Date             time.Time `json:"date"`
	ServerID         *int      `json:"server_id,omitempty"`
	FranchiseID      int       `json:"franchise_id"`
	FranchisePhoneID int       `json:"franchise_phone_id"`
	ConversionsCount int       `json:"conversions_count"`
	LeadsCount       int       `json:"leads_count"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// FranchiseProgress is the daily goal progress for one franchise
type FranchiseProgress struct {
	FranchiseID   int     `json:"franchise_id"`
	FranchiseName string  `json:"franchise_name,omitempty"`
	Date          string  `json:"date"`
	Current       int     `json:"current"`
	Goal          int     `json:"goal"`
	ProgressPct   float64 `json:"progress_pct"` // capped at 100 for display
}

// ManualAssignRequest is an admin override: explicit franchise, phone and count
type ManualAssignRequest struct {
	FranchiseID int    `json:"franchise_id"`
	PhoneID     int    `json:"phone_id"`
	Count       int    `json:"count"`
	Kind        string `json:"kind"` // 'lead' or 'conversion', defaults to conversion
}

// AssignmentResult is returned to callers after a successful assignment
type AssignmentResult struct {
	FranchiseID      int    `json:"franchise_id"`
	PhoneID          int    `json:"phone_id"`
	PhoneNumber      string `json:"phone_number,omitempty"`
	NewCount         int    `json:"new_count"`
	SettingsVersion  int64  `json:"settings_version,omitempty"` // active-franchise version used, 0 if goal-based
	SelectedByGoal   bool   `json:"selected_by_goal"`
	OverflowFallback bool   `json:"overflow_fallback"` // all franchises at goal, overflowed onto top priority
}
