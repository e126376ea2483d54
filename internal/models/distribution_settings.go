package models

import "time"

// DistributionSettings is the process-wide active-franchise record read by the
// automatic allocator. It is versioned: every switch bumps the version, and
// assignments record which version they read. Concurrent admin switches are
// last-write-wins; an assignment started under franchise A may still land on A
// after the active franchise changed to B.
type DistributionSettings struct {
	ID                  int       `json:"id"`
	ActiveFranchiseID   *int      `json:"active_franchise_id"`
	ActiveFranchiseName string    `json:"active_franchise_name"`
	Version             int64     `json:"version"`
	UpdatedByUserID     *int      `json:"updated_by_user_id,omitempty"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// SetActiveFranchiseRequest represents the request body for switching the
// active distribution target. A null franchise_id clears it (goal-based
// selection takes over).
type SetActiveFranchiseRequest struct {
	FranchiseID *int `json:"franchise_id"`
}
