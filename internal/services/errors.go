package services

import "errors"

// Error taxonomy for the distribution core. Handlers map these to HTTP
// statuses; no-capacity conditions are distinct from not-found so callers
// never guess a fallback silently.
var (
	// ErrNoDistributionTarget: no active goals configured and no active
	// franchise selected, automatic assignment has nowhere to go
	ErrNoDistributionTarget = errors.New("no distribution target configured")

	// ErrNoActivePhones: the chosen franchise has no active phone lines
	ErrNoActivePhones = errors.New("no available phone line for franchise")

	// ErrNotFound: referenced franchise, phone, server or ad does not exist
	ErrNotFound = errors.New("not found")

	// ErrValidation: malformed or out-of-range input, nothing was mutated
	ErrValidation = errors.New("validation failed")

	// ErrPhoneMismatch: the phone does not belong to the franchise or is inactive
	ErrPhoneMismatch = errors.New("phone does not belong to franchise or is inactive")

	// ErrDuplicateGoal: franchise already has an active distribution goal
	ErrDuplicateGoal = errors.New("franchise already has an active goal")

	// ErrInvalidTransition: lead status transition not allowed
	ErrInvalidTransition = errors.New("invalid lead status transition")
)
