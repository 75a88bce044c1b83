// services/errors.go - Error values shared by the core services
package services

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientPoints is returned when a purchase would drive the
	// score below zero. The score is never clamped; the purchase is rejected.
	ErrInsufficientPoints = errors.New("insufficient points")

	// ErrUnknownTier is returned for a badge name outside the ladder.
	ErrUnknownTier = errors.New("unknown badge tier")

	// ErrTierNotOwned is returned when equipping a badge that has not been
	// purchased yet.
	ErrTierNotOwned = errors.New("badge tier not owned")

	// ErrNoMission is returned when progress is requested but no mission
	// has been defined.
	ErrNoMission = errors.New("no mission defined")

	// ErrUserNotFound is returned when the target user record is missing.
	ErrUserNotFound = errors.New("user not found")
)

// TierLockedError rejects an out-of-order purchase and names the tier that
// must be bought first.
type TierLockedError struct {
	Tier     string
	Required string
}

func (e *TierLockedError) Error() string {
	return fmt.Sprintf("badge %q is locked: %q required first", e.Tier, e.Required)
}
