package models

import "time"

// Event represents an auditable action in the system.
type Event struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`  // e.g., "contributor.login.success", "term.create"
	Level         string    `json:"level"` // e.g., "info", "warn", "error"
	Message       string    `json:"message"`
	ContributorID *int64    `json:"contributorId,omitempty"` // Nil for anonymous actions
	CreatedAt     time.Time `json:"createdAt"`
}
