package domain

import "time"

// BreachType distinguishes which target was missed.
type BreachType string

const (
	BreachTypeResponse   BreachType = "RESPONSE"
	BreachTypeResolution BreachType = "RESOLUTION"
)

// SLABreach records a detected breach event. At most one unresolved record
// exists per (ticket, type); a fresh breach after resolution gets a new id.
type SLABreach struct {
	ID              string
	TicketID        string
	PolicyID        string
	BreachType      BreachType
	BreachTime      time.Time
	DurationMinutes float64 // actual minus target at detection time
	EscalationLevel int
	IsResolved      bool
	ResolvedAt      *time.Time
	NotificationIDs []string
}
