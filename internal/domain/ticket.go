package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew         TicketStatus = "NEW"
	TicketStatusOpen        TicketStatus = "OPEN"
	TicketStatusInProgress  TicketStatus = "IN_PROGRESS"
	TicketStatusPendingUser TicketStatus = "PENDING_USER"
	TicketStatusResolved    TicketStatus = "RESOLVED"
	TicketStatusClosed      TicketStatus = "CLOSED"
	TicketStatusCancelled   TicketStatus = "CANCELLED"
)

// AwaitingFirstResponse reports whether the ticket is still in an intake
// state, i.e. nobody has responded to it yet.
func (s TicketStatus) AwaitingFirstResponse() bool {
	return s == TicketStatusNew || s == TicketStatusOpen
}

// Terminal reports whether the ticket has reached a state that stops the
// resolution clock.
func (s TicketStatus) Terminal() bool {
	return s == TicketStatusResolved || s == TicketStatusClosed
}

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "LOW"
	TicketPriorityMedium   TicketPriority = "MEDIUM"
	TicketPriorityHigh     TicketPriority = "HIGH"
	TicketPriorityCritical TicketPriority = "CRITICAL"
)

// Ticket is the read-only view of a support request as supplied by the
// external ticket store. The SLA engine never mutates tickets; escalation
// actions are executed by the ticket-mutation collaborator.
type Ticket struct {
	ID              string
	Priority        TicketPriority
	Category        string
	Department      string
	Status          TicketStatus
	AssigneeID      *string
	EscalationLevel int
	CreatedAt       time.Time
	UpdatedAt       time.Time
	FirstResponseAt *time.Time
	ResolvedAt      *time.Time
	ClosedAt        *time.Time
}

// SLAEndAt returns the instant the resolution clock stopped for a terminal
// ticket, or nil while the ticket is still open.
func (t *Ticket) SLAEndAt() *time.Time {
	if !t.Status.Terminal() {
		return nil
	}
	if t.ResolvedAt != nil {
		return t.ResolvedAt
	}
	return t.ClosedAt
}
