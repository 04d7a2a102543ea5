package sla

import (
	"sync"

	"github.com/google/uuid"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// BreachTracker owns the breach collection. Scans are dedup-guarded: at most
// one unresolved record exists per (ticket, breach type), so repeated scans
// over an unchanged ticket set create nothing new.
type BreachTracker struct {
	mu       sync.Mutex
	breaches []*domain.SLABreach
	clock    Clock
}

// NewBreachTracker creates an empty tracker.
func NewBreachTracker(clock Clock) *BreachTracker {
	if clock == nil {
		clock = SystemClock()
	}
	return &BreachTracker{clock: clock}
}

// Scan evaluates every ticket with the calculator and records new breaches.
// It returns only the records created by this scan. Response breaches take
// priority when both targets are missed.
func (t *BreachTracker) Scan(tickets []domain.Ticket, calculator *MetricsCalculator) []*domain.SLABreach {
	t.mu.Lock()
	defer t.mu.Unlock()

	var created []*domain.SLABreach
	for i := range tickets {
		ticket := &tickets[i]
		metrics := calculator.Calculate(ticket)
		if metrics == nil || (!metrics.ResponseBreached && !metrics.ResolutionBreached) {
			continue
		}

		breachType := domain.BreachTypeResolution
		if metrics.ResponseBreached {
			breachType = domain.BreachTypeResponse
		}
		if t.hasOpenBreach(ticket.ID, breachType) {
			continue
		}

		breach := &domain.SLABreach{
			ID:              uuid.NewString(),
			TicketID:        ticket.ID,
			PolicyID:        metrics.PolicyID,
			BreachType:      breachType,
			BreachTime:      t.clock.Now(),
			DurationMinutes: overrunMinutes(metrics, breachType),
			EscalationLevel: ticket.EscalationLevel,
			NotificationIDs: []string{},
		}
		t.breaches = append(t.breaches, breach)
		created = append(created, copyBreach(breach))
	}
	return created
}

// Resolve marks a breach resolved and stamps the resolution time. A resolved
// breach is never reopened; a later breach of the same type on the same
// ticket gets a fresh record. Returns false for unknown ids.
func (t *BreachTracker) Resolve(breachID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, breach := range t.breaches {
		if breach.ID == breachID {
			if !breach.IsResolved {
				breach.IsResolved = true
				now := t.clock.Now()
				breach.ResolvedAt = &now
			}
			return true
		}
	}
	return false
}

// AppendNotification records a sent notification id on an open breach.
func (t *BreachTracker) AppendNotification(breachID, notificationID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, breach := range t.breaches {
		if breach.ID == breachID {
			breach.NotificationIDs = append(breach.NotificationIDs, notificationID)
			return true
		}
	}
	return false
}

// ListBreaches returns all records in insertion order, optionally filtered
// to a single ticket.
func (t *BreachTracker) ListBreaches(ticketID string) []*domain.SLABreach {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*domain.SLABreach, 0, len(t.breaches))
	for _, breach := range t.breaches {
		if ticketID != "" && breach.TicketID != ticketID {
			continue
		}
		out = append(out, copyBreach(breach))
	}
	return out
}

// GetByID returns one breach record, or nil.
func (t *BreachTracker) GetByID(breachID string) *domain.SLABreach {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, breach := range t.breaches {
		if breach.ID == breachID {
			return copyBreach(breach)
		}
	}
	return nil
}

func (t *BreachTracker) hasOpenBreach(ticketID string, breachType domain.BreachType) bool {
	for _, breach := range t.breaches {
		if breach.TicketID == ticketID && breach.BreachType == breachType && !breach.IsResolved {
			return true
		}
	}
	return false
}

// overrunMinutes converts the breached pair's actual-minus-target overrun
// into minutes. When the response pair breached without a recorded actual
// the elapsed clock stands in for it.
func overrunMinutes(metrics *domain.SLAMetrics, breachType domain.BreachType) float64 {
	var actual, target float64
	if breachType == domain.BreachTypeResponse {
		target = metrics.ResponseTarget
		actual = metrics.ElapsedHours
		if metrics.ResponseActual != nil {
			actual = *metrics.ResponseActual
		}
	} else {
		target = metrics.ResolutionTarget
		actual = metrics.ElapsedHours
		if metrics.ResolutionActual != nil {
			actual = *metrics.ResolutionActual
		}
	}
	overrun := (actual - target) * minutesPerHour
	if overrun < 0 {
		overrun = 0
	}
	return overrun
}

func copyBreach(breach *domain.SLABreach) *domain.SLABreach {
	clone := *breach
	clone.NotificationIDs = append([]string(nil), breach.NotificationIDs...)
	if breach.ResolvedAt != nil {
		resolvedAt := *breach.ResolvedAt
		clone.ResolvedAt = &resolvedAt
	}
	return &clone
}
