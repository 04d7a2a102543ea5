package sla

import (
	"github.com/spec-kit/sla-engine/internal/domain"
)

// atRiskFraction is the share of the resolution target below which a ticket
// reads AT_RISK. Not configurable per policy.
const atRiskFraction = 0.2

// MetricsCalculator derives SLAMetrics for a ticket from the applicable
// policy and the business calendar. It is a pure reader: it never mutates
// tickets, policies, or breach state.
type MetricsCalculator struct {
	registry *PolicyRegistry
	clock    Clock

	// elapsedOverrunBreach switches the resolution-breach rule from the
	// flag-based one (a ticket only breaches once it reaches a terminal
	// state) to a direct elapsed-vs-target comparison for open tickets.
	elapsedOverrunBreach bool
}

// NewMetricsCalculator constructs a calculator over the registry and clock.
func NewMetricsCalculator(registry *PolicyRegistry, clock Clock, elapsedOverrunBreach bool) *MetricsCalculator {
	if clock == nil {
		clock = SystemClock()
	}
	return &MetricsCalculator{
		registry:             registry,
		clock:                clock,
		elapsedOverrunBreach: elapsedOverrunBreach,
	}
}

// Calculate computes the metrics for one ticket, or nil when no policy
// matches (the ticket is simply not SLA-tracked, not a fault).
func (c *MetricsCalculator) Calculate(ticket *domain.Ticket) *domain.SLAMetrics {
	policy := c.registry.FindPolicyForTicket(ticket)
	if policy == nil {
		return nil
	}

	responseTarget := float64(policy.ResponseMinutes) / minutesPerHour
	resolutionTarget := float64(policy.ResolutionMinutes) / minutesPerHour

	clockEnd := c.clock.Now()
	if terminalAt := ticket.SLAEndAt(); terminalAt != nil {
		clockEnd = *terminalAt
	}
	elapsed := ElapsedBusinessTime(ticket.CreatedAt, clockEnd, policy.BusinessHours)

	metrics := &domain.SLAMetrics{
		TicketID:         ticket.ID,
		PolicyID:         policy.ID,
		PolicyName:       policy.Name,
		ResponseTarget:   responseTarget,
		ResolutionTarget: resolutionTarget,
		ElapsedHours:     elapsed,
		EscalationLevel:  ticket.EscalationLevel,
	}

	// Response actual is only defined once the ticket has left intake and
	// a first-response instant was recorded by the ticket store. It is
	// never synthesized here.
	if !ticket.Status.AwaitingFirstResponse() && ticket.FirstResponseAt != nil {
		actual := ElapsedBusinessTime(ticket.CreatedAt, *ticket.FirstResponseAt, policy.BusinessHours)
		metrics.ResponseActual = &actual
		metrics.ResponseBreached = actual > responseTarget
	}

	if ticket.Status.Terminal() {
		actual := elapsed
		metrics.ResolutionActual = &actual
		metrics.ResolutionBreached = actual > resolutionTarget
	} else if c.elapsedOverrunBreach {
		metrics.ResolutionBreached = elapsed > resolutionTarget
	}

	remaining := resolutionTarget - elapsed
	if remaining < 0 {
		remaining = 0
	}
	metrics.RemainingHours = remaining

	switch {
	case metrics.ResponseBreached || metrics.ResolutionBreached:
		metrics.Status = domain.SLAStatusBreached
	case remaining < atRiskFraction*resolutionTarget:
		metrics.Status = domain.SLAStatusAtRisk
	default:
		metrics.Status = domain.SLAStatusOnTrack
	}

	return metrics
}
