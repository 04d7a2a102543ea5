package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/sla-engine/internal/domain"
)

func newCalculatorFixture(t *testing.T, elapsedOverrunBreach bool) (*MetricsCalculator, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)}
	registry := NewPolicyRegistry(clock)
	_, err := registry.Create(criticalPolicyInput(alwaysOnHours()))
	require.NoError(t, err)
	return NewMetricsCalculator(registry, clock, elapsedOverrunBreach), clock
}

func TestCalculateNoPolicyReturnsNil(t *testing.T) {
	calculator, clock := newCalculatorFixture(t, false)
	ticket := ticketAt("t1", domain.TicketPriorityLow, clock.now)

	assert.Nil(t, calculator.Calculate(&ticket))
}

func TestCalculateFreshTicketOnTrack(t *testing.T) {
	calculator, clock := newCalculatorFixture(t, false)
	ticket := ticketAt("t1", domain.TicketPriorityCritical, clock.now)
	clock.Advance(10 * time.Minute)

	metrics := calculator.Calculate(&ticket)
	require.NotNil(t, metrics)

	assert.Nil(t, metrics.ResponseActual)
	assert.False(t, metrics.ResponseBreached)
	assert.False(t, metrics.ResolutionBreached)
	assert.Equal(t, domain.SLAStatusOnTrack, metrics.Status)
	assert.InDelta(t, 10.0/60, metrics.ElapsedHours, 1e-9)
}

func TestCalculateAtRiskNearTarget(t *testing.T) {
	calculator, clock := newCalculatorFixture(t, false)
	ticket := ticketAt("t1", domain.TicketPriorityCritical, clock.now)
	clock.Advance(230 * time.Minute)

	metrics := calculator.Calculate(&ticket)
	require.NotNil(t, metrics)

	assert.InDelta(t, 10.0/60, metrics.RemainingHours, 1e-9)
	assert.Equal(t, domain.SLAStatusAtRisk, metrics.Status)
}

func TestCalculateOpenTicketPastTargetStaysAtRisk(t *testing.T) {
	// Flag-based rule: an open ticket past its resolution target is not
	// breached until it reaches a terminal state.
	calculator, clock := newCalculatorFixture(t, false)
	ticket := ticketAt("t1", domain.TicketPriorityCritical, clock.now)
	clock.Advance(250 * time.Minute)

	metrics := calculator.Calculate(&ticket)
	require.NotNil(t, metrics)

	assert.False(t, metrics.ResolutionBreached)
	assert.Zero(t, metrics.RemainingHours)
	assert.Equal(t, domain.SLAStatusAtRisk, metrics.Status)
}

func TestCalculateElapsedOverrunToggleBreachesOpenTicket(t *testing.T) {
	calculator, clock := newCalculatorFixture(t, true)
	ticket := ticketAt("t1", domain.TicketPriorityCritical, clock.now)
	clock.Advance(250 * time.Minute)

	metrics := calculator.Calculate(&ticket)
	require.NotNil(t, metrics)

	assert.True(t, metrics.ResolutionBreached)
	assert.Equal(t, domain.SLAStatusBreached, metrics.Status)
}

func TestCalculateResponseActualFromRecordedTimestamp(t *testing.T) {
	calculator, clock := newCalculatorFixture(t, false)
	createdAt := clock.now
	ticket := ticketAt("t1", domain.TicketPriorityCritical, createdAt)
	firstResponse := createdAt.Add(30 * time.Minute)
	ticket.FirstResponseAt = &firstResponse
	ticket.Status = domain.TicketStatusInProgress
	clock.Advance(time.Hour)

	metrics := calculator.Calculate(&ticket)
	require.NotNil(t, metrics)

	require.NotNil(t, metrics.ResponseActual)
	assert.InDelta(t, 0.5, *metrics.ResponseActual, 1e-9)
	assert.True(t, metrics.ResponseBreached) // 30min actual vs 15min target
	assert.Equal(t, domain.SLAStatusBreached, metrics.Status)
}

func TestCalculateRespondedWithoutTimestampLeavesActualUnset(t *testing.T) {
	calculator, clock := newCalculatorFixture(t, false)
	ticket := ticketAt("t1", domain.TicketPriorityCritical, clock.now)
	ticket.Status = domain.TicketStatusInProgress
	clock.Advance(time.Hour)

	metrics := calculator.Calculate(&ticket)
	require.NotNil(t, metrics)

	assert.Nil(t, metrics.ResponseActual)
	assert.False(t, metrics.ResponseBreached)
}

func TestCalculateResolvedTicketUsesTerminalInstant(t *testing.T) {
	calculator, clock := newCalculatorFixture(t, false)
	createdAt := clock.now
	ticket := ticketAt("t1", domain.TicketPriorityCritical, createdAt)
	resolvedAt := createdAt.Add(300 * time.Minute)
	ticket.Status = domain.TicketStatusResolved
	ticket.ResolvedAt = &resolvedAt
	clock.Advance(48 * time.Hour) // long after resolution

	metrics := calculator.Calculate(&ticket)
	require.NotNil(t, metrics)

	require.NotNil(t, metrics.ResolutionActual)
	assert.InDelta(t, 5.0, *metrics.ResolutionActual, 1e-9)
	assert.True(t, metrics.ResolutionBreached)
	assert.Equal(t, domain.SLAStatusBreached, metrics.Status)
}

func TestCalculateResolvedWithinTargetCompliant(t *testing.T) {
	calculator, clock := newCalculatorFixture(t, false)
	createdAt := clock.now
	ticket := ticketAt("t1", domain.TicketPriorityCritical, createdAt)
	resolvedAt := createdAt.Add(60 * time.Minute)
	ticket.Status = domain.TicketStatusClosed
	ticket.ClosedAt = &resolvedAt
	clock.Advance(2 * time.Hour)

	metrics := calculator.Calculate(&ticket)
	require.NotNil(t, metrics)

	require.NotNil(t, metrics.ResolutionActual)
	assert.InDelta(t, 1.0, *metrics.ResolutionActual, 1e-9)
	assert.False(t, metrics.ResolutionBreached)
}

func TestCalculateBusinessHoursElapsed(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 3, 1, 16, 30, 0, 0, time.UTC)} // Friday
	registry := NewPolicyRegistry(clock)
	_, err := registry.Create(criticalPolicyInput(weekdayBusinessHours()))
	require.NoError(t, err)
	calculator := NewMetricsCalculator(registry, clock, false)

	ticket := ticketAt("t1", domain.TicketPriorityCritical, clock.now)
	clock.now = time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC) // Monday

	metrics := calculator.Calculate(&ticket)
	require.NotNil(t, metrics)
	assert.InDelta(t, 1.0, metrics.ElapsedHours, 1e-9)
}

func TestCalculateStatusNeverRegresses(t *testing.T) {
	calculator, clock := newCalculatorFixture(t, false)
	ticket := ticketAt("t1", domain.TicketPriorityCritical, clock.now)

	rank := map[domain.SLAStatus]int{
		domain.SLAStatusOnTrack:  0,
		domain.SLAStatusAtRisk:   1,
		domain.SLAStatusBreached: 2,
	}

	last := -1
	for i := 0; i < 60; i++ {
		metrics := calculator.Calculate(&ticket)
		require.NotNil(t, metrics)
		current := rank[metrics.Status]
		assert.GreaterOrEqual(t, current, last, "status regressed at step %d", i)
		last = current
		clock.Advance(10 * time.Minute)
	}
}

func TestCalculateCopiesEscalationLevelFromTicket(t *testing.T) {
	calculator, clock := newCalculatorFixture(t, false)
	ticket := ticketAt("t1", domain.TicketPriorityCritical, clock.now)
	ticket.EscalationLevel = 2

	metrics := calculator.Calculate(&ticket)
	require.NotNil(t, metrics)
	assert.Equal(t, 2, metrics.EscalationLevel)
}
