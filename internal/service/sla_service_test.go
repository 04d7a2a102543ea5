package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/sla-engine/internal/domain"
	"github.com/spec-kit/sla-engine/internal/events"
	"github.com/spec-kit/sla-engine/internal/observability"
	"github.com/spec-kit/sla-engine/internal/repository"
	"github.com/spec-kit/sla-engine/internal/sla"
	apperrors "github.com/spec-kit/sla-engine/pkg/util"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

// capturingDispatcher records every published event so tests can assert on
// the side-effect stream without real handlers.
type capturingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *capturingDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *capturingDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {}

func (d *capturingDispatcher) published(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	matched := []events.Event{}
	for _, event := range d.events {
		if event.Type == eventType {
			matched = append(matched, event)
		}
	}
	return matched
}

type serviceFixture struct {
	service    *SLAService
	clock      *fakeClock
	source     *repository.MemoryTicketSource
	dispatcher *capturingDispatcher
	metrics    *observability.Metrics
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	clock := &fakeClock{now: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)}
	registry := sla.NewPolicyRegistry(clock)
	calculator := sla.NewMetricsCalculator(registry, clock, false)
	tracker := sla.NewBreachTracker(clock)
	source := repository.NewMemoryTicketSource()
	dispatcher := &capturingDispatcher{}
	metrics := observability.NewMetrics()

	svc := NewSLAService(SLADependencies{
		Registry:   registry,
		Calculator: calculator,
		Tracker:    tracker,
		Trigger:    sla.NewEscalationTrigger(registry),
		Aggregator: sla.NewReportAggregator(calculator, clock),
		Tickets:    source,
		Dispatcher: dispatcher,
		Metrics:    metrics,
	})

	return &serviceFixture{
		service:    svc,
		clock:      clock,
		source:     source,
		dispatcher: dispatcher,
		metrics:    metrics,
	}
}

func criticalInput() sla.PolicyInput {
	return sla.PolicyInput{
		Name:              "critical-default",
		Priority:          domain.TicketPriorityCritical,
		ResponseMinutes:   15,
		ResolutionMinutes: 240,
		BusinessHours:     domain.BusinessHoursConfig{Enabled: false},
		EscalationRules: []domain.EscalationRule{
			{
				Level:               1,
				TriggerAfterMinutes: 30,
				Action: domain.EscalationAction{
					Kind:   domain.EscalationActionNotify,
					Notify: &domain.NotifyAction{UserIDs: []string{"mgr-1"}},
				},
				IsActive: true,
			},
		},
		IsActive: true,
	}
}

func domainErrorCode(t *testing.T, err error) string {
	t.Helper()
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	return domainErr.Code
}

func TestCreatePolicyRejectsInvalidInput(t *testing.T) {
	f := newServiceFixture(t)

	input := criticalInput()
	input.BusinessHours = domain.BusinessHoursConfig{Enabled: true, Timezone: "UTC"}
	_, err := f.service.CreatePolicy(context.Background(), input)

	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", domainErrorCode(t, err))
	assert.Empty(t, f.dispatcher.events)
}

func TestCreatePolicyPublishesEvent(t *testing.T) {
	f := newServiceFixture(t)

	policy, err := f.service.CreatePolicy(context.Background(), criticalInput())
	require.NoError(t, err)
	require.NotNil(t, policy)

	published := f.dispatcher.published(events.EventPolicyCreated)
	require.Len(t, published, 1)
	payload, ok := published[0].Payload.(events.PolicyChangedPayload)
	require.True(t, ok)
	assert.Equal(t, policy.ID, payload.PolicyID)
}

func TestUpdatePolicyUnknownID(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.service.UpdatePolicy(context.Background(), "missing", sla.PolicyUpdate{})

	assert.Equal(t, "NOT_FOUND", domainErrorCode(t, err))
}

func TestDeletePolicyUnknownID(t *testing.T) {
	f := newServiceFixture(t)

	err := f.service.DeletePolicy(context.Background(), "missing")

	assert.Equal(t, "NOT_FOUND", domainErrorCode(t, err))
}

func TestTicketMetricsUnknownTicket(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.service.TicketMetrics(context.Background(), "missing")

	assert.Equal(t, "NOT_FOUND", domainErrorCode(t, err))
}

func TestTicketMetricsUntrackedTicket(t *testing.T) {
	f := newServiceFixture(t)
	_, err := f.service.CreatePolicy(context.Background(), criticalInput())
	require.NoError(t, err)

	f.source.Put(domain.Ticket{
		ID:        "t-low",
		Priority:  domain.TicketPriorityLow,
		Status:    domain.TicketStatusOpen,
		CreatedAt: f.clock.now,
	})

	metrics, err := f.service.TicketMetrics(context.Background(), "t-low")
	require.NoError(t, err)
	assert.Nil(t, metrics)
}

func TestTicketMetricsTrackedTicket(t *testing.T) {
	f := newServiceFixture(t)
	_, err := f.service.CreatePolicy(context.Background(), criticalInput())
	require.NoError(t, err)

	f.source.Put(domain.Ticket{
		ID:        "t-crit",
		Priority:  domain.TicketPriorityCritical,
		Status:    domain.TicketStatusNew,
		CreatedAt: f.clock.now,
	})
	f.clock.Advance(10 * time.Minute)

	metrics, err := f.service.TicketMetrics(context.Background(), "t-crit")
	require.NoError(t, err)
	require.NotNil(t, metrics)
	assert.Equal(t, domain.SLAStatusOnTrack, metrics.Status)
}

func TestScanOnceRecordsAndPublishesBreaches(t *testing.T) {
	f := newServiceFixture(t)
	_, err := f.service.CreatePolicy(context.Background(), criticalInput())
	require.NoError(t, err)

	createdAt := f.clock.now
	resolvedAt := createdAt.Add(300 * time.Minute)
	f.source.Put(domain.Ticket{
		ID:         "t-late",
		Priority:   domain.TicketPriorityCritical,
		Status:     domain.TicketStatusResolved,
		CreatedAt:  createdAt,
		ResolvedAt: &resolvedAt,
	})
	f.source.Put(domain.Ticket{
		ID:        "t-fresh",
		Priority:  domain.TicketPriorityCritical,
		Status:    domain.TicketStatusNew,
		CreatedAt: f.clock.now,
	})
	f.clock.Advance(310 * time.Minute)

	created, err := f.service.ScanOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "t-late", created[0].TicketID)
	assert.Equal(t, domain.BreachTypeResolution, created[0].BreachType)

	published := f.dispatcher.published(events.EventBreachDetected)
	require.Len(t, published, 1)
	assert.Equal(t, "t-late", published[0].TicketID)
	payload, ok := published[0].Payload.(events.BreachDetectedPayload)
	require.True(t, ok)
	assert.Equal(t, created[0].ID, payload.BreachID)
	assert.InDelta(t, 60.0, payload.DurationMinutes, 1e-6)

	snapshot := f.metrics.Snapshot()
	assert.Equal(t, int64(1), snapshot.ScansRun)
	assert.Equal(t, int64(1), snapshot.BreachesDetected[string(domain.BreachTypeResolution)])
}

func TestScanOnceIsIdempotent(t *testing.T) {
	f := newServiceFixture(t)
	_, err := f.service.CreatePolicy(context.Background(), criticalInput())
	require.NoError(t, err)

	createdAt := f.clock.now
	resolvedAt := createdAt.Add(300 * time.Minute)
	f.source.Put(domain.Ticket{
		ID:         "t-late",
		Priority:   domain.TicketPriorityCritical,
		Status:     domain.TicketStatusResolved,
		CreatedAt:  createdAt,
		ResolvedAt: &resolvedAt,
	})
	f.clock.Advance(310 * time.Minute)

	first, err := f.service.ScanOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := f.service.ScanOnce(context.Background())
	require.NoError(t, err)
	assert.Empty(t, second)

	assert.Len(t, f.dispatcher.published(events.EventBreachDetected), 1)
	assert.Equal(t, int64(2), f.metrics.Snapshot().ScansRun)
}

func TestResolveBreachPublishesEvent(t *testing.T) {
	f := newServiceFixture(t)
	_, err := f.service.CreatePolicy(context.Background(), criticalInput())
	require.NoError(t, err)

	createdAt := f.clock.now
	resolvedAt := createdAt.Add(300 * time.Minute)
	f.source.Put(domain.Ticket{
		ID:         "t-late",
		Priority:   domain.TicketPriorityCritical,
		Status:     domain.TicketStatusResolved,
		CreatedAt:  createdAt,
		ResolvedAt: &resolvedAt,
	})
	f.clock.Advance(310 * time.Minute)

	created, err := f.service.ScanOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, created, 1)

	require.NoError(t, f.service.ResolveBreach(context.Background(), created[0].ID))

	published := f.dispatcher.published(events.EventBreachResolved)
	require.Len(t, published, 1)
	payload, ok := published[0].Payload.(events.BreachResolvedPayload)
	require.True(t, ok)
	assert.Equal(t, created[0].ID, payload.BreachID)

	stored := f.service.ListBreaches("t-late")
	require.Len(t, stored, 1)
	assert.True(t, stored[0].IsResolved)
}

func TestResolveBreachUnknownID(t *testing.T) {
	f := newServiceFixture(t)

	err := f.service.ResolveBreach(context.Background(), "missing")

	assert.Equal(t, "NOT_FOUND", domainErrorCode(t, err))
}

func TestDecideEscalationReturnsAction(t *testing.T) {
	f := newServiceFixture(t)
	_, err := f.service.CreatePolicy(context.Background(), criticalInput())
	require.NoError(t, err)

	f.source.Put(domain.Ticket{
		ID:        "t-crit",
		Priority:  domain.TicketPriorityCritical,
		Status:    domain.TicketStatusInProgress,
		CreatedAt: f.clock.now,
	})

	action, err := f.service.DecideEscalation(context.Background(), "t-crit", 1)
	require.NoError(t, err)
	require.NotNil(t, action)
	assert.Equal(t, domain.EscalationActionNotify, action.Kind)
	require.NotNil(t, action.Notify)
	assert.Equal(t, []string{"mgr-1"}, action.Notify.UserIDs)

	published := f.dispatcher.published(events.EventEscalationTriggered)
	require.Len(t, published, 1)
	payload, ok := published[0].Payload.(events.EscalationTriggeredPayload)
	require.True(t, ok)
	assert.Equal(t, 1, payload.Level)
	assert.Equal(t, int64(1), f.metrics.Snapshot().EscalationsTriggered)
}

func TestDecideEscalationUnknownLevel(t *testing.T) {
	f := newServiceFixture(t)
	_, err := f.service.CreatePolicy(context.Background(), criticalInput())
	require.NoError(t, err)

	f.source.Put(domain.Ticket{
		ID:        "t-crit",
		Priority:  domain.TicketPriorityCritical,
		Status:    domain.TicketStatusInProgress,
		CreatedAt: f.clock.now,
	})

	_, err = f.service.DecideEscalation(context.Background(), "t-crit", 4)

	assert.Equal(t, "NOT_FOUND", domainErrorCode(t, err))
	assert.Empty(t, f.dispatcher.published(events.EventEscalationTriggered))
}

func TestEscalationRulesUnknownTicket(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.service.EscalationRules(context.Background(), "missing")

	assert.Equal(t, "NOT_FOUND", domainErrorCode(t, err))
}

func TestComplianceReportCountsBreachRecords(t *testing.T) {
	f := newServiceFixture(t)
	_, err := f.service.CreatePolicy(context.Background(), criticalInput())
	require.NoError(t, err)

	createdAt := f.clock.now
	lateResolved := createdAt.Add(300 * time.Minute)
	okResolved := createdAt.Add(60 * time.Minute)
	f.source.Put(domain.Ticket{
		ID:         "t-late",
		Priority:   domain.TicketPriorityCritical,
		Status:     domain.TicketStatusResolved,
		CreatedAt:  createdAt,
		ResolvedAt: &lateResolved,
	})
	f.source.Put(domain.Ticket{
		ID:         "t-ok",
		Priority:   domain.TicketPriorityCritical,
		Status:     domain.TicketStatusResolved,
		CreatedAt:  createdAt,
		ResolvedAt: &okResolved,
	})
	f.clock.Advance(310 * time.Minute)

	_, err = f.service.ScanOnce(context.Background())
	require.NoError(t, err)

	report, err := f.service.ComplianceReport(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, 2, report.TotalTracked)
	assert.Equal(t, 1, report.TotalBreached)
	assert.Equal(t, 1, report.OpenBreaches)
	assert.Equal(t, 0, report.ResolvedBreaches)
}

func TestTicketMetricsSourceFailure(t *testing.T) {
	f := newServiceFixture(t)
	f.service.tickets = failingSource{err: errors.New("connection reset")}

	_, err := f.service.TicketMetrics(context.Background(), "t-1")

	assert.Equal(t, "INTERNAL_ERROR", domainErrorCode(t, err))
}

type failingSource struct {
	err error
}

func (f failingSource) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	return nil, f.err
}

func (f failingSource) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	return nil, f.err
}

func (f failingSource) ListCreatedBetween(ctx context.Context, from, to time.Time) ([]domain.Ticket, error) {
	return nil, f.err
}
