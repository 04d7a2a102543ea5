package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-engine/internal/domain"
	"github.com/spec-kit/sla-engine/internal/events"
	"github.com/spec-kit/sla-engine/internal/observability"
	"github.com/spec-kit/sla-engine/internal/repository"
	"github.com/spec-kit/sla-engine/internal/sla"
	apperrors "github.com/spec-kit/sla-engine/pkg/util"
)

// SLAService coordinates the SLA engine: policy administration, per-ticket
// metrics, breach scans, escalation decisions and compliance reports. The
// engine components stay pure; this layer owns the side effects (events,
// counters, logging).
type SLAService struct {
	registry   *sla.PolicyRegistry
	calculator *sla.MetricsCalculator
	tracker    *sla.BreachTracker
	trigger    *sla.EscalationTrigger
	aggregator *sla.ReportAggregator
	tickets    repository.TicketSource
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// SLADependencies bundles collaborators for the SLA service.
type SLADependencies struct {
	Registry   *sla.PolicyRegistry
	Calculator *sla.MetricsCalculator
	Tracker    *sla.BreachTracker
	Trigger    *sla.EscalationTrigger
	Aggregator *sla.ReportAggregator
	Tickets    repository.TicketSource
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewSLAService constructs the service.
func NewSLAService(deps SLADependencies) *SLAService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SLAService{
		registry:   deps.Registry,
		calculator: deps.Calculator,
		tracker:    deps.Tracker,
		trigger:    deps.Trigger,
		aggregator: deps.Aggregator,
		tickets:    deps.Tickets,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
	}
}

// CreatePolicy validates and stores a new policy.
func (s *SLAService) CreatePolicy(ctx context.Context, input sla.PolicyInput) (*domain.SLAPolicy, error) {
	policy, err := s.registry.Create(input)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}
	s.publishPolicyEvent(ctx, events.EventPolicyCreated, policy.ID, policy.Name)
	s.logger.Info("sla policy created", zap.String("policy_id", policy.ID), zap.String("name", policy.Name))
	return policy, nil
}

// UpdatePolicy merges a partial update into an existing policy.
func (s *SLAService) UpdatePolicy(ctx context.Context, id string, update sla.PolicyUpdate) (*domain.SLAPolicy, error) {
	policy, err := s.registry.Update(id, update)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}
	if policy == nil {
		return nil, apperrors.NewNotFound("sla policy", map[string]any{"policy_id": id})
	}
	s.publishPolicyEvent(ctx, events.EventPolicyUpdated, policy.ID, policy.Name)
	return policy, nil
}

// DeletePolicy removes a policy by id.
func (s *SLAService) DeletePolicy(ctx context.Context, id string) error {
	if !s.registry.Delete(id) {
		return apperrors.NewNotFound("sla policy", map[string]any{"policy_id": id})
	}
	s.publishPolicyEvent(ctx, events.EventPolicyDeleted, id, "")
	return nil
}

// GetPolicy returns one policy.
func (s *SLAService) GetPolicy(id string) (*domain.SLAPolicy, error) {
	policy := s.registry.GetByID(id)
	if policy == nil {
		return nil, apperrors.NewNotFound("sla policy", map[string]any{"policy_id": id})
	}
	return policy, nil
}

// ListPolicies returns all policies in insertion order.
func (s *SLAService) ListPolicies() []*domain.SLAPolicy {
	return s.registry.ListAll()
}

// TicketMetrics computes the SLA reading for one ticket. A nil metrics
// result with nil error means the ticket exists but is not SLA-tracked.
func (s *SLAService) TicketMetrics(ctx context.Context, ticketID string) (*domain.SLAMetrics, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return s.calculator.Calculate(ticket), nil
}

// ScanOnce loads the ticket set and records new breaches. Safe to run
// repeatedly; the tracker dedup guard makes repeated scans idempotent apart
// from genuinely new breaches.
func (s *SLAService) ScanOnce(ctx context.Context) ([]*domain.SLABreach, error) {
	tickets, err := s.tickets.ListAll(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	created := s.tracker.Scan(tickets, s.calculator)

	byType := map[string]int{}
	for _, breach := range created {
		byType[string(breach.BreachType)]++
		s.publishEvent(ctx, events.Event{
			Type:     events.EventBreachDetected,
			TicketID: breach.TicketID,
			Payload: events.BreachDetectedPayload{
				BreachID:        breach.ID,
				PolicyID:        breach.PolicyID,
				BreachType:      breach.BreachType,
				DurationMinutes: breach.DurationMinutes,
				EscalationLevel: breach.EscalationLevel,
			},
		})
	}
	s.metrics.RecordScan(byType)
	s.logger.Info("sla scan complete",
		zap.Int("tickets", len(tickets)),
		zap.Int("new_breaches", len(created)),
	)
	return created, nil
}

// ResolveBreach marks a breach resolved.
func (s *SLAService) ResolveBreach(ctx context.Context, breachID string) error {
	breach := s.tracker.GetByID(breachID)
	if breach == nil || !s.tracker.Resolve(breachID) {
		return apperrors.NewNotFound("sla breach", map[string]any{"breach_id": breachID})
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventBreachResolved,
		TicketID: breach.TicketID,
		Payload: events.BreachResolvedPayload{
			BreachID:   breachID,
			BreachType: breach.BreachType,
		},
	})
	return nil
}

// ListBreaches returns breach records, optionally for one ticket.
func (s *SLAService) ListBreaches(ticketID string) []*domain.SLABreach {
	return s.tracker.ListBreaches(ticketID)
}

// EscalationRules returns the rules applicable to a ticket.
func (s *SLAService) EscalationRules(ctx context.Context, ticketID string) ([]domain.EscalationRule, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return s.trigger.RulesForTicket(ticket), nil
}

// DecideEscalation resolves the action for the requested level. The action
// is returned to the caller for execution by the ticket-mutation and
// notification collaborators; nothing is mutated here.
func (s *SLAService) DecideEscalation(ctx context.Context, ticketID string, level int) (*domain.EscalationAction, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}

	action := s.trigger.Trigger(ticket, level)
	if action == nil {
		return nil, apperrors.NewNotFound("escalation rule", map[string]any{
			"ticket_id": ticketID,
			"level":     level,
		})
	}

	s.metrics.RecordEscalation()
	s.publishEvent(ctx, events.Event{
		Type:     events.EventEscalationTriggered,
		TicketID: ticketID,
		Payload: events.EscalationTriggeredPayload{
			Level:  level,
			Kind:   action.Kind,
			Action: *action,
		},
	})
	return action, nil
}

// ComplianceReport builds the aggregated compliance summary for the period.
func (s *SLAService) ComplianceReport(ctx context.Context, from, to time.Time) (*domain.ComplianceReport, error) {
	tickets, err := s.tickets.ListCreatedBetween(ctx, from, to)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return s.aggregator.Build(tickets, s.tracker.ListBreaches(""), from, to), nil
}

func (s *SLAService) publishPolicyEvent(ctx context.Context, eventType events.EventType, policyID, name string) {
	s.publishEvent(ctx, events.Event{
		Type:    eventType,
		Payload: events.PolicyChangedPayload{PolicyID: policyID, Name: name},
	})
}

func (s *SLAService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed", zap.String("type", string(event.Type)), zap.Error(err))
	}
}
