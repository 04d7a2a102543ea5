package sla

import (
	"github.com/spec-kit/sla-engine/internal/domain"
)

// EscalationTrigger is a pure decision function over escalation rules: it
// reports which action applies at a level but performs no mutation and sends
// nothing itself. Side effects belong to the caller's collaborators.
type EscalationTrigger struct {
	registry *PolicyRegistry
}

// NewEscalationTrigger constructs the trigger over the policy registry.
func NewEscalationTrigger(registry *PolicyRegistry) *EscalationTrigger {
	return &EscalationTrigger{registry: registry}
}

// RulesForTicket returns the escalation rules of the ticket's policy, or an
// empty slice when no policy matches.
func (e *EscalationTrigger) RulesForTicket(ticket *domain.Ticket) []domain.EscalationRule {
	policy := e.registry.FindPolicyForTicket(ticket)
	if policy == nil {
		return []domain.EscalationRule{}
	}
	return policy.EscalationRules
}

// Trigger resolves the action for the requested level. It returns nil when
// the ticket has no policy or the policy has no active rule at that level.
func (e *EscalationTrigger) Trigger(ticket *domain.Ticket, level int) *domain.EscalationAction {
	policy := e.registry.FindPolicyForTicket(ticket)
	if policy == nil {
		return nil
	}
	rule, ok := policy.RuleForLevel(level)
	if !ok {
		return nil
	}
	action := rule.Action
	return &action
}
