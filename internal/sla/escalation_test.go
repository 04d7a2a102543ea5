package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/sla-engine/internal/domain"
)

func newEscalationFixture(t *testing.T, rules []domain.EscalationRule) (*EscalationTrigger, domain.Ticket) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)}
	registry := NewPolicyRegistry(clock)
	input := criticalPolicyInput(alwaysOnHours())
	input.EscalationRules = rules
	_, err := registry.Create(input)
	require.NoError(t, err)
	return NewEscalationTrigger(registry), ticketAt("t1", domain.TicketPriorityCritical, clock.now)
}

func notifyRule(level int, userIDs ...string) domain.EscalationRule {
	return domain.EscalationRule{
		Level:               level,
		TriggerAfterMinutes: 30,
		IsActive:            true,
		Action: domain.EscalationAction{
			Kind:   domain.EscalationActionNotify,
			Notify: &domain.NotifyAction{UserIDs: userIDs},
		},
	}
}

func TestTriggerReturnsMatchingRuleAction(t *testing.T) {
	trigger, ticket := newEscalationFixture(t, []domain.EscalationRule{notifyRule(1, "lead-1")})

	action := trigger.Trigger(&ticket, 1)
	require.NotNil(t, action)
	assert.Equal(t, domain.EscalationActionNotify, action.Kind)
	require.NotNil(t, action.Notify)
	assert.Equal(t, []string{"lead-1"}, action.Notify.UserIDs)

	assert.Nil(t, trigger.Trigger(&ticket, 2))
}

func TestTriggerSkipsInactiveRule(t *testing.T) {
	rule := notifyRule(1, "lead-1")
	rule.IsActive = false
	trigger, ticket := newEscalationFixture(t, []domain.EscalationRule{rule})

	assert.Nil(t, trigger.Trigger(&ticket, 1))
}

func TestTriggerFirstRuleWinsOnDuplicateLevels(t *testing.T) {
	trigger, ticket := newEscalationFixture(t, []domain.EscalationRule{
		notifyRule(1, "first"),
		notifyRule(1, "second"),
	})

	action := trigger.Trigger(&ticket, 1)
	require.NotNil(t, action)
	assert.Equal(t, []string{"first"}, action.Notify.UserIDs)
}

func TestTriggerNonContiguousLevels(t *testing.T) {
	changePriority := domain.EscalationRule{
		Level:    3,
		IsActive: true,
		Action: domain.EscalationAction{
			Kind:           domain.EscalationActionChangePriority,
			ChangePriority: &domain.ChangePriorityAction{NewPriority: domain.TicketPriorityCritical},
		},
	}
	trigger, ticket := newEscalationFixture(t, []domain.EscalationRule{notifyRule(1, "lead-1"), changePriority})

	assert.Nil(t, trigger.Trigger(&ticket, 2))

	action := trigger.Trigger(&ticket, 3)
	require.NotNil(t, action)
	assert.Equal(t, domain.EscalationActionChangePriority, action.Kind)
	require.NotNil(t, action.ChangePriority)
	assert.Equal(t, domain.TicketPriorityCritical, action.ChangePriority.NewPriority)
}

func TestRulesForTicketNoPolicyIsEmpty(t *testing.T) {
	trigger, _ := newEscalationFixture(t, []domain.EscalationRule{notifyRule(1, "lead-1")})
	untracked := ticketAt("t2", domain.TicketPriorityLow, time.Now())

	assert.Empty(t, trigger.RulesForTicket(&untracked))
	assert.Nil(t, trigger.Trigger(&untracked, 1))
}

func TestRulesForTicketReturnsPolicyRules(t *testing.T) {
	trigger, ticket := newEscalationFixture(t, []domain.EscalationRule{
		notifyRule(1, "lead-1"),
		notifyRule(2, "manager-1"),
	})

	rules := trigger.RulesForTicket(&ticket)
	require.Len(t, rules, 2)
	assert.Equal(t, 1, rules[0].Level)
	assert.Equal(t, 2, rules[1].Level)
}
