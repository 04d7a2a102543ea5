package sla

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// PolicyInput carries the caller-supplied fields for a new policy. The
// registry assigns the id and timestamps.
type PolicyInput struct {
	Name              string
	Description       string
	Priority          domain.TicketPriority
	Category          string
	Department        string
	ResponseMinutes   int
	ResolutionMinutes int
	BusinessHours     domain.BusinessHoursConfig
	EscalationRules   []domain.EscalationRule
	IsActive          bool
}

// PolicyUpdate carries a partial update; nil fields are left unchanged.
type PolicyUpdate struct {
	Name              *string
	Description       *string
	Priority          *domain.TicketPriority
	Category          *string
	Department        *string
	ResponseMinutes   *int
	ResolutionMinutes *int
	BusinessHours     *domain.BusinessHoursConfig
	EscalationRules   *[]domain.EscalationRule
	IsActive          *bool
}

// PolicyRegistry owns the SLA policy collection. Lookup is deterministic:
// policies match in insertion order and the first active match wins.
type PolicyRegistry struct {
	mu       sync.RWMutex
	policies []*domain.SLAPolicy
	clock    Clock
}

// NewPolicyRegistry creates an empty registry using the given clock for
// created/updated timestamps.
func NewPolicyRegistry(clock Clock) *PolicyRegistry {
	if clock == nil {
		clock = SystemClock()
	}
	return &PolicyRegistry{clock: clock}
}

// Create validates the business-hours configuration, assigns an id and
// timestamps, and appends the policy.
func (r *PolicyRegistry) Create(input PolicyInput) (*domain.SLAPolicy, error) {
	if err := ValidateBusinessHours(input.BusinessHours); err != nil {
		return nil, err
	}
	now := r.clock.Now()
	policy := &domain.SLAPolicy{
		ID:                uuid.NewString(),
		Name:              input.Name,
		Description:       input.Description,
		Priority:          input.Priority,
		Category:          input.Category,
		Department:        input.Department,
		ResponseMinutes:   input.ResponseMinutes,
		ResolutionMinutes: input.ResolutionMinutes,
		BusinessHours:     input.BusinessHours,
		EscalationRules:   withRuleIDs(input.EscalationRules),
		IsActive:          input.IsActive,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.policies = append(r.policies, policy)
	return copyPolicy(policy), nil
}

// Update merges the partial fields into the stored policy, bumping
// UpdatedAt. The merged copy replaces the stored policy atomically, so
// concurrent readers observe either the old or the new policy, never a
// half-merged one. Returns nil when the id is unknown.
func (r *PolicyRegistry) Update(id string, update PolicyUpdate) (*domain.SLAPolicy, error) {
	if update.BusinessHours != nil {
		if err := ValidateBusinessHours(*update.BusinessHours); err != nil {
			return nil, err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.policies {
		if existing.ID != id {
			continue
		}
		merged := copyPolicy(existing)
		applyUpdate(merged, update)
		merged.UpdatedAt = r.clock.Now()
		r.policies[i] = merged
		return copyPolicy(merged), nil
	}
	return nil, nil
}

// Delete removes a policy by id. Returns false when the id is unknown.
func (r *PolicyRegistry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, policy := range r.policies {
		if policy.ID == id {
			r.policies = append(r.policies[:i], r.policies[i+1:]...)
			return true
		}
	}
	return false
}

// GetByID returns the policy with the given id, or nil.
func (r *PolicyRegistry) GetByID(id string) *domain.SLAPolicy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, policy := range r.policies {
		if policy.ID == id {
			return copyPolicy(policy)
		}
	}
	return nil
}

// ListAll returns all policies in insertion order.
func (r *PolicyRegistry) ListAll() []*domain.SLAPolicy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.SLAPolicy, 0, len(r.policies))
	for _, policy := range r.policies {
		out = append(out, copyPolicy(policy))
	}
	return out
}

// FindPolicyForTicket returns the first active policy matching the ticket's
// priority/category/department, or nil when the ticket is untracked.
func (r *PolicyRegistry) FindPolicyForTicket(ticket *domain.Ticket) *domain.SLAPolicy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, policy := range r.policies {
		if policy.Matches(ticket) {
			return copyPolicy(policy)
		}
	}
	return nil
}

func applyUpdate(policy *domain.SLAPolicy, update PolicyUpdate) {
	if update.Name != nil {
		policy.Name = *update.Name
	}
	if update.Description != nil {
		policy.Description = *update.Description
	}
	if update.Priority != nil {
		policy.Priority = *update.Priority
	}
	if update.Category != nil {
		policy.Category = *update.Category
	}
	if update.Department != nil {
		policy.Department = *update.Department
	}
	if update.ResponseMinutes != nil {
		policy.ResponseMinutes = *update.ResponseMinutes
	}
	if update.ResolutionMinutes != nil {
		policy.ResolutionMinutes = *update.ResolutionMinutes
	}
	if update.BusinessHours != nil {
		policy.BusinessHours = *update.BusinessHours
	}
	if update.EscalationRules != nil {
		policy.EscalationRules = withRuleIDs(*update.EscalationRules)
	}
	if update.IsActive != nil {
		policy.IsActive = *update.IsActive
	}
}

func withRuleIDs(rules []domain.EscalationRule) []domain.EscalationRule {
	out := copyRules(rules)
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = uuid.NewString()
		}
	}
	return out
}

func copyPolicy(policy *domain.SLAPolicy) *domain.SLAPolicy {
	clone := *policy
	clone.BusinessHours.WorkingDays = append([]time.Weekday(nil), policy.BusinessHours.WorkingDays...)
	clone.BusinessHours.Holidays = append([]string(nil), policy.BusinessHours.Holidays...)
	clone.EscalationRules = copyRules(policy.EscalationRules)
	return &clone
}

func copyRules(rules []domain.EscalationRule) []domain.EscalationRule {
	out := make([]domain.EscalationRule, len(rules))
	copy(out, rules)
	for i := range out {
		out[i].Action = copyAction(out[i].Action)
	}
	return out
}

// copyAction clones the tagged union's payload pointers so a returned rule
// never aliases registry state.
func copyAction(action domain.EscalationAction) domain.EscalationAction {
	if action.Notify != nil {
		notify := domain.NotifyAction{
			UserIDs:  append([]string(nil), action.Notify.UserIDs...),
			GroupIDs: append([]string(nil), action.Notify.GroupIDs...),
		}
		action.Notify = &notify
	}
	if action.Reassign != nil {
		reassign := *action.Reassign
		if reassign.AssigneeID != nil {
			assignee := *reassign.AssigneeID
			reassign.AssigneeID = &assignee
		}
		if reassign.GroupID != nil {
			group := *reassign.GroupID
			reassign.GroupID = &group
		}
		action.Reassign = &reassign
	}
	if action.ChangePriority != nil {
		changePriority := *action.ChangePriority
		action.ChangePriority = &changePriority
	}
	if action.ChangeStatus != nil {
		changeStatus := *action.ChangeStatus
		action.ChangeStatus = &changeStatus
	}
	return action
}
