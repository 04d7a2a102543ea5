package dto

import "time"

// BusinessHoursPayload mirrors the policy's business calendar on the wire.
type BusinessHoursPayload struct {
	Enabled     bool     `json:"enabled"`
	Timezone    string   `json:"timezone"`
	WorkingDays []int    `json:"working_days"`
	StartTime   string   `json:"start_time"`
	EndTime     string   `json:"end_time"`
	Holidays    []string `json:"holidays"`
}

// EscalationActionPayload is the wire form of the action tagged union. Only
// the fields matching Kind are expected to be set.
type EscalationActionPayload struct {
	Kind        string   `json:"kind"`
	UserIDs     []string `json:"user_ids,omitempty"`
	GroupIDs    []string `json:"group_ids,omitempty"`
	AssigneeID  *string  `json:"assignee_id,omitempty"`
	GroupID     *string  `json:"group_id,omitempty"`
	NewPriority *string  `json:"new_priority,omitempty"`
	NewStatus   *string  `json:"new_status,omitempty"`
}

// EscalationRulePayload payload.
type EscalationRulePayload struct {
	ID                  string                  `json:"id,omitempty"`
	Level               int                     `json:"level"`
	TriggerAfterMinutes int                     `json:"trigger_after_minutes"`
	IsActive            bool                    `json:"is_active"`
	Action              EscalationActionPayload `json:"action"`
}

// CreatePolicyRequest payload.
type CreatePolicyRequest struct {
	Name              string                  `json:"name"`
	Description       string                  `json:"description"`
	Priority          string                  `json:"priority"`
	Category          string                  `json:"category"`
	Department        string                  `json:"department"`
	ResponseMinutes   int                     `json:"response_minutes"`
	ResolutionMinutes int                     `json:"resolution_minutes"`
	BusinessHours     BusinessHoursPayload    `json:"business_hours"`
	EscalationRules   []EscalationRulePayload `json:"escalation_rules"`
	IsActive          *bool                   `json:"is_active"`
}

// UpdatePolicyRequest carries a partial policy update.
type UpdatePolicyRequest struct {
	Name              *string                  `json:"name"`
	Description       *string                  `json:"description"`
	Priority          *string                  `json:"priority"`
	Category          *string                  `json:"category"`
	Department        *string                  `json:"department"`
	ResponseMinutes   *int                     `json:"response_minutes"`
	ResolutionMinutes *int                     `json:"resolution_minutes"`
	BusinessHours     *BusinessHoursPayload    `json:"business_hours"`
	EscalationRules   *[]EscalationRulePayload `json:"escalation_rules"`
	IsActive          *bool                    `json:"is_active"`
}

// PolicyResponse response.
type PolicyResponse struct {
	ID                string                  `json:"id"`
	Name              string                  `json:"name"`
	Description       string                  `json:"description,omitempty"`
	Priority          string                  `json:"priority"`
	Category          string                  `json:"category,omitempty"`
	Department        string                  `json:"department,omitempty"`
	ResponseMinutes   int                     `json:"response_minutes"`
	ResolutionMinutes int                     `json:"resolution_minutes"`
	BusinessHours     BusinessHoursPayload    `json:"business_hours"`
	EscalationRules   []EscalationRulePayload `json:"escalation_rules"`
	IsActive          bool                    `json:"is_active"`
	CreatedAt         time.Time               `json:"created_at"`
	UpdatedAt         time.Time               `json:"updated_at"`
}
