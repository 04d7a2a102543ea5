package domain

import "time"

// BusinessHoursConfig defines the working calendar an SLA clock runs
// against. When Enabled is false every instant counts as business time.
type BusinessHoursConfig struct {
	Enabled     bool
	Timezone    string
	WorkingDays []time.Weekday
	StartTime   string // HH:MM, same-day window only
	EndTime     string // HH:MM, must be after StartTime
	Holidays    []string // YYYY-MM-DD in the configured timezone
}

// SLAPolicy maps a ticket's priority (and optional category/department)
// to response/resolution targets plus a business calendar and escalation
// rules. Escalation rules are owned by their policy and never shared.
type SLAPolicy struct {
	ID                string
	Name              string
	Description       string
	Priority          TicketPriority
	Category          string // empty matches any category
	Department        string // empty matches any department
	ResponseMinutes   int
	ResolutionMinutes int
	BusinessHours     BusinessHoursConfig
	EscalationRules   []EscalationRule
	IsActive          bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Matches reports whether the policy applies to the given ticket. Unset
// category/department act as wildcards.
func (p *SLAPolicy) Matches(ticket *Ticket) bool {
	if !p.IsActive || p.Priority != ticket.Priority {
		return false
	}
	if p.Category != "" && p.Category != ticket.Category {
		return false
	}
	if p.Department != "" && p.Department != ticket.Department {
		return false
	}
	return true
}

// RuleForLevel returns the first active rule with the exact level, if any.
// Duplicate levels are a data-quality issue; the first one wins.
func (p *SLAPolicy) RuleForLevel(level int) (EscalationRule, bool) {
	for _, rule := range p.EscalationRules {
		if rule.Level == level && rule.IsActive {
			return rule, true
		}
	}
	return EscalationRule{}, false
}

// EscalationActionKind enumerates what an escalation rule does.
type EscalationActionKind string

const (
	EscalationActionNotify         EscalationActionKind = "NOTIFY"
	EscalationActionReassign       EscalationActionKind = "REASSIGN"
	EscalationActionChangePriority EscalationActionKind = "CHANGE_PRIORITY"
	EscalationActionChangeStatus   EscalationActionKind = "CHANGE_STATUS"
)

// NotifyAction names who gets told about the escalation.
type NotifyAction struct {
	UserIDs  []string
	GroupIDs []string
}

// ReassignAction moves the ticket to a new assignee or group.
type ReassignAction struct {
	AssigneeID *string
	GroupID    *string
}

// ChangePriorityAction bumps the ticket priority.
type ChangePriorityAction struct {
	NewPriority TicketPriority
}

// ChangeStatusAction forces a status transition.
type ChangeStatusAction struct {
	NewStatus TicketStatus
}

// EscalationAction is a tagged union: exactly the payload matching Kind is
// non-nil. The engine only decides the action; executing it is the ticket
// mutation collaborator's job.
type EscalationAction struct {
	Kind           EscalationActionKind
	Notify         *NotifyAction
	Reassign       *ReassignAction
	ChangePriority *ChangePriorityAction
	ChangeStatus   *ChangeStatusAction
}

// EscalationRule belongs to exactly one policy. Levels within a policy need
// not be contiguous but are looked up by exact match.
type EscalationRule struct {
	ID                  string
	Level               int
	TriggerAfterMinutes int // minutes past breach before the rule fires
	Action              EscalationAction
	IsActive            bool
}
