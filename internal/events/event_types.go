package events

import (
	"time"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventBreachDetected      EventType = "sla_breach_detected"
	EventBreachResolved      EventType = "sla_breach_resolved"
	EventEscalationTriggered EventType = "sla_escalation_triggered"
	EventPolicyCreated       EventType = "sla_policy_created"
	EventPolicyUpdated       EventType = "sla_policy_updated"
	EventPolicyDeleted       EventType = "sla_policy_deleted"
)

// Event represents a domain event emitted by the SLA engine.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// BreachDetectedPayload payload.
type BreachDetectedPayload struct {
	BreachID        string            `json:"breach_id"`
	PolicyID        string            `json:"policy_id"`
	BreachType      domain.BreachType `json:"breach_type"`
	DurationMinutes float64           `json:"duration_minutes"`
	EscalationLevel int               `json:"escalation_level"`
}

// BreachResolvedPayload payload.
type BreachResolvedPayload struct {
	BreachID   string            `json:"breach_id"`
	BreachType domain.BreachType `json:"breach_type"`
}

// EscalationTriggeredPayload payload.
type EscalationTriggeredPayload struct {
	Level  int                         `json:"level"`
	Kind   domain.EscalationActionKind `json:"kind"`
	Action domain.EscalationAction     `json:"action"`
}

// PolicyChangedPayload payload for create/update/delete.
type PolicyChangedPayload struct {
	PolicyID string `json:"policy_id"`
	Name     string `json:"name,omitempty"`
}
