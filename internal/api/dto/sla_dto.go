package dto

import "time"

// LoginRequest payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse response.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MetricsResponse is the SLA reading for one ticket. Tracked is false when
// no policy matched; the remaining fields are then omitted.
type MetricsResponse struct {
	TicketID           string   `json:"ticket_id"`
	Tracked            bool     `json:"tracked"`
	PolicyID           string   `json:"policy_id,omitempty"`
	PolicyName         string   `json:"policy_name,omitempty"`
	ResponseTarget     float64  `json:"response_target_hours,omitempty"`
	ResolutionTarget   float64  `json:"resolution_target_hours,omitempty"`
	ResponseActual     *float64 `json:"response_actual_hours,omitempty"`
	ResolutionActual   *float64 `json:"resolution_actual_hours,omitempty"`
	ResponseBreached   bool     `json:"response_breached"`
	ResolutionBreached bool     `json:"resolution_breached"`
	ElapsedHours       float64  `json:"elapsed_hours"`
	RemainingHours     float64  `json:"remaining_hours"`
	Status             string   `json:"status,omitempty"`
	EscalationLevel    int      `json:"escalation_level"`
}

// BreachResponse response.
type BreachResponse struct {
	ID              string     `json:"id"`
	TicketID        string     `json:"ticket_id"`
	PolicyID        string     `json:"policy_id"`
	BreachType      string     `json:"breach_type"`
	BreachTime      time.Time  `json:"breach_time"`
	DurationMinutes float64    `json:"duration_minutes"`
	EscalationLevel int        `json:"escalation_level"`
	IsResolved      bool       `json:"is_resolved"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
	NotificationIDs []string   `json:"notification_ids"`
}

// ScanResponse response.
type ScanResponse struct {
	NewBreaches []BreachResponse `json:"new_breaches"`
	Count       int              `json:"count"`
}

// EscalationDecisionResponse response.
type EscalationDecisionResponse struct {
	TicketID string                  `json:"ticket_id"`
	Level    int                     `json:"level"`
	Action   EscalationActionPayload `json:"action"`
}

// ComplianceBucketResponse response.
type ComplianceBucketResponse struct {
	Total          int     `json:"total"`
	Compliant      int     `json:"compliant"`
	Breached       int     `json:"breached"`
	ComplianceRate float64 `json:"compliance_rate"`
}

// TrendPointResponse response.
type TrendPointResponse struct {
	Date           string  `json:"date"`
	Compliant      int     `json:"compliant"`
	Breached       int     `json:"breached"`
	ComplianceRate float64 `json:"compliance_rate"`
}

// ComplianceReportResponse response.
type ComplianceReportResponse struct {
	GeneratedAt        time.Time                           `json:"generated_at"`
	PeriodStart        *time.Time                          `json:"period_start,omitempty"`
	PeriodEnd          *time.Time                          `json:"period_end,omitempty"`
	TotalTracked       int                                 `json:"total_tracked"`
	TotalBreached      int                                 `json:"total_breached"`
	ComplianceRate     float64                             `json:"compliance_rate"`
	AvgResponseHours   float64                             `json:"avg_response_hours"`
	AvgResolutionHours float64                             `json:"avg_resolution_hours"`
	ByPriority         map[string]ComplianceBucketResponse `json:"by_priority"`
	ByCategory         map[string]ComplianceBucketResponse `json:"by_category"`
	ByDepartment       map[string]ComplianceBucketResponse `json:"by_department"`
	Trend              []TrendPointResponse                `json:"trend"`
	OpenBreaches       int                                 `json:"open_breaches"`
	ResolvedBreaches   int                                 `json:"resolved_breaches"`
}
