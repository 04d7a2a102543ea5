package domain

// SLAStatus is the tri-state health reading for a tracked ticket.
type SLAStatus string

const (
	SLAStatusOnTrack  SLAStatus = "ON_TRACK"
	SLAStatusAtRisk   SLAStatus = "AT_RISK"
	SLAStatusBreached SLAStatus = "BREACHED"
)

// SLAMetrics is the derived SLA reading for one ticket at one instant. It is
// recomputed on demand and never persisted; nothing should hold a stale copy
// as ground truth. Durations are fractional business hours.
type SLAMetrics struct {
	TicketID           string
	PolicyID           string
	PolicyName         string
	ResponseTarget     float64 // hours
	ResolutionTarget   float64 // hours
	ResponseActual     *float64
	ResolutionActual   *float64
	ResponseBreached   bool
	ResolutionBreached bool
	ElapsedHours       float64
	RemainingHours     float64 // clamped at zero
	Status             SLAStatus
	EscalationLevel    int // copied from the ticket, not computed
}
