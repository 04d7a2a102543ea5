package domain

import "time"

// ComplianceBucket aggregates SLA outcomes for one grouping key.
type ComplianceBucket struct {
	Total          int
	Compliant      int
	Breached       int
	ComplianceRate float64 // percent
}

// TrendPoint is one day in the compliance trend series.
type TrendPoint struct {
	Date           time.Time
	Compliant      int
	Breached       int
	ComplianceRate float64
}

// ComplianceReport is a point-in-time SLA compliance summary over a ticket
// set and its historical breach records.
type ComplianceReport struct {
	GeneratedAt          time.Time
	PeriodStart          time.Time
	PeriodEnd            time.Time
	TotalTracked         int
	TotalBreached        int
	ComplianceRate       float64
	AvgResponseHours     float64
	AvgResolutionHours   float64
	ByPriority           map[TicketPriority]ComplianceBucket
	ByCategory           map[string]ComplianceBucket
	ByDepartment         map[string]ComplianceBucket
	Trend                []TrendPoint
	OpenBreaches         int
	ResolvedBreaches     int
}
