package sla

import (
	"sort"
	"time"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// ReportAggregator produces point-in-time compliance summaries. Plain
// group-and-average over the ticket set and the historical breach records.
type ReportAggregator struct {
	calculator *MetricsCalculator
	clock      Clock
}

// NewReportAggregator constructs the aggregator.
func NewReportAggregator(calculator *MetricsCalculator, clock Clock) *ReportAggregator {
	if clock == nil {
		clock = SystemClock()
	}
	return &ReportAggregator{calculator: calculator, clock: clock}
}

// Build summarizes compliance for tickets created within [from, to]. Zero
// bounds disable the corresponding cut-off. Untracked tickets (no matching
// policy) are excluded from every figure.
func (a *ReportAggregator) Build(tickets []domain.Ticket, breaches []*domain.SLABreach, from, to time.Time) *domain.ComplianceReport {
	report := &domain.ComplianceReport{
		GeneratedAt:  a.clock.Now(),
		PeriodStart:  from,
		PeriodEnd:    to,
		ByPriority:   make(map[domain.TicketPriority]domain.ComplianceBucket),
		ByCategory:   make(map[string]domain.ComplianceBucket),
		ByDepartment: make(map[string]domain.ComplianceBucket),
	}

	var responseSum, resolutionSum float64
	var responseCount, resolutionCount int
	daily := make(map[string]*domain.TrendPoint)

	for i := range tickets {
		ticket := &tickets[i]
		if !from.IsZero() && ticket.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && ticket.CreatedAt.After(to) {
			continue
		}
		metrics := a.calculator.Calculate(ticket)
		if metrics == nil {
			continue
		}

		breached := metrics.Status == domain.SLAStatusBreached
		report.TotalTracked++
		if breached {
			report.TotalBreached++
		}

		bumpBucket(report.ByPriority, ticket.Priority, breached)
		if ticket.Category != "" {
			bumpBucket(report.ByCategory, ticket.Category, breached)
		}
		if ticket.Department != "" {
			bumpBucket(report.ByDepartment, ticket.Department, breached)
		}

		if metrics.ResponseActual != nil {
			responseSum += *metrics.ResponseActual
			responseCount++
		}
		if metrics.ResolutionActual != nil {
			resolutionSum += *metrics.ResolutionActual
			resolutionCount++
		}

		// Trend days are UTC calendar days. Policies can carry different
		// timezones, so the trend needs one fixed bucketing zone; UTC keeps
		// the series stable across mixed-zone policy sets.
		day := ticket.CreatedAt.UTC().Truncate(24 * time.Hour)
		key := day.Format("2006-01-02")
		point, ok := daily[key]
		if !ok {
			point = &domain.TrendPoint{Date: day}
			daily[key] = point
		}
		if breached {
			point.Breached++
		} else {
			point.Compliant++
		}
	}

	if report.TotalTracked > 0 {
		report.ComplianceRate = rate(report.TotalTracked-report.TotalBreached, report.TotalTracked)
	}
	if responseCount > 0 {
		report.AvgResponseHours = responseSum / float64(responseCount)
	}
	if resolutionCount > 0 {
		report.AvgResolutionHours = resolutionSum / float64(resolutionCount)
	}
	finalizeBuckets(report.ByPriority)
	finalizeBuckets(report.ByCategory)
	finalizeBuckets(report.ByDepartment)

	for _, point := range daily {
		point.ComplianceRate = rate(point.Compliant, point.Compliant+point.Breached)
		report.Trend = append(report.Trend, *point)
	}
	sort.Slice(report.Trend, func(i, j int) bool {
		return report.Trend[i].Date.Before(report.Trend[j].Date)
	})

	for _, breach := range breaches {
		if breach.IsResolved {
			report.ResolvedBreaches++
		} else {
			report.OpenBreaches++
		}
	}

	return report
}

func bumpBucket[K comparable](buckets map[K]domain.ComplianceBucket, key K, breached bool) {
	bucket := buckets[key]
	bucket.Total++
	if breached {
		bucket.Breached++
	} else {
		bucket.Compliant++
	}
	buckets[key] = bucket
}

func finalizeBuckets[K comparable](buckets map[K]domain.ComplianceBucket) {
	for key, bucket := range buckets {
		bucket.ComplianceRate = rate(bucket.Compliant, bucket.Total)
		buckets[key] = bucket
	}
}

func rate(compliant, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(compliant) / float64(total) * 100
}
