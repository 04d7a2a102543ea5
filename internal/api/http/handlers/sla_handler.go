package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-engine/internal/api/dto"
	"github.com/spec-kit/sla-engine/internal/domain"
	"github.com/spec-kit/sla-engine/internal/service"
	apperrors "github.com/spec-kit/sla-engine/pkg/util"
)

// SLAHandler exposes per-ticket metrics, breach scans, breach records,
// escalation decisions and compliance reports.
type SLAHandler struct {
	service *service.SLAService
}

// NewSLAHandler constructs handler.
func NewSLAHandler(slaService *service.SLAService) *SLAHandler {
	return &SLAHandler{service: slaService}
}

// TicketMetrics GET /api/v1/tickets/:id/sla.
func (h *SLAHandler) TicketMetrics(c *fiber.Ctx) error {
	ticketID := c.Params("id")
	metrics, err := h.service.TicketMetrics(c.Context(), ticketID)
	if err != nil {
		return err
	}
	if metrics == nil {
		// Known ticket, no matching policy: SLA not tracked, not a fault.
		return c.JSON(fiber.Map{"data": dto.MetricsResponse{TicketID: ticketID, Tracked: false}})
	}
	return c.JSON(fiber.Map{"data": metricsResponse(metrics)})
}

// RunScan POST /api/v1/sla/scan.
func (h *SLAHandler) RunScan(c *fiber.Ctx) error {
	created, err := h.service.ScanOnce(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.BreachResponse, 0, len(created))
	for _, breach := range created {
		items = append(items, breachResponse(breach))
	}
	return c.JSON(fiber.Map{"data": dto.ScanResponse{NewBreaches: items, Count: len(items)}})
}

// ListBreaches GET /api/v1/sla/breaches.
func (h *SLAHandler) ListBreaches(c *fiber.Ctx) error {
	breaches := h.service.ListBreaches(c.Query("ticket_id"))
	items := make([]dto.BreachResponse, 0, len(breaches))
	for _, breach := range breaches {
		items = append(items, breachResponse(breach))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ResolveBreach POST /api/v1/sla/breaches/:id/resolve.
func (h *SLAHandler) ResolveBreach(c *fiber.Ctx) error {
	if err := h.service.ResolveBreach(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"resolved": true}})
}

// EscalationRules GET /api/v1/tickets/:id/escalations.
func (h *SLAHandler) EscalationRules(c *fiber.Ctx) error {
	rules, err := h.service.EscalationRules(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.EscalationRulePayload, 0, len(rules))
	for _, rule := range rules {
		items = append(items, dto.EscalationRulePayload{
			ID:                  rule.ID,
			Level:               rule.Level,
			TriggerAfterMinutes: rule.TriggerAfterMinutes,
			IsActive:            rule.IsActive,
			Action:              actionPayload(rule.Action),
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// DecideEscalation POST /api/v1/tickets/:id/escalations/:level.
func (h *SLAHandler) DecideEscalation(c *fiber.Ctx) error {
	level, err := strconv.Atoi(c.Params("level"))
	if err != nil || level <= 0 {
		return apperrors.NewValidationError("level must be a positive integer", nil)
	}
	ticketID := c.Params("id")
	action, err := h.service.DecideEscalation(c.Context(), ticketID, level)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.EscalationDecisionResponse{
		TicketID: ticketID,
		Level:    level,
		Action:   actionPayload(*action),
	}})
}

// ComplianceReport GET /api/v1/sla/reports/compliance.
func (h *SLAHandler) ComplianceReport(c *fiber.Ctx) error {
	from, err := parseTimeQuery(c.Query("from"))
	if err != nil {
		return apperrors.NewValidationError("invalid from timestamp", nil)
	}
	to, err := parseTimeQuery(c.Query("to"))
	if err != nil {
		return apperrors.NewValidationError("invalid to timestamp", nil)
	}

	report, err := h.service.ComplianceReport(c.Context(), from, to)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": reportResponse(report)})
}

func parseTimeQuery(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	return time.Parse("2006-01-02", value)
}

func metricsResponse(metrics *domain.SLAMetrics) dto.MetricsResponse {
	return dto.MetricsResponse{
		TicketID:           metrics.TicketID,
		Tracked:            true,
		PolicyID:           metrics.PolicyID,
		PolicyName:         metrics.PolicyName,
		ResponseTarget:     metrics.ResponseTarget,
		ResolutionTarget:   metrics.ResolutionTarget,
		ResponseActual:     metrics.ResponseActual,
		ResolutionActual:   metrics.ResolutionActual,
		ResponseBreached:   metrics.ResponseBreached,
		ResolutionBreached: metrics.ResolutionBreached,
		ElapsedHours:       metrics.ElapsedHours,
		RemainingHours:     metrics.RemainingHours,
		Status:             string(metrics.Status),
		EscalationLevel:    metrics.EscalationLevel,
	}
}

func breachResponse(breach *domain.SLABreach) dto.BreachResponse {
	return dto.BreachResponse{
		ID:              breach.ID,
		TicketID:        breach.TicketID,
		PolicyID:        breach.PolicyID,
		BreachType:      string(breach.BreachType),
		BreachTime:      breach.BreachTime,
		DurationMinutes: breach.DurationMinutes,
		EscalationLevel: breach.EscalationLevel,
		IsResolved:      breach.IsResolved,
		ResolvedAt:      breach.ResolvedAt,
		NotificationIDs: breach.NotificationIDs,
	}
}

func bucketResponse(bucket domain.ComplianceBucket) dto.ComplianceBucketResponse {
	return dto.ComplianceBucketResponse{
		Total:          bucket.Total,
		Compliant:      bucket.Compliant,
		Breached:       bucket.Breached,
		ComplianceRate: bucket.ComplianceRate,
	}
}

func reportResponse(report *domain.ComplianceReport) dto.ComplianceReportResponse {
	response := dto.ComplianceReportResponse{
		GeneratedAt:        report.GeneratedAt,
		TotalTracked:       report.TotalTracked,
		TotalBreached:      report.TotalBreached,
		ComplianceRate:     report.ComplianceRate,
		AvgResponseHours:   report.AvgResponseHours,
		AvgResolutionHours: report.AvgResolutionHours,
		ByPriority:         map[string]dto.ComplianceBucketResponse{},
		ByCategory:         map[string]dto.ComplianceBucketResponse{},
		ByDepartment:       map[string]dto.ComplianceBucketResponse{},
		Trend:              []dto.TrendPointResponse{},
		OpenBreaches:       report.OpenBreaches,
		ResolvedBreaches:   report.ResolvedBreaches,
	}
	if !report.PeriodStart.IsZero() {
		start := report.PeriodStart
		response.PeriodStart = &start
	}
	if !report.PeriodEnd.IsZero() {
		end := report.PeriodEnd
		response.PeriodEnd = &end
	}
	for priority, bucket := range report.ByPriority {
		response.ByPriority[string(priority)] = bucketResponse(bucket)
	}
	for category, bucket := range report.ByCategory {
		response.ByCategory[category] = bucketResponse(bucket)
	}
	for department, bucket := range report.ByDepartment {
		response.ByDepartment[department] = bucketResponse(bucket)
	}
	for _, point := range report.Trend {
		response.Trend = append(response.Trend, dto.TrendPointResponse{
			Date:           point.Date.Format("2006-01-02"),
			Compliant:      point.Compliant,
			Breached:       point.Breached,
			ComplianceRate: point.ComplianceRate,
		})
	}
	return response
}
