package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-engine/internal/api/dto"
	"github.com/spec-kit/sla-engine/internal/domain"
	"github.com/spec-kit/sla-engine/internal/service"
	"github.com/spec-kit/sla-engine/internal/sla"
	apperrors "github.com/spec-kit/sla-engine/pkg/util"
)

// PoliciesHandler manages SLA policy administration endpoints.
type PoliciesHandler struct {
	service *service.SLAService
}

// NewPoliciesHandler constructs handler.
func NewPoliciesHandler(slaService *service.SLAService) *PoliciesHandler {
	return &PoliciesHandler{service: slaService}
}

// CreatePolicy POST /api/v1/sla/policies.
func (h *PoliciesHandler) CreatePolicy(c *fiber.Ctx) error {
	var req dto.CreatePolicyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Name) == "" || req.Priority == "" {
		return apperrors.NewValidationError("name and priority required", nil)
	}
	if req.ResponseMinutes <= 0 || req.ResolutionMinutes <= 0 {
		return apperrors.NewValidationError("response_minutes and resolution_minutes must be positive", nil)
	}

	rules, err := rulesFromPayload(req.EscalationRules)
	if err != nil {
		return err
	}
	input := sla.PolicyInput{
		Name:              strings.TrimSpace(req.Name),
		Description:       req.Description,
		Priority:          domain.TicketPriority(req.Priority),
		Category:          req.Category,
		Department:        req.Department,
		ResponseMinutes:   req.ResponseMinutes,
		ResolutionMinutes: req.ResolutionMinutes,
		BusinessHours:     businessHoursFromPayload(req.BusinessHours),
		EscalationRules:   rules,
		IsActive:          true,
	}
	if req.IsActive != nil {
		input.IsActive = *req.IsActive
	}

	policy, err := h.service.CreatePolicy(c.Context(), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": policyResponse(policy)})
}

// ListPolicies GET /api/v1/sla/policies.
func (h *PoliciesHandler) ListPolicies(c *fiber.Ctx) error {
	policies := h.service.ListPolicies()
	items := make([]dto.PolicyResponse, 0, len(policies))
	for _, policy := range policies {
		items = append(items, policyResponse(policy))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetPolicy GET /api/v1/sla/policies/:id.
func (h *PoliciesHandler) GetPolicy(c *fiber.Ctx) error {
	policy, err := h.service.GetPolicy(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": policyResponse(policy)})
}

// UpdatePolicy PATCH /api/v1/sla/policies/:id.
func (h *PoliciesHandler) UpdatePolicy(c *fiber.Ctx) error {
	var req dto.UpdatePolicyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	update := sla.PolicyUpdate{
		Name:              req.Name,
		Description:       req.Description,
		Category:          req.Category,
		Department:        req.Department,
		ResponseMinutes:   req.ResponseMinutes,
		ResolutionMinutes: req.ResolutionMinutes,
		IsActive:          req.IsActive,
	}
	if req.Priority != nil {
		priority := domain.TicketPriority(*req.Priority)
		update.Priority = &priority
	}
	if req.BusinessHours != nil {
		hours := businessHoursFromPayload(*req.BusinessHours)
		update.BusinessHours = &hours
	}
	if req.EscalationRules != nil {
		rules, err := rulesFromPayload(*req.EscalationRules)
		if err != nil {
			return err
		}
		update.EscalationRules = &rules
	}

	policy, err := h.service.UpdatePolicy(c.Context(), c.Params("id"), update)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": policyResponse(policy)})
}

// DeletePolicy DELETE /api/v1/sla/policies/:id.
func (h *PoliciesHandler) DeletePolicy(c *fiber.Ctx) error {
	if err := h.service.DeletePolicy(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func businessHoursFromPayload(payload dto.BusinessHoursPayload) domain.BusinessHoursConfig {
	days := make([]time.Weekday, 0, len(payload.WorkingDays))
	for _, day := range payload.WorkingDays {
		days = append(days, time.Weekday(day))
	}
	return domain.BusinessHoursConfig{
		Enabled:     payload.Enabled,
		Timezone:    payload.Timezone,
		WorkingDays: days,
		StartTime:   payload.StartTime,
		EndTime:     payload.EndTime,
		Holidays:    payload.Holidays,
	}
}

func rulesFromPayload(payloads []dto.EscalationRulePayload) ([]domain.EscalationRule, error) {
	rules := make([]domain.EscalationRule, 0, len(payloads))
	for _, payload := range payloads {
		if payload.Level <= 0 {
			return nil, apperrors.NewValidationError("escalation level must be positive", nil)
		}
		action, err := actionFromPayload(payload.Action)
		if err != nil {
			return nil, err
		}
		rules = append(rules, domain.EscalationRule{
			ID:                  payload.ID,
			Level:               payload.Level,
			TriggerAfterMinutes: payload.TriggerAfterMinutes,
			Action:              action,
			IsActive:            payload.IsActive,
		})
	}
	return rules, nil
}

func actionFromPayload(payload dto.EscalationActionPayload) (domain.EscalationAction, error) {
	kind := domain.EscalationActionKind(payload.Kind)
	switch kind {
	case domain.EscalationActionNotify:
		if len(payload.UserIDs) == 0 && len(payload.GroupIDs) == 0 {
			return domain.EscalationAction{}, apperrors.NewValidationError("notify action requires user_ids or group_ids", nil)
		}
		return domain.EscalationAction{
			Kind:   kind,
			Notify: &domain.NotifyAction{UserIDs: payload.UserIDs, GroupIDs: payload.GroupIDs},
		}, nil
	case domain.EscalationActionReassign:
		if payload.AssigneeID == nil && payload.GroupID == nil {
			return domain.EscalationAction{}, apperrors.NewValidationError("reassign action requires assignee_id or group_id", nil)
		}
		return domain.EscalationAction{
			Kind:     kind,
			Reassign: &domain.ReassignAction{AssigneeID: payload.AssigneeID, GroupID: payload.GroupID},
		}, nil
	case domain.EscalationActionChangePriority:
		if payload.NewPriority == nil {
			return domain.EscalationAction{}, apperrors.NewValidationError("change_priority action requires new_priority", nil)
		}
		return domain.EscalationAction{
			Kind:           kind,
			ChangePriority: &domain.ChangePriorityAction{NewPriority: domain.TicketPriority(*payload.NewPriority)},
		}, nil
	case domain.EscalationActionChangeStatus:
		if payload.NewStatus == nil {
			return domain.EscalationAction{}, apperrors.NewValidationError("change_status action requires new_status", nil)
		}
		return domain.EscalationAction{
			Kind:         kind,
			ChangeStatus: &domain.ChangeStatusAction{NewStatus: domain.TicketStatus(*payload.NewStatus)},
		}, nil
	default:
		return domain.EscalationAction{}, apperrors.NewValidationError(fmt.Sprintf("unknown action kind %q", payload.Kind), nil)
	}
}

func actionPayload(action domain.EscalationAction) dto.EscalationActionPayload {
	payload := dto.EscalationActionPayload{Kind: string(action.Kind)}
	switch {
	case action.Notify != nil:
		payload.UserIDs = action.Notify.UserIDs
		payload.GroupIDs = action.Notify.GroupIDs
	case action.Reassign != nil:
		payload.AssigneeID = action.Reassign.AssigneeID
		payload.GroupID = action.Reassign.GroupID
	case action.ChangePriority != nil:
		priority := string(action.ChangePriority.NewPriority)
		payload.NewPriority = &priority
	case action.ChangeStatus != nil:
		status := string(action.ChangeStatus.NewStatus)
		payload.NewStatus = &status
	}
	return payload
}

func policyResponse(policy *domain.SLAPolicy) dto.PolicyResponse {
	days := make([]int, 0, len(policy.BusinessHours.WorkingDays))
	for _, day := range policy.BusinessHours.WorkingDays {
		days = append(days, int(day))
	}
	rules := make([]dto.EscalationRulePayload, 0, len(policy.EscalationRules))
	for _, rule := range policy.EscalationRules {
		rules = append(rules, dto.EscalationRulePayload{
			ID:                  rule.ID,
			Level:               rule.Level,
			TriggerAfterMinutes: rule.TriggerAfterMinutes,
			IsActive:            rule.IsActive,
			Action:              actionPayload(rule.Action),
		})
	}
	return dto.PolicyResponse{
		ID:                policy.ID,
		Name:              policy.Name,
		Description:       policy.Description,
		Priority:          string(policy.Priority),
		Category:          policy.Category,
		Department:        policy.Department,
		ResponseMinutes:   policy.ResponseMinutes,
		ResolutionMinutes: policy.ResolutionMinutes,
		BusinessHours: dto.BusinessHoursPayload{
			Enabled:     policy.BusinessHours.Enabled,
			Timezone:    policy.BusinessHours.Timezone,
			WorkingDays: days,
			StartTime:   policy.BusinessHours.StartTime,
			EndTime:     policy.BusinessHours.EndTime,
			Holidays:    policy.BusinessHours.Holidays,
		},
		EscalationRules: rules,
		IsActive:        policy.IsActive,
		CreatedAt:       policy.CreatedAt,
		UpdatedAt:       policy.UpdatedAt,
	}
}
