package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-engine/internal/config"
	"github.com/spec-kit/sla-engine/internal/events"
	"github.com/spec-kit/sla-engine/internal/observability"
	"github.com/spec-kit/sla-engine/internal/persistence"
	"github.com/spec-kit/sla-engine/internal/sla"
)

// NotificationService turns SLA events into outbound notifications. It is
// the external collaborator described by the engine's contract: the engine
// decides that a notification is warranted, this service dispatches it.
type NotificationService struct {
	dispatcher events.Dispatcher
	tracker    *sla.BreachTracker
	redis      *persistence.Redis
	metrics    *observability.Metrics
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, tracker *sla.BreachTracker, redis *persistence.Redis, metrics *observability.Metrics, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		tracker:    tracker,
		redis:      redis,
		metrics:    metrics,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to SLA events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventBreachDetected, n.handleBreachDetected)
	n.dispatcher.Subscribe(events.EventBreachResolved, n.handleBreachResolved)
	n.dispatcher.Subscribe(events.EventEscalationTriggered, n.handleEscalationTriggered)
}

func (n *NotificationService) handleBreachDetected(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.BreachDetectedPayload)
	if !ok {
		return nil
	}
	if n.suppressed(ctx, fmt.Sprintf("sla:notify:breach:%s", payload.BreachID)) {
		n.logger.Debug("breach notification suppressed", zap.String("breach_id", payload.BreachID))
		return nil
	}

	n.logger.Info("BreachDetected",
		zap.String("ticket_id", event.TicketID),
		zap.String("breach_id", payload.BreachID),
		zap.String("breach_type", string(payload.BreachType)),
		zap.Float64("overrun_minutes", payload.DurationMinutes),
	)

	notificationID := uuid.NewString()
	n.sendEmailNotificationStub(ctx, event, notificationID)
	n.sendWebhookNotificationStub(ctx, event, notificationID)
	n.tracker.AppendNotification(payload.BreachID, notificationID)
	return nil
}

func (n *NotificationService) handleBreachResolved(ctx context.Context, event events.Event) error {
	n.logger.Info("BreachResolved", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event, uuid.NewString())
	return nil
}

func (n *NotificationService) handleEscalationTriggered(ctx context.Context, event events.Event) error {
	n.logger.Info("EscalationTriggered", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event, uuid.NewString())
	n.sendWebhookNotificationStub(ctx, event, uuid.NewString())
	return nil
}

// suppressed reports whether a notification for the key was already sent
// within the TTL window. With no redis configured nothing is suppressed.
func (n *NotificationService) suppressed(ctx context.Context, key string) bool {
	if n.redis == nil || n.redis.Client == nil {
		return false
	}
	set, err := n.redis.Client.SetNX(ctx, key, "1", n.cfg.SuppressTTL()).Result()
	if err != nil {
		n.logger.Warn("notification suppression check failed", zap.Error(err))
		return false
	}
	return !set
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event, notificationID string) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.metrics.RecordNotification("email")
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)),
		zap.String("notification_id", notificationID))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event, notificationID string) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.metrics.RecordNotification("webhook")
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)),
		zap.String("notification_id", notificationID))
}
