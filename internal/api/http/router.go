package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-engine/internal/api/http/handlers"
	"github.com/spec-kit/sla-engine/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Policies       *handlers.PoliciesHandler
	SLA            *handlers.SLAHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Read endpoints are open; everything that
// mutates policy or breach state sits behind the admin token.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	app.Post("/auth/login", cfg.Auth.Login)

	api := app.Group("/api/v1")

	api.Get("/sla/policies", cfg.Policies.ListPolicies)
	api.Get("/sla/policies/:id", cfg.Policies.GetPolicy)
	api.Get("/sla/breaches", cfg.SLA.ListBreaches)
	api.Get("/sla/reports/compliance", cfg.SLA.ComplianceReport)
	api.Get("/tickets/:id/sla", cfg.SLA.TicketMetrics)
	api.Get("/tickets/:id/escalations", cfg.SLA.EscalationRules)

	protected := api.Group("", cfg.AuthMiddleware.Handle)
	protected.Post("/sla/policies", cfg.Policies.CreatePolicy)
	protected.Patch("/sla/policies/:id", cfg.Policies.UpdatePolicy)
	protected.Delete("/sla/policies/:id", cfg.Policies.DeletePolicy)
	protected.Post("/sla/scan", cfg.SLA.RunScan)
	protected.Post("/sla/breaches/:id/resolve", cfg.SLA.ResolveBreach)
	protected.Post("/tickets/:id/escalations/:level", cfg.SLA.DecideEscalation)
}
