package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/medops-hub/workorder-service/internal/api/http/handlers"
	"github.com/medops-hub/workorder-service/internal/auth"
	"github.com/medops-hub/workorder-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health           *handlers.HealthHandler
	WorkOrders       *handlers.WorkOrdersHandler
	Teams            *handlers.TeamsHandler
	System           *handlers.SystemHandler
	AuthMiddleware   *auth.AuthMiddleware
	SchedulerKeyHash string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.System.Metrics)

	app.Get("/work-orders/statuses", handlers.Statuses)

	workOrders := app.Group("/work-orders", cfg.AuthMiddleware.Handle, auth.RequireActor())
	workOrders.Post("/", cfg.WorkOrders.Report)
	workOrders.Get("/", cfg.WorkOrders.List)
	workOrders.Get("/:id", cfg.WorkOrders.Get)
	workOrders.Get("/:id/history", cfg.WorkOrders.History)
	workOrders.Post("/:id/transitions", cfg.WorkOrders.Transition)
	workOrders.Post("/:id/reassign", cfg.WorkOrders.Reassign)

	teams := app.Group("/teams", cfg.AuthMiddleware.Handle, auth.RequireActor())
	teams.Get("/", cfg.Teams.List)
	teams.Get("/:id", cfg.Teams.Get)
	teams.Post("/", auth.RequireRole(domain.RoleMaintenanceManager, domain.RoleAdmin), cfg.Teams.Create)
	teams.Patch("/:id", auth.RequireRole(domain.RoleMaintenanceManager, domain.RoleAdmin), cfg.Teams.Update)

	internal := app.Group("/internal", auth.RequireSchedulerKey(cfg.SchedulerKeyHash))
	internal.Post("/auto-close/sweep", cfg.System.Sweep)
}
