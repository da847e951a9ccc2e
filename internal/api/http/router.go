package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/grievance-service/internal/api/http/handlers"
	"github.com/spec-kit/grievance-service/internal/auth"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Issues         *handlers.IssuesHandler
	Analytics      *handlers.AnalyticsHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	authn := cfg.AuthMiddleware.Handle
	staff := auth.RequireStaff()
	admin := auth.RequireRole(domain.UserRoleAdmin)

	users := app.Group("/users", authn)
	users.Get("/me", cfg.Users.Me)
	users.Post("/", admin, cfg.Users.Create)
	users.Get("/:id", admin, cfg.Users.Get)
	users.Patch("/:id", admin, cfg.Users.SetActive)

	issues := app.Group("/issues", authn)
	issues.Post("/", cfg.Issues.Create)
	issues.Get("/", cfg.Issues.List)
	issues.Get("/types", cfg.Issues.Types)
	issues.Get("/:id", cfg.Issues.Get)
	issues.Patch("/:id/status", cfg.Issues.UpdateStatus)
	issues.Post("/:id/reopen", cfg.Issues.Reopen)
	issues.Put("/:id/assignee", staff, cfg.Issues.Assign)
	issues.Put("/:id/type", staff, cfg.Issues.MapType)
	issues.Post("/:id/comments", cfg.Issues.AddComment)
	issues.Get("/:id/comments", cfg.Issues.ListComments)
	issues.Get("/:id/audit", cfg.Issues.Audit)
	issues.Get("/:id/sla", cfg.Issues.SLA)

	app.Get("/analytics", authn, staff, cfg.Analytics.Summary)
}
