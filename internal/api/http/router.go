package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tracker-bot/internal/api/http/handlers"
	"github.com/spec-kit/tracker-bot/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Messages       *handlers.MessagesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	v1 := app.Group("/v1", cfg.AuthMiddleware.Handle)
	v1.Post("/messages", cfg.Messages.Post)
}
