package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/taskboard-service/internal/api/http/handlers"
	"github.com/spec-kit/taskboard-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tasks          *handlers.TasksHandler
	AuthMiddleware *auth.Middleware
	RateLimiter    fiber.Handler
}

// RegisterRoutes wires HTTP routes. The rate limiter sits in front of every
// auth route so a denied request never reaches the hasher or OTP check.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/api/auth")
	if cfg.RateLimiter != nil {
		authGroup.Use(cfg.RateLimiter)
	}
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Post("/verify-email", cfg.Auth.VerifyEmail)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)

	tasks := app.Group("/api/tasks", cfg.AuthMiddleware.Handle)
	tasks.Post("/", cfg.Tasks.CreateTask)
	tasks.Get("/", cfg.Tasks.ListTasks)
	tasks.Get("/:id", cfg.Tasks.GetTask)
	tasks.Patch("/:id", cfg.Tasks.UpdateTask)
	tasks.Delete("/:id", cfg.Tasks.DeleteTask)
}
