package http

import (
	stdhttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/resume-service/internal/api/http/handlers"
	"github.com/spec-kit/resume-service/internal/auth"
	"github.com/spec-kit/resume-service/internal/observability"
	"github.com/spec-kit/resume-service/internal/ratelimit"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Auth     *handlers.AuthHandler
	Users    *handlers.UsersHandler
	Resumes  *handlers.ResumesHandler
	Identity *auth.IdentityMiddleware
	Limiter  *ratelimit.KeyedLimiter
	Metrics  *observability.Metrics
	// MetricsHandler serves /metrics when set.
	MetricsHandler stdhttp.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Use(cfg.Identity.Handle)

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.MetricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.MetricsHandler))
	}

	limited := func(c *fiber.Ctx) error { return c.Next() }
	if cfg.Limiter != nil {
		limited = cfg.Limiter.Middleware(cfg.Metrics)
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/signup", cfg.Auth.Signup)
	authGroup.Post("/login", limited, cfg.Auth.Login)
	authGroup.Post("/refresh", cfg.Auth.Refresh)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Get("/check-email", cfg.Auth.CheckEmail)
	authGroup.Get("/check-phone", cfg.Auth.CheckPhone)
	authGroup.Post("/password-reset/request", limited, cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password-reset/verify", cfg.Auth.VerifyPasswordReset)
	authGroup.Post("/password-reset/confirm", cfg.Auth.ConfirmPasswordReset)

	api := app.Group("/api", auth.RequireAuthenticated())
	api.Get("/users/me", cfg.Users.Me)
	api.Delete("/users/me", cfg.Users.Withdraw)
	api.Get("/resumes", cfg.Resumes.List)
	api.Post("/resumes", cfg.Resumes.Create)
	api.Get("/resumes/:id", cfg.Resumes.Get)
	api.Put("/resumes/:id", cfg.Resumes.Update)
	api.Delete("/resumes/:id", cfg.Resumes.Delete)
}
