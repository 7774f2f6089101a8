package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/popx/account-portal/internal/api/http/handlers"
	"github.com/popx/account-portal/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Pages          *handlers.PagesHandler
	Session        *handlers.SessionHandler
	Client         *auth.ClientMiddleware
	LoginRateLimit fiber.Handler
}

// RegisterRoutes wires HTTP routes. Health probes run without a client cookie.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	limit := cfg.LoginRateLimit
	if limit == nil {
		limit = func(c *fiber.Ctx) error { return c.Next() }
	}

	app.Use(cfg.Client.Handle)

	app.Get("/", cfg.Pages.Welcome)
	app.Get("/login", cfg.Pages.LoginPage)
	app.Post("/login", limit, cfg.Pages.Login)
	app.Get("/register", cfg.Pages.RegisterPage)
	app.Post("/register", cfg.Pages.Register)
	app.Post("/session/error/clear", cfg.Pages.ClearError)

	settings := app.Group("/settings", auth.RequireUser("/login"))
	settings.Get("", cfg.Pages.Settings)
	settings.Post("/logout", cfg.Pages.Logout)
	settings.Post("/picture", cfg.Pages.UploadPicture)

	api := app.Group("/api/session")
	api.Get("", cfg.Session.Get)
	api.Post("/login", limit, cfg.Session.Login)
	api.Post("/register", cfg.Session.Register)
	api.Delete("", cfg.Session.Logout)
	api.Delete("/error", cfg.Session.ClearError)
	api.Patch("/user", auth.RequireUserAPI(), cfg.Session.UpdateUser)
}
