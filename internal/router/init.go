package router

import (
	"time"

	"github.com/oksasatya/blogilista/internal/container"
	handlers "github.com/oksasatya/blogilista/internal/interface/http"
	"github.com/oksasatya/blogilista/internal/interface/middleware"
	"github.com/oksasatya/blogilista/internal/router/modules"
)

// writeLimiter returns the limiter shared by the public write routes, or nil when disabled.
func writeLimiter(c *container.Container) *middleware.RateLimiter {
	cfg := c.Config
	if !cfg.RateLimitEnabled || c.Redis == nil {
		return nil
	}
	l := &middleware.RateLimiter{
		Redis:  c.Redis,
		Max:    cfg.RateLimitWritesPerMin,
		Window: time.Minute,
		Key:    middleware.KeyByIPAndRoute(cfg.AppName),
		Logger: c.Logger,
	}
	if cfg.RateLimitBypassPrivate {
		l.Allow = middleware.AllowPrivateIP()
	}
	return l
}

// InitModules builds the feature modules from the container and adds them to the registry.
// Call once during startup, before RegisterAll.
func InitModules(r *Registry, c *container.Container) {
	limiter := writeLimiter(c)

	r.Add(modules.NewUserModule(
		handlers.NewUserHandler(c.Users),
		handlers.NewLoginHandler(c.Users),
		limiter,
	))
	r.Add(modules.NewBlogModule(handlers.NewBlogHandler(c.Blogs), c.JWT, limiter))

	if c.Config.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
