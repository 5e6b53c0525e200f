// Package http provides HTTP server infrastructure including module registration.
package http

import (
	"context"

	"portfolio_backend/platform/config"
	"portfolio_backend/platform/httpkit"
	"portfolio_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// HealthChecker exposes minimal functionality for readiness checks.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App holds the fully initialized application dependencies.
// This is populated by main.go (the composition root) and passed to the router.
type App struct {
	// Config holds the HTTP server configuration.
	Config config.HTTPConfig
	// Logger is the structured logger.
	Logger *logger.Logger
	// Health is used for readiness/health checks (nil when running on the memory store).
	Health HealthChecker
	// AdminMiddleware guards the /api/v1/admin group.
	AdminMiddleware gin.HandlerFunc
	// FormRateLimiter throttles the public form endpoints.
	FormRateLimiter *httpkit.FormRateLimiter
	// Modules contains all HTTP-facing domain modules.
	Modules []Module
}
