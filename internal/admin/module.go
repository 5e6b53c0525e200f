// Package admin provides the admin bounded context module: the password gate
// and the message retrieval view over the contactMessages collection.
package admin

import (
	"github.com/gin-gonic/gin"

	"portfolio_backend/internal/admin/handler"
	"portfolio_backend/internal/admin/service"
	"portfolio_backend/internal/admin/session"
	apphttp "portfolio_backend/internal/http"
	"portfolio_backend/internal/signals"
	"portfolio_backend/internal/store"
	"portfolio_backend/platform/config"
	"portfolio_backend/platform/httpkit"
	"portfolio_backend/platform/logger"
)

// Module is the admin bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	gate    *httpkit.GateRateLimiter
}

// NewModule creates and initializes the admin module with all its dependencies.
func NewModule(cfg config.AdminConfig, sessions session.Store, recordStore store.RecordStore, signalBus *signals.Bus, gate *httpkit.GateRateLimiter, log *logger.Logger) *Module {
	svc := service.New(cfg, sessions, recordStore, signalBus, log)
	h := handler.New(svc)

	return &Module{
		handler: h,
		service: svc,
		gate:    gate,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "admin"
}

// Middleware returns the session-token check for the gated route group.
func (m *Module) Middleware() gin.HandlerFunc {
	return m.handler.Middleware()
}

// RegisterRoutes mounts the admin routes. Login sits outside the gated group
// behind the stricter gate rate limiter; everything else requires a token.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.POST("/admin/login", m.gate.RateLimit(), m.handler.Login)

	ctx.Admin.GET("/session", m.handler.Session)
	ctx.Admin.DELETE("/session", m.handler.Logout)
	ctx.Admin.GET("/messages", m.handler.Messages)
	ctx.Admin.DELETE("/messages/:id", m.handler.Delete)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
