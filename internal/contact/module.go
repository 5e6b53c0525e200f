// Package contact provides the contact form bounded context module: session
// management, validation, persistence into the contactMessages collection,
// and the selection relay pre-fill.
package contact

import (
	"context"

	"portfolio_backend/internal/contact/handler"
	"portfolio_backend/internal/contact/service"
	"portfolio_backend/internal/events"
	apphttp "portfolio_backend/internal/http"
	"portfolio_backend/internal/relay"
	"portfolio_backend/internal/signals"
	"portfolio_backend/internal/store"
	"portfolio_backend/platform/logger"
	"portfolio_backend/platform/validator"
)

// Module is the contact form bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the contact module with all its dependencies.
func NewModule(recordStore store.RecordStore, signalBus *signals.Bus, relayCell *relay.Cell, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(recordStore, signalBus, relayCell, bus, val, log)
	h := handler.New(svc)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "contact"
}

// Start launches the session janitor.
func (m *Module) Start(ctx context.Context) {
	m.service.StartJanitor(ctx)
}

// RegisterRoutes mounts the contact form routes on the rate-limited group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Forms.Group("/contact")
	group.POST("", m.handler.Open)
	group.GET("/:id", m.handler.Get)
	group.PUT("/:id/fields", m.handler.SetFields)
	group.POST("/:id/submit", m.handler.Submit)
	group.DELETE("/:id", m.handler.Close)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
