// Package order provides the order form bounded context module: plan-derived
// budget handling, validation, and persistence into the orders collection.
package order

import (
	"context"

	"portfolio_backend/internal/events"
	apphttp "portfolio_backend/internal/http"
	"portfolio_backend/internal/order/handler"
	"portfolio_backend/internal/order/service"
	"portfolio_backend/internal/plans"
	"portfolio_backend/internal/signals"
	"portfolio_backend/internal/store"
	"portfolio_backend/platform/logger"
	"portfolio_backend/platform/validator"
)

// Module is the order bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the order module with all its dependencies.
func NewModule(recordStore store.RecordStore, signalBus *signals.Bus, bus events.Bus, catalog *plans.Catalog, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(recordStore, signalBus, bus, catalog, val, log)
	h := handler.New(svc)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "order"
}

// Start launches the session janitor.
func (m *Module) Start(ctx context.Context) {
	m.service.StartJanitor(ctx)
}

// RegisterRoutes mounts the order form routes on the rate-limited group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Forms.Group("/order")
	group.POST("", m.handler.Open)
	group.GET("/:id", m.handler.Get)
	group.PUT("/:id/fields", m.handler.SetFields)
	group.PUT("/:id/plan", m.handler.ChangePlan)
	group.POST("/:id/submit", m.handler.Submit)
	group.DELETE("/:id", m.handler.Close)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
