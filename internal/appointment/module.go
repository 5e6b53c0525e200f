// Package appointment provides the appointment booking bounded context
// module: session management, the date/time pairing rule, quick-pick
// shortcuts, persistence into the appointments collection, and reminder
// scheduling.
package appointment

import (
	"context"
	"time"

	"portfolio_backend/internal/appointment/handler"
	"portfolio_backend/internal/appointment/service"
	"portfolio_backend/internal/events"
	apphttp "portfolio_backend/internal/http"
	"portfolio_backend/internal/scheduler"
	"portfolio_backend/internal/signals"
	"portfolio_backend/internal/store"
	"portfolio_backend/platform/logger"
	"portfolio_backend/platform/validator"
)

// Module is the appointment bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the appointment module with all its
// dependencies. reminders may be nil when no queue is configured.
func NewModule(recordStore store.RecordStore, signalBus *signals.Bus, bus events.Bus, reminders scheduler.ReminderScheduler, leadTime time.Duration, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(recordStore, signalBus, bus, reminders, leadTime, val, log)
	h := handler.New(svc)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "appointment"
}

// Start launches the session janitor.
func (m *Module) Start(ctx context.Context) {
	m.service.StartJanitor(ctx)
}

// RegisterRoutes mounts the appointment form routes on the rate-limited group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Forms.Group("/appointment")
	group.POST("", m.handler.Open)
	group.GET("/quick-picks", m.handler.QuickPicks)
	group.GET("/:id", m.handler.Get)
	group.PUT("/:id/fields", m.handler.SetFields)
	group.POST("/:id/submit", m.handler.Submit)
	group.DELETE("/:id", m.handler.Close)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
