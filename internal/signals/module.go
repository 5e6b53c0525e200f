package signals

import (
	"io"

	apphttp "portfolio_backend/internal/http"
	"portfolio_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Module exposes the signal bus state over HTTP so clients can render the
// global loader and alert banner.
type Module struct {
	bus *Bus
}

// NewModule wraps the bus for HTTP exposure.
func NewModule(bus *Bus) *Module {
	return &Module{bus: bus}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "signals"
}

// Bus returns the underlying signal bus for injection into form modules.
func (m *Module) Bus() *Bus {
	return m.bus
}

// RegisterRoutes mounts the UI state endpoints.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/ui/state", m.handleState)
	ctx.V1.GET("/ui/stream", m.handleStream)
}

// handleState returns the current loader/alert snapshot.
// GET /api/v1/ui/state
func (m *Module) handleState(c *gin.Context) {
	httpkit.OK(c, m.bus.Snapshot())
}

// handleStream pushes state snapshots over Server-Sent Events.
// GET /api/v1/ui/stream
func (m *Module) handleStream(c *gin.Context) {
	updates, cancel := m.bus.Subscribe()
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	// Initial snapshot so late subscribers render current state immediately.
	c.SSEvent("state", m.bus.Snapshot())
	c.Writer.Flush()

	clientGone := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case state, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent("state", state)
			return true
		case <-clientGone:
			return false
		}
	})
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
