package plans

import (
	"net/http"

	apphttp "portfolio_backend/internal/http"
	"portfolio_backend/internal/relay"
	"portfolio_backend/platform/httpkit"
	"portfolio_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// Module exposes the plan catalog and the Request Now selection endpoint.
type Module struct {
	catalog *Catalog
	relay   *relay.Cell
	log     *logger.Logger
}

// NewModule creates the plans module.
func NewModule(catalog *Catalog, relayCell *relay.Cell, log *logger.Logger) *Module {
	return &Module{catalog: catalog, relay: relayCell, log: log}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "plans"
}

// Catalog returns the plan catalog for injection into the order module.
func (m *Module) Catalog() *Catalog {
	return m.catalog
}

// RegisterRoutes mounts the plan routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/plans")
	group.GET("", m.handleList)
	group.GET("/:id", m.handleGet)
	group.POST("/:id/select", m.handleSelect)
	group.DELETE("/selection", m.handleResetSelection)
	group.GET("/selection", m.handleGetSelection)
}

// handleList returns all plans in catalog order.
// GET /api/v1/plans
func (m *Module) handleList(c *gin.Context) {
	httpkit.OK(c, gin.H{"plans": m.catalog.All()})
}

// handleGet returns a single plan.
// GET /api/v1/plans/:id
func (m *Module) handleGet(c *gin.Context) {
	id := c.Param("id")
	if !m.catalog.Exists(id) {
		httpkit.Error(c, http.StatusNotFound, "plan not found", nil)
		return
	}
	httpkit.OK(c, m.catalog.ByID(id))
}

// handleSelect is "Request Now" on a pricing card: it stores the plan name in
// the selection relay so the contact form can pre-fill from it. Scrolling to
// the contact section is the client's concern.
// POST /api/v1/plans/:id/select
func (m *Module) handleSelect(c *gin.Context) {
	id := c.Param("id")
	if !m.catalog.Exists(id) {
		httpkit.Error(c, http.StatusNotFound, "plan not found", nil)
		return
	}

	plan := m.catalog.ByID(id)
	m.relay.Set(plan.Name)
	m.log.Info("package selected", "plan", plan.ID)

	httpkit.OK(c, gin.H{"selected": plan.Name})
}

// handleResetSelection clears the relay slot.
// DELETE /api/v1/plans/selection
func (m *Module) handleResetSelection(c *gin.Context) {
	m.relay.Reset()
	httpkit.OK(c, gin.H{"selected": ""})
}

// handleGetSelection returns the current relay slot value.
// GET /api/v1/plans/selection
func (m *Module) handleGetSelection(c *gin.Context) {
	httpkit.OK(c, gin.H{"selected": m.relay.Get()})
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
