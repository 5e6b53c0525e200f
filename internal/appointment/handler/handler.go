package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"portfolio_backend/internal/appointment/service"
	"portfolio_backend/internal/appointment/transport"
	"portfolio_backend/platform/httpkit"
)

// Handler handles HTTP requests for appointment form sessions.
type Handler struct {
	svc *service.Service
}

const (
	msgInvalidRequest = "invalid request"
	msgInvalidID      = "invalid session ID"
)

// New creates a new appointment form handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Open starts a new appointment form session.
// POST /api/v1/forms/appointment
func (h *Handler) Open(c *gin.Context) {
	httpkit.Created(c, h.svc.Open(c.Request.Context()))
}

// QuickPicks returns the date shortcuts and time slots.
// GET /api/v1/forms/appointment/quick-picks
func (h *Handler) QuickPicks(c *gin.Context) {
	httpkit.OK(c, h.svc.QuickPicks())
}

// Get returns the current session snapshot.
// GET /api/v1/forms/appointment/:id
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	result, err := h.svc.Session(id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// SetFields applies field edits to the session. Quick-pick values arrive
// through the same path as hand-typed ones.
// PUT /api/v1/forms/appointment/:id/fields
func (h *Handler) SetFields(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	var req transport.SetFieldsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.SetFields(id, req.Fields)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Submit runs the submit sequence.
// POST /api/v1/forms/appointment/:id/submit
func (h *Handler) Submit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	result, err := h.svc.Submit(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Close ends the session.
// DELETE /api/v1/forms/appointment/:id
func (h *Handler) Close(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	h.svc.Close(id)
	httpkit.OK(c, gin.H{"closed": true})
}
