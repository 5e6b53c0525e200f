package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"portfolio_backend/internal/contact/service"
	"portfolio_backend/internal/contact/transport"
	"portfolio_backend/platform/httpkit"
)

// Handler handles HTTP requests for contact form sessions.
type Handler struct {
	svc *service.Service
}

const (
	msgInvalidRequest = "invalid request"
	msgInvalidID      = "invalid session ID"
)

// New creates a new contact form handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Open starts a new contact form session.
// POST /api/v1/forms/contact
func (h *Handler) Open(c *gin.Context) {
	httpkit.Created(c, h.svc.Open(c.Request.Context()))
}

// Get returns the current session snapshot.
// GET /api/v1/forms/contact/:id
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

// SetFields applies field edits to the session.
// PUT /api/v1/forms/contact/:id/fields
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
// POST /api/v1/forms/contact/:id/submit
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
// DELETE /api/v1/forms/contact/:id
func (h *Handler) Close(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	h.svc.Close(id)
	httpkit.OK(c, gin.H{"closed": true})
}
