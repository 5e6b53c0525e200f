package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio_backend/internal/admin/service"
	"portfolio_backend/internal/admin/transport"
	"portfolio_backend/platform/httpkit"
)

// HeaderToken is the request header carrying the admin session token.
const HeaderToken = "X-Admin-Token"

const (
	msgInvalidRequest = "invalid request"
	msgUnauthorized   = "unauthorized"
)

// Handler handles HTTP requests for the admin view.
type Handler struct {
	svc *service.Service
}

// New creates a new admin handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Login checks the gate password and issues a session token.
// POST /api/v1/admin/login
func (h *Handler) Login(c *gin.Context) {
	var req transport.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.Login(c.Request.Context(), req.Password, c.ClientIP())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Logout drops the session token.
// DELETE /api/v1/admin/session
func (h *Handler) Logout(c *gin.Context) {
	if err := h.svc.Logout(c.Request.Context(), c.GetHeader(HeaderToken)); err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "failed to log out", nil)
		return
	}
	httpkit.OK(c, gin.H{"loggedOut": true})
}

// Session reports whether the presented token is still valid.
// GET /api/v1/admin/session
func (h *Handler) Session(c *gin.Context) {
	httpkit.OK(c, gin.H{"authorized": true})
}

// Messages lists the stored contact messages.
// GET /api/v1/admin/messages
func (h *Handler) Messages(c *gin.Context) {
	result, err := h.svc.Messages(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Delete removes one message.
// DELETE /api/v1/admin/messages/:id
func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"deleted": true})
}

// Middleware rejects requests whose token does not name a live session.
func (h *Handler) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.svc.Authorized(c.Request.Context(), c.GetHeader(HeaderToken)) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, httpkit.ErrorResponse{Error: msgUnauthorized})
			return
		}
		c.Next()
	}
}
