// Package transport defines the request/response types for the admin view.
package transport

import "portfolio_backend/internal/store"

// LoginRequest carries the gate password.
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// LoginResponse returns the opaque session token on a successful login.
type LoginResponse struct {
	Token string `json:"token"`
}

// MessagesResponse lists the stored contact messages, newest first. Stale is
// set when the store read failed and the list is the last known good copy.
type MessagesResponse struct {
	Messages []store.Record `json:"messages"`
	Stale    bool           `json:"stale"`
}
