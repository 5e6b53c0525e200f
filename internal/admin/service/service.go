// Package service implements the admin gate and the message retrieval view.
//
// The gate is a single shared password compared against configuration. It is
// an intentionally simple placeholder carried over from the site it fronts,
// not real authentication: no accounts, no hashing, no expiry. Do not expose
// it beyond a personal portfolio without replacing it.
package service

import (
	"context"
	"crypto/subtle"
	"sync"

	"portfolio_backend/internal/admin/session"
	"portfolio_backend/internal/admin/transport"
	"portfolio_backend/internal/signals"
	"portfolio_backend/internal/store"
	"portfolio_backend/platform/apperr"
	"portfolio_backend/platform/config"
	"portfolio_backend/platform/logger"
)

const (
	msgWrongPassword = "wrong password"
	msgGateDisabled  = "admin access is not configured"
	msgListFailed    = "failed to load messages"
	msgDeleteFailed  = "failed to delete message"
)

// Service owns the admin gate and the cached message list.
type Service struct {
	cfg      config.AdminConfig
	sessions session.Store
	store    store.RecordStore
	signals  *signals.Bus
	log      *logger.Logger

	mu     sync.Mutex
	cache  []store.Record
	primed bool
}

// New creates the admin service.
func New(cfg config.AdminConfig, sessions session.Store, recordStore store.RecordStore, signalBus *signals.Bus, log *logger.Logger) *Service {
	return &Service{
		cfg:      cfg,
		sessions: sessions,
		store:    recordStore,
		signals:  signalBus,
		log:      log,
	}
}

// Login checks the gate password and issues a session token. The compare is
// constant-time; an unconfigured password keeps the gate shut.
func (s *Service) Login(ctx context.Context, password, clientIP string) (transport.LoginResponse, error) {
	configured := s.cfg.GetAdminPassword()
	if configured == "" {
		return transport.LoginResponse{}, apperr.Unauthorized(msgGateDisabled)
	}

	if subtle.ConstantTimeCompare([]byte(password), []byte(configured)) != 1 {
		s.log.GateEvent(false, clientIP)
		s.signals.ShowAlert(signals.AlertOptions{
			Kind:    signals.AlertError,
			Title:   "Access denied",
			Message: "The password is incorrect.",
		})
		return transport.LoginResponse{}, apperr.Unauthorized(msgWrongPassword)
	}

	token, err := s.sessions.Create(ctx)
	if err != nil {
		return transport.LoginResponse{}, apperr.Wrap(apperr.KindInternal, "failed to create session", err)
	}

	s.log.GateEvent(true, clientIP)
	s.signals.ShowAlert(signals.AlertOptions{
		Kind:    signals.AlertSuccess,
		Title:   "Welcome back!",
		Message: "You are now logged in.",
	})
	return transport.LoginResponse{Token: token}, nil
}

// Logout drops a session token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// Authorized reports whether the token names a live session.
func (s *Service) Authorized(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}
	ok, err := s.sessions.Exists(ctx, token)
	if err != nil {
		s.log.Error("session lookup failed", "error", err)
		return false
	}
	return ok
}

// Messages lists the stored contact messages, newest first. When the store
// read fails the last successfully fetched list is served instead, flagged
// stale, so the view degrades rather than blanks. Before any list has ever
// loaded there is no fallback and the failure is returned.
func (s *Service) Messages(ctx context.Context) (transport.MessagesResponse, error) {
	records, err := s.store.ListRecords(ctx, store.CollectionContactMessages)
	if err != nil {
		s.log.StoreError("list", store.CollectionContactMessages, err)

		s.mu.Lock()
		primed := s.primed
		cached := append([]store.Record(nil), s.cache...)
		s.mu.Unlock()

		if !primed {
			s.signals.ShowAlert(signals.AlertOptions{
				Kind:    signals.AlertError,
				Title:   "Could not load messages",
				Message: "The messages could not be loaded. Please try again.",
			})
			return transport.MessagesResponse{}, apperr.Wrap(apperr.KindInternal, msgListFailed, err)
		}

		s.signals.ShowAlert(signals.AlertOptions{
			Kind:    signals.AlertError,
			Title:   "Could not refresh messages",
			Message: "Showing the last loaded messages instead.",
		})
		return transport.MessagesResponse{Messages: cached, Stale: true}, nil
	}

	s.mu.Lock()
	s.cache = append([]store.Record(nil), records...)
	s.primed = true
	s.mu.Unlock()

	return transport.MessagesResponse{Messages: records, Stale: false}, nil
}

// Delete removes one message. The cached copy is only updated once the store
// confirms the delete; a failed delete keeps the message in the list.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteRecord(ctx, store.CollectionContactMessages, id); err != nil {
		s.log.StoreError("delete", store.CollectionContactMessages, err)
		s.signals.ShowAlert(signals.AlertOptions{
			Kind:    signals.AlertError,
			Title:   "Delete failed",
			Message: "The message could not be deleted. Please try again.",
		})
		return apperr.Wrap(apperr.KindInternal, msgDeleteFailed, err)
	}

	s.mu.Lock()
	for i, rec := range s.cache {
		if rec.ID == id {
			s.cache = append(s.cache[:i], s.cache[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.signals.ShowAlert(signals.AlertOptions{
		Kind:    signals.AlertSuccess,
		Title:   "Message deleted",
		Message: "The message was removed.",
	})
	return nil
}
