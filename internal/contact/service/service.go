// Package service implements the contact form sessions: field state, the
// submit sequence, and the selection relay pre-fill.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"portfolio_backend/internal/contact/transport"
	"portfolio_backend/internal/events"
	"portfolio_backend/internal/formflow"
	"portfolio_backend/internal/relay"
	"portfolio_backend/internal/signals"
	"portfolio_backend/internal/store"
	"portfolio_backend/platform/apperr"
	"portfolio_backend/platform/logger"
	"portfolio_backend/platform/phone"
	"portfolio_backend/platform/sanitize"
	"portfolio_backend/platform/validator"

	playground "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	msgSessionNotFound  = "form session not found"
	msgSubmitInFlight   = "a submission is already in progress"
	msgValidationFailed = "please fill in all required fields correctly"
	msgSubmitFailed     = "failed to send message"
)

const (
	successDelay   = 3 * time.Second
	sweepInterval  = 10 * time.Minute
	maxSessionIdle = 30 * time.Minute
)

// Service owns the open contact form sessions.
type Service struct {
	sessions *formflow.Registry
	store    store.RecordStore
	signals  *signals.Bus
	relay    *relay.Cell
	bus      events.Bus
	val      *validator.Validator
	log      *logger.Logger
}

// New creates the contact service and hooks it to the selection relay: every
// change of the selected package is offered to all open sessions.
func New(recordStore store.RecordStore, signalBus *signals.Bus, relayCell *relay.Cell, bus events.Bus, val *validator.Validator, log *logger.Logger) *Service {
	s := &Service{
		sessions: formflow.NewRegistry(),
		store:    recordStore,
		signals:  signalBus,
		relay:    relayCell,
		bus:      bus,
		val:      val,
		log:      log,
	}

	relayCell.Watch(func(pkg string) {
		if pkg == "" {
			return
		}
		s.sessions.Each(func(_ uuid.UUID, c *formflow.Controller) {
			s.prefill(c, pkg)
		})
	})

	return s
}

// prefill offers the selected package to one session. User-entered input is
// never overwritten; only untouched fields receive the relayed value.
func (s *Service) prefill(c *formflow.Controller, pkg string) {
	c.SetFieldIfUntouched(transport.FieldSubject, pkg)
	c.SetFieldIfUntouched(transport.FieldMessage,
		fmt.Sprintf("Hi, I'm interested in the %s. Could you tell me more about it?", pkg))
}

// Open starts a new form session. If a package is already selected when the
// form opens, the pre-fill applies immediately.
func (s *Service) Open(ctx context.Context) transport.SessionResponse {
	var (
		submitted map[string]string
		submitCtx context.Context
	)

	ctrl := formflow.NewController(formflow.Config{
		SuccessDelay: successDelay,
		Hooks: formflow.Hooks{
			Validate: s.validateFields,
			Persist: func(ctx context.Context, fields map[string]string) (string, error) {
				submitted, submitCtx = fields, ctx
				s.signals.ShowLoader(signals.LoaderOptions{Text: "Sending your message..."})
				return s.store.CreateRecord(ctx, store.CollectionContactMessages, recordData(fields))
			},
			OnSuccess: func(recordID string) {
				s.signals.HideLoader()
				s.signals.ShowAlert(signals.AlertOptions{
					Kind:    signals.AlertSuccess,
					Title:   "Message sent!",
					Message: "Thanks for reaching out. I'll get back to you soon.",
				})
				s.relay.Reset()
				s.publishSubmitted(submitCtx, recordID, submitted)
				s.log.Info("contact message submitted", "recordId", recordID)
			},
			OnFailure: func(err error) {
				s.signals.HideLoader()
				s.signals.ShowAlert(signals.AlertOptions{
					Kind:    signals.AlertError,
					Title:   "Something went wrong",
					Message: "Your message could not be sent. Please try again.",
				})
				s.log.StoreError("create", store.CollectionContactMessages, err)
			},
		},
	})

	if pkg := s.relay.Get(); pkg != "" {
		s.prefill(ctrl, pkg)
	}

	id := s.sessions.Add(ctrl)
	return sessionResponse(id, ctrl)
}

// Session returns the snapshot of an open session.
func (s *Service) Session(id uuid.UUID) (transport.SessionResponse, error) {
	ctrl, ok := s.sessions.Get(id)
	if !ok {
		return transport.SessionResponse{}, apperr.NotFound(msgSessionNotFound)
	}
	return sessionResponse(id, ctrl), nil
}

// SetFields applies user edits to an open session.
func (s *Service) SetFields(id uuid.UUID, fields map[string]string) (transport.SessionResponse, error) {
	ctrl, ok := s.sessions.Get(id)
	if !ok {
		return transport.SessionResponse{}, apperr.NotFound(msgSessionNotFound)
	}

	for name, value := range fields {
		if !allowedField(name) {
			return transport.SessionResponse{}, apperr.BadRequest(fmt.Sprintf("unknown field %q", name))
		}
		if err := ctrl.SetField(name, value); err != nil {
			return transport.SessionResponse{}, mapFlowErr(err)
		}
	}
	return sessionResponse(id, ctrl), nil
}

// Submit runs the submit sequence for an open session.
func (s *Service) Submit(ctx context.Context, id uuid.UUID) (transport.SubmitResponse, error) {
	ctrl, ok := s.sessions.Get(id)
	if !ok {
		return transport.SubmitResponse{}, apperr.NotFound(msgSessionNotFound)
	}

	if err := ctrl.Submit(ctx); err != nil {
		if appErr, ok := err.(*apperr.Error); ok {
			return transport.SubmitResponse{}, appErr
		}
		if errors.Is(err, formflow.ErrSubmitInFlight) || errors.Is(err, formflow.ErrClosed) {
			return transport.SubmitResponse{}, mapFlowErr(err)
		}
		return transport.SubmitResponse{}, apperr.Wrap(apperr.KindInternal, msgSubmitFailed, err)
	}

	return transport.SubmitResponse{
		RecordID: ctrl.LastRecordID(),
		State:    string(ctrl.State()),
	}, nil
}

// Close ends a session. Any in-flight submission resolves without effect.
func (s *Service) Close(id uuid.UUID) {
	s.sessions.Remove(id)
}

// StartJanitor sweeps idle sessions until ctx is cancelled.
func (s *Service) StartJanitor(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := len(s.sessions.Sweep(maxSessionIdle)); n > 0 {
					s.log.Info("contact sessions swept", "count", n)
				}
			}
		}
	}()
}

func (s *Service) validateFields(fields map[string]string) error {
	req := transport.ContactMessageRequest{
		Name:    strings.TrimSpace(fields[transport.FieldName]),
		Email:   strings.TrimSpace(fields[transport.FieldEmail]),
		Phone:   strings.TrimSpace(fields[transport.FieldPhone]),
		Subject: strings.TrimSpace(fields[transport.FieldSubject]),
		Message: strings.TrimSpace(fields[transport.FieldMessage]),
	}

	if err := s.val.Struct(req); err != nil {
		s.signals.ShowAlert(signals.AlertOptions{
			Kind:    signals.AlertWarning,
			Title:   "Missing information",
			Message: "Please fill in all required fields.",
		})
		return apperr.Validation(msgValidationFailed).WithDetails(invalidFields(err))
	}
	return nil
}

func (s *Service) publishSubmitted(ctx context.Context, recordID string, fields map[string]string) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, events.ContactMessageSubmitted{
		BaseEvent: events.NewBaseEvent(),
		RecordID:  recordID,
		Name:      strings.TrimSpace(fields[transport.FieldName]),
		Email:     strings.TrimSpace(fields[transport.FieldEmail]),
		Subject:   sanitize.Text(fields[transport.FieldSubject]),
		Message:   sanitize.Text(fields[transport.FieldMessage]),
	})
}

func recordData(fields map[string]string) map[string]any {
	return map[string]any{
		"name":    sanitize.Text(fields[transport.FieldName]),
		"email":   strings.TrimSpace(fields[transport.FieldEmail]),
		"phone":   phone.NormalizeE164(fields[transport.FieldPhone]),
		"subject": sanitize.Text(fields[transport.FieldSubject]),
		"message": sanitize.Text(fields[transport.FieldMessage]),
	}
}

func sessionResponse(id uuid.UUID, ctrl *formflow.Controller) transport.SessionResponse {
	return transport.SessionResponse{
		SessionID: id.String(),
		State:     string(ctrl.State()),
		Fields:    ctrl.Fields(),
	}
}

func allowedField(name string) bool {
	switch name {
	case transport.FieldName, transport.FieldEmail, transport.FieldPhone,
		transport.FieldSubject, transport.FieldMessage:
		return true
	}
	return false
}

func mapFlowErr(err error) error {
	switch {
	case errors.Is(err, formflow.ErrSubmitInFlight):
		return apperr.Conflict(msgSubmitInFlight)
	case errors.Is(err, formflow.ErrClosed):
		return apperr.NotFound(msgSessionNotFound)
	}
	return err
}

func invalidFields(err error) []string {
	var verrs playground.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, strings.ToLower(fe.Field()))
	}
	return fields
}
