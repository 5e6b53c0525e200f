// Package notification turns form pipeline events into email. It listens on
// the event bus, so a delivery failure never reaches the submit path; the
// worst case is a logged error and a missing email.
package notification

import (
	"context"
	"fmt"

	"portfolio_backend/internal/email"
	"portfolio_backend/internal/events"
	"portfolio_backend/platform/config"
	"portfolio_backend/platform/logger"

	qrcode "github.com/skip2/go-qrcode"
)

// Module wires the form pipeline events to the email sender.
type Module struct {
	sender email.Sender
	cfg    config.NotificationConfig
	log    *logger.Logger
}

// NewModule creates the notification module.
func NewModule(sender email.Sender, cfg config.NotificationConfig, log *logger.Logger) *Module {
	return &Module{sender: sender, cfg: cfg, log: log}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "notification"
}

// RegisterHandlers subscribes to the form pipeline events.
func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.ContactMessageSubmitted{}.EventName(), m)
	bus.Subscribe(events.AppointmentBooked{}.EventName(), m)
	bus.Subscribe(events.OrderPlaced{}.EventName(), m)
}

// Handle routes events to the appropriate notification.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.ContactMessageSubmitted:
		return m.handleContactMessage(ctx, e)
	case events.AppointmentBooked:
		return m.handleAppointmentBooked(ctx, e)
	case events.OrderPlaced:
		return m.handleOrderPlaced(ctx, e)
	default:
		return nil
	}
}

func (m *Module) handleContactMessage(ctx context.Context, e events.ContactMessageSubmitted) error {
	owner := m.cfg.GetOwnerEmail()
	if owner == "" {
		return nil
	}
	err := m.sender.SendContactMessageNotification(ctx, owner, email.ContactMessageData{
		Name:    e.Name,
		Email:   e.Email,
		Subject: e.Subject,
		Message: e.Message,
	})
	if err != nil {
		m.log.Error("contact notification failed", "recordId", e.RecordID, "error", err)
		return err
	}
	return nil
}

func (m *Module) handleAppointmentBooked(ctx context.Context, e events.AppointmentBooked) error {
	data := email.AppointmentData{
		FullName:      e.FullName,
		Email:         e.Email,
		Topic:         e.Topic,
		DateFormatted: e.DateFormatted,
		TimeFormatted: e.TimeFormatted,
	}

	if owner := m.cfg.GetOwnerEmail(); owner != "" {
		if err := m.sender.SendAppointmentNotification(ctx, owner, data); err != nil {
			m.log.Error("appointment notification failed", "recordId", e.RecordID, "error", err)
			return err
		}
	}

	if e.Email == "" {
		return nil
	}

	var attachments []email.Attachment
	if png, err := appointmentQR(e); err != nil {
		// The confirmation still goes out, just without the QR code.
		m.log.Error("appointment qr generation failed", "recordId", e.RecordID, "error", err)
	} else {
		attachments = append(attachments, email.Attachment{FileName: "appointment.png", Content: png})
	}

	if err := m.sender.SendAppointmentConfirmation(ctx, e.Email, data, attachments...); err != nil {
		m.log.Error("appointment confirmation failed", "recordId", e.RecordID, "error", err)
		return err
	}
	return nil
}

func (m *Module) handleOrderPlaced(ctx context.Context, e events.OrderPlaced) error {
	owner := m.cfg.GetOwnerEmail()
	if owner == "" {
		return nil
	}
	err := m.sender.SendOrderNotification(ctx, owner, email.OrderData{
		Name:     e.Name,
		Email:    e.Email,
		PlanName: e.PlanName,
		Budget:   e.Budget,
	})
	if err != nil {
		m.log.Error("order notification failed", "recordId", e.RecordID, "error", err)
		return err
	}
	return nil
}

// appointmentQR encodes the appointment as a calendar event QR code so the
// visitor can scan it straight into their phone.
func appointmentQR(e events.AppointmentBooked) ([]byte, error) {
	summary := "Appointment"
	if e.Topic != "" {
		summary = "Appointment: " + e.Topic
	}
	ics := fmt.Sprintf(
		"BEGIN:VCALENDAR\r\nVERSION:2.0\r\nBEGIN:VEVENT\r\nUID:%s\r\nDTSTART:%s\r\nSUMMARY:%s\r\nEND:VEVENT\r\nEND:VCALENDAR",
		e.RecordID,
		e.StartsAt.UTC().Format("20060102T150405Z"),
		summary,
	)
	return qrcode.Encode(ics, qrcode.Medium, 256)
}
