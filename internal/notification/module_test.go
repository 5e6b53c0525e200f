package notification

import (
	"context"
	"testing"
	"time"

	"portfolio_backend/internal/email"
	"portfolio_backend/internal/events"
	"portfolio_backend/platform/logger"
)

type sentMail struct {
	kind        string
	to          string
	attachments int
}

type fakeSender struct {
	email.NoopSender
	sent []sentMail
}

func (f *fakeSender) SendContactMessageNotification(ctx context.Context, toEmail string, data email.ContactMessageData) error {
	f.sent = append(f.sent, sentMail{kind: "contact", to: toEmail})
	return nil
}

func (f *fakeSender) SendAppointmentNotification(ctx context.Context, toEmail string, data email.AppointmentData) error {
	f.sent = append(f.sent, sentMail{kind: "appointment", to: toEmail})
	return nil
}

func (f *fakeSender) SendAppointmentConfirmation(ctx context.Context, toEmail string, data email.AppointmentData, attachments ...email.Attachment) error {
	f.sent = append(f.sent, sentMail{kind: "confirmation", to: toEmail, attachments: len(attachments)})
	return nil
}

func (f *fakeSender) SendOrderNotification(ctx context.Context, toEmail string, data email.OrderData) error {
	f.sent = append(f.sent, sentMail{kind: "order", to: toEmail})
	return nil
}

type notifyCfg string

func (c notifyCfg) GetOwnerEmail() string { return string(c) }
func (c notifyCfg) GetAppBaseURL() string { return "http://localhost:5173" }

func newModule(owner string) (*Module, *fakeSender) {
	sender := &fakeSender{}
	return NewModule(sender, notifyCfg(owner), logger.New("test")), sender
}

func TestContactMessageNotifiesOwner(t *testing.T) {
	m, sender := newModule("owner@example.com")

	err := m.Handle(context.Background(), events.ContactMessageSubmitted{
		BaseEvent: events.NewBaseEvent(),
		RecordID:  "rec-1",
		Name:      "Jane",
		Email:     "jane@example.com",
		Subject:   "Website",
		Message:   "Hello",
	})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}

	if len(sender.sent) != 1 || sender.sent[0].kind != "contact" || sender.sent[0].to != "owner@example.com" {
		t.Fatalf("unexpected sends: %+v", sender.sent)
	}
}

func TestAppointmentNotifiesOwnerAndVisitor(t *testing.T) {
	m, sender := newModule("owner@example.com")

	err := m.Handle(context.Background(), events.AppointmentBooked{
		BaseEvent:     events.NewBaseEvent(),
		RecordID:      "rec-2",
		FullName:      "Jane",
		Email:         "jane@example.com",
		Topic:         "Kickoff",
		StartsAt:      time.Date(2026, 9, 14, 15, 0, 0, 0, time.UTC),
		DateFormatted: "Monday, September 14, 2026",
		TimeFormatted: "3:00 PM",
	})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}

	if len(sender.sent) != 2 {
		t.Fatalf("expected owner notification and visitor confirmation, got %+v", sender.sent)
	}
	if sender.sent[0].kind != "appointment" || sender.sent[0].to != "owner@example.com" {
		t.Fatalf("unexpected owner send: %+v", sender.sent[0])
	}
	confirmation := sender.sent[1]
	if confirmation.kind != "confirmation" || confirmation.to != "jane@example.com" {
		t.Fatalf("unexpected visitor send: %+v", confirmation)
	}
	if confirmation.attachments != 1 {
		t.Fatalf("confirmation should carry the QR attachment, got %d", confirmation.attachments)
	}
}

func TestOrderNotifiesOwner(t *testing.T) {
	m, sender := newModule("owner@example.com")

	err := m.Handle(context.Background(), events.OrderPlaced{
		BaseEvent: events.NewBaseEvent(),
		RecordID:  "rec-3",
		Name:      "Jane",
		Email:     "jane@example.com",
		PlanID:    "starter",
		PlanName:  "Starter Package",
		Budget:    "$499",
	})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}

	if len(sender.sent) != 1 || sender.sent[0].kind != "order" {
		t.Fatalf("unexpected sends: %+v", sender.sent)
	}
}

func TestNoOwnerConfiguredSkipsOwnerMail(t *testing.T) {
	m, sender := newModule("")

	err := m.Handle(context.Background(), events.AppointmentBooked{
		BaseEvent: events.NewBaseEvent(),
		RecordID:  "rec-4",
		FullName:  "Jane",
		Email:     "jane@example.com",
		StartsAt:  time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}

	if len(sender.sent) != 1 || sender.sent[0].kind != "confirmation" {
		t.Fatalf("only the visitor confirmation should go out, got %+v", sender.sent)
	}
}
