// Package email renders and delivers the transactional mail for form
// submissions: owner notifications, visitor confirmations, and appointment
// reminders.
package email

import "context"

// Attachment represents a file attachment for an email.
type Attachment struct {
	FileName string
	Content  []byte
}

// Sender delivers the transactional emails. Implementations must be safe for
// concurrent use.
type Sender interface {
	SendContactMessageNotification(ctx context.Context, toEmail string, data ContactMessageData) error
	SendAppointmentNotification(ctx context.Context, toEmail string, data AppointmentData) error
	SendAppointmentConfirmation(ctx context.Context, toEmail string, data AppointmentData, attachments ...Attachment) error
	SendAppointmentReminder(ctx context.Context, toEmail string, data AppointmentData) error
	SendOrderNotification(ctx context.Context, toEmail string, data OrderData) error
}

// ContactMessageData carries the fields of a submitted contact message.
type ContactMessageData struct {
	Name    string
	Email   string
	Phone   string
	Subject string
	Message string
}

// AppointmentData carries the fields of a booked appointment.
type AppointmentData struct {
	FullName      string
	Email         string
	Topic         string
	DateFormatted string
	TimeFormatted string
}

// OrderData carries the fields of a placed order.
type OrderData struct {
	Name        string
	Email       string
	Phone       string
	PlanName    string
	Budget      string
	Timeline    string
	Description string
}

// NoopSender drops all mail. Used when SMTP is not configured.
type NoopSender struct{}

func (NoopSender) SendContactMessageNotification(ctx context.Context, toEmail string, data ContactMessageData) error {
	return nil
}

func (NoopSender) SendAppointmentNotification(ctx context.Context, toEmail string, data AppointmentData) error {
	return nil
}

func (NoopSender) SendAppointmentConfirmation(ctx context.Context, toEmail string, data AppointmentData, attachments ...Attachment) error {
	return nil
}

func (NoopSender) SendAppointmentReminder(ctx context.Context, toEmail string, data AppointmentData) error {
	return nil
}

func (NoopSender) SendOrderNotification(ctx context.Context, toEmail string, data OrderData) error {
	return nil
}

var _ Sender = NoopSender{}
