package email

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender implements the Sender interface using a direct SMTP connection
// via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a new SMTPSender with the given SMTP credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string, attachments ...Attachment) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	for _, att := range attachments {
		msg.AttachReader(att.FileName, bytes.NewReader(att.Content))
	}

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

func (s *SMTPSender) SendContactMessageNotification(ctx context.Context, toEmail string, data ContactMessageData) error {
	subject := fmt.Sprintf(subjectContactMessageFmt, data.Subject)
	content, err := renderEmailTemplate("contact_message.html", contactMessageEmailData{
		baseEmailData: baseEmailData{
			Title:   "New contact message",
			Heading: "New contact message",
		},
		ContactMessageData: data,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendAppointmentNotification(ctx context.Context, toEmail string, data AppointmentData) error {
	subject := fmt.Sprintf(subjectAppointmentFmt, data.FullName)
	content, err := renderEmailTemplate("appointment_booked.html", appointmentEmailData{
		baseEmailData: baseEmailData{
			Title:   "New appointment request",
			Heading: "New appointment request",
		},
		AppointmentData: data,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendAppointmentConfirmation(ctx context.Context, toEmail string, data AppointmentData, attachments ...Attachment) error {
	subject := fmt.Sprintf(subjectAppointmentConfirmationFmt, data.DateFormatted)
	content, err := renderEmailTemplate("appointment_confirmation.html", appointmentEmailData{
		baseEmailData: baseEmailData{
			Title:   "Appointment confirmed",
			Heading: "Your appointment is booked",
		},
		AppointmentData: data,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content, attachments...)
}

func (s *SMTPSender) SendAppointmentReminder(ctx context.Context, toEmail string, data AppointmentData) error {
	subject := fmt.Sprintf(subjectAppointmentReminderFmt, data.DateFormatted)
	content, err := renderEmailTemplate("appointment_reminder.html", appointmentEmailData{
		baseEmailData: baseEmailData{
			Title:   "Appointment reminder",
			Heading: "Your appointment is coming up",
		},
		AppointmentData: data,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendOrderNotification(ctx context.Context, toEmail string, data OrderData) error {
	subject := fmt.Sprintf(subjectOrderFmt, data.PlanName)
	content, err := renderEmailTemplate("order_placed.html", orderEmailData{
		baseEmailData: baseEmailData{
			Title:   "New order",
			Heading: "New order",
		},
		OrderData:      data,
		HasFixedBudget: data.Budget != "",
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

var _ Sender = (*SMTPSender)(nil)
