// Package service implements the appointment form sessions: field state, the
// date/time pairing rule, quick-pick shortcuts, and reminder scheduling.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"portfolio_backend/internal/appointment/transport"
	"portfolio_backend/internal/events"
	"portfolio_backend/internal/formflow"
	"portfolio_backend/internal/scheduler"
	"portfolio_backend/internal/signals"
	"portfolio_backend/internal/store"
	"portfolio_backend/platform/apperr"
	"portfolio_backend/platform/logger"
	"portfolio_backend/platform/sanitize"
	"portfolio_backend/platform/validator"

	playground "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	msgSessionNotFound  = "form session not found"
	msgSubmitInFlight   = "a submission is already in progress"
	msgValidationFailed = "please fill in all required fields correctly"
	msgDateTimeRequired = "please select both a date and a time"
	msgSubmitFailed     = "failed to book appointment"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"

	successDelay   = 3 * time.Second
	sweepInterval  = 10 * time.Minute
	maxSessionIdle = 30 * time.Minute
)

// timeSlots are the quick-pick time options, matching the booking widget.
var timeSlots = []string{"09:00", "12:00", "15:00", "18:00"}

// Service owns the open appointment form sessions.
type Service struct {
	sessions  *formflow.Registry
	store     store.RecordStore
	signals   *signals.Bus
	bus       events.Bus
	reminders scheduler.ReminderScheduler
	leadTime  time.Duration
	val       *validator.Validator
	log       *logger.Logger
	now       func() time.Time
}

// New creates the appointment service. reminders may be nil when no queue is
// configured; booking then proceeds without a scheduled reminder.
func New(recordStore store.RecordStore, signalBus *signals.Bus, bus events.Bus, reminders scheduler.ReminderScheduler, leadTime time.Duration, val *validator.Validator, log *logger.Logger) *Service {
	return &Service{
		sessions:  formflow.NewRegistry(),
		store:     recordStore,
		signals:   signalBus,
		bus:       bus,
		reminders: reminders,
		leadTime:  leadTime,
		val:       val,
		log:       log,
		now:       time.Now,
	}
}

// Open starts a new form session.
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
				s.signals.ShowLoader(signals.LoaderOptions{Text: "Booking your appointment..."})
				return s.store.CreateRecord(ctx, store.CollectionAppointments, s.recordData(fields))
			},
			OnSuccess: func(recordID string) {
				s.signals.HideLoader()
				s.signals.ShowAlert(signals.AlertOptions{
					Kind:    signals.AlertSuccess,
					Title:   "Appointment booked!",
					Message: "You'll receive a confirmation email shortly.",
				})
				s.afterBooked(submitCtx, recordID, submitted)
			},
			OnFailure: func(err error) {
				s.signals.HideLoader()
				s.signals.ShowAlert(signals.AlertOptions{
					Kind:    signals.AlertError,
					Title:   "Booking failed",
					Message: "Your appointment could not be booked. Please try again.",
				})
				s.log.StoreError("create", store.CollectionAppointments, err)
			},
		},
	})

	id := s.sessions.Add(ctrl)
	return sessionResponse(id, ctrl)
}

// QuickPicks returns the date shortcuts relative to today plus the fixed
// time slots.
func (s *Service) QuickPicks() transport.QuickPicksResponse {
	today := s.now()
	return transport.QuickPicksResponse{
		Dates: []transport.DateOption{
			{Label: "Today", Value: today.Format(dateLayout)},
			{Label: "Tomorrow", Value: today.AddDate(0, 0, 1).Format(dateLayout)},
			{Label: "Day After Tomorrow", Value: today.AddDate(0, 0, 2).Format(dateLayout)},
			{Label: "Next Week", Value: today.AddDate(0, 0, 7).Format(dateLayout)},
		},
		Times: append([]string(nil), timeSlots...),
	}
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

// Close ends a session.
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
					s.log.Info("appointment sessions swept", "count", n)
				}
			}
		}
	}()
}

func (s *Service) validateFields(fields map[string]string) error {
	req := transport.AppointmentRequest{
		FullName:      strings.TrimSpace(fields[transport.FieldFullName]),
		Email:         strings.TrimSpace(fields[transport.FieldEmail]),
		PreferredDate: strings.TrimSpace(fields[transport.FieldDate]),
		PreferredTime: strings.TrimSpace(fields[transport.FieldTime]),
		Topic:         strings.TrimSpace(fields[transport.FieldTopic]),
	}

	// A date without a time (or the reverse) is the most common slip, so it
	// gets its own message.
	if req.PreferredDate == "" || req.PreferredTime == "" {
		s.warn("Pick a date and time", "Please select both a date and a time for your appointment.")
		return apperr.Validation(msgDateTimeRequired)
	}

	if err := s.val.Struct(req); err != nil {
		s.warn("Missing information", "Please fill in all required fields.")
		return apperr.Validation(msgValidationFailed).WithDetails(invalidFields(err))
	}

	startsAt, err := parseStartsAt(req.PreferredDate, req.PreferredTime)
	if err != nil {
		s.warn("Invalid date or time", "Please pick a valid date and time.")
		return apperr.Validation(msgValidationFailed)
	}
	if startsAt.Before(s.now()) {
		s.warn("Date is in the past", "Please pick a date and time in the future.")
		return apperr.Validation(msgValidationFailed)
	}
	return nil
}

func (s *Service) warn(title, message string) {
	s.signals.ShowAlert(signals.AlertOptions{
		Kind:    signals.AlertWarning,
		Title:   title,
		Message: message,
	})
}

// afterBooked publishes the domain event and enqueues the reminder task.
// Neither failure affects the already-persisted booking.
func (s *Service) afterBooked(ctx context.Context, recordID string, fields map[string]string) {
	startsAt, err := parseStartsAt(
		strings.TrimSpace(fields[transport.FieldDate]),
		strings.TrimSpace(fields[transport.FieldTime]),
	)
	if err != nil {
		s.log.Error("booked appointment has unparseable start", "recordId", recordID, "error", err)
		return
	}

	fullName := strings.TrimSpace(fields[transport.FieldFullName])
	email := strings.TrimSpace(fields[transport.FieldEmail])
	topic := sanitize.Text(fields[transport.FieldTopic])
	dateFormatted := startsAt.Format("Monday, January 2, 2006")
	timeFormatted := startsAt.Format("3:04 PM")

	if s.bus != nil {
		s.bus.Publish(ctx, events.AppointmentBooked{
			BaseEvent:     events.NewBaseEvent(),
			RecordID:      recordID,
			FullName:      fullName,
			Email:         email,
			Topic:         topic,
			StartsAt:      startsAt,
			DateFormatted: dateFormatted,
			TimeFormatted: timeFormatted,
		})
	}

	if s.reminders == nil {
		return
	}
	runAt := startsAt.Add(-s.leadTime)
	if !runAt.After(s.now()) {
		return
	}
	err = s.reminders.ScheduleAppointmentReminder(ctx, scheduler.AppointmentReminderPayload{
		RecordID:      recordID,
		FullName:      fullName,
		Email:         email,
		Topic:         topic,
		DateFormatted: dateFormatted,
		TimeFormatted: timeFormatted,
	}, runAt)
	if err != nil {
		s.log.Error("failed to schedule reminder", "recordId", recordID, "error", err)
		return
	}
	s.log.Info("reminder scheduled", "recordId", recordID, "runAt", runAt)
}

func (s *Service) recordData(fields map[string]string) map[string]any {
	data := map[string]any{
		"fullName":      sanitize.Text(fields[transport.FieldFullName]),
		"email":         strings.TrimSpace(fields[transport.FieldEmail]),
		"preferredDate": strings.TrimSpace(fields[transport.FieldDate]),
		"preferredTime": strings.TrimSpace(fields[transport.FieldTime]),
		"topic":         sanitize.Text(fields[transport.FieldTopic]),
	}
	if startsAt, err := parseStartsAt(
		strings.TrimSpace(fields[transport.FieldDate]),
		strings.TrimSpace(fields[transport.FieldTime]),
	); err == nil {
		data["dateFormatted"] = startsAt.Format("Monday, January 2, 2006")
		data["timeFormatted"] = startsAt.Format("3:04 PM")
	}
	return data
}

func parseStartsAt(date, clock string) (time.Time, error) {
	d, err := time.ParseInLocation(dateLayout, date, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	t, err := time.Parse(timeLayout, clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", clock, err)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, time.Local), nil
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
	case transport.FieldFullName, transport.FieldEmail, transport.FieldDate,
		transport.FieldTime, transport.FieldTopic:
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
