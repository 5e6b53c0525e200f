package service

import (
	"context"
	"reflect"
	"testing"
	"time"

	"portfolio_backend/internal/appointment/transport"
	"portfolio_backend/internal/events"
	"portfolio_backend/internal/scheduler"
	"portfolio_backend/internal/signals"
	"portfolio_backend/internal/store"
	"portfolio_backend/platform/apperr"
	"portfolio_backend/platform/logger"
	"portfolio_backend/platform/validator"

	"github.com/google/uuid"
)

type reminderCall struct {
	payload scheduler.AppointmentReminderPayload
	runAt   time.Time
}

type fakeScheduler struct {
	calls []reminderCall
}

func (f *fakeScheduler) ScheduleAppointmentReminder(ctx context.Context, payload scheduler.AppointmentReminderPayload, runAt time.Time) error {
	f.calls = append(f.calls, reminderCall{payload: payload, runAt: runAt})
	return nil
}

type fixture struct {
	svc       *Service
	store     *store.MemoryStore
	signals   *signals.Bus
	reminders *fakeScheduler
}

func newFixture(t *testing.T, leadTime time.Duration) *fixture {
	t.Helper()

	mem := store.NewMemoryStore()
	signalBus := signals.NewBus()
	log := logger.New("test")
	reminders := &fakeScheduler{}

	svc := New(mem, signalBus, events.NewInMemoryBus(log), reminders, leadTime, validator.New(), log)
	return &fixture{svc: svc, store: mem, signals: signalBus, reminders: reminders}
}

func openSession(t *testing.T, f *fixture) uuid.UUID {
	t.Helper()
	sess := f.svc.Open(context.Background())
	id, err := uuid.Parse(sess.SessionID)
	if err != nil {
		t.Fatalf("parse session id: %v", err)
	}
	return id
}

func setFields(t *testing.T, f *fixture, id uuid.UUID, fields map[string]string) {
	t.Helper()
	if _, err := f.svc.SetFields(id, fields); err != nil {
		t.Fatalf("set fields: %v", err)
	}
}

func TestSubmitPersistsRecordAndSchedulesReminder(t *testing.T) {
	f := newFixture(t, time.Hour)
	id := openSession(t, f)

	date := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	setFields(t, f, id, map[string]string{
		transport.FieldFullName: "Jane Visitor",
		transport.FieldEmail:    "jane@example.com",
		transport.FieldDate:     date,
		transport.FieldTime:     "15:00",
		transport.FieldTopic:    "Project kickoff",
	})

	resp, err := f.svc.Submit(context.Background(), id)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	records, err := f.store.ListRecords(context.Background(), store.CollectionAppointments)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	data := records[0].Data
	if data["preferredDate"] != date || data["preferredTime"] != "15:00" {
		t.Fatalf("unexpected stored date/time: %v / %v", data["preferredDate"], data["preferredTime"])
	}
	if data["timeFormatted"] != "3:00 PM" {
		t.Fatalf("unexpected timeFormatted: %v", data["timeFormatted"])
	}
	if data["dateFormatted"] == nil || data["dateFormatted"] == "" {
		t.Fatal("dateFormatted should be stored")
	}

	if len(f.reminders.calls) != 1 {
		t.Fatalf("expected 1 reminder, got %d", len(f.reminders.calls))
	}
	call := f.reminders.calls[0]
	if call.payload.RecordID != resp.RecordID {
		t.Fatalf("reminder record id mismatch: %s vs %s", call.payload.RecordID, resp.RecordID)
	}
	wantStart, _ := parseStartsAt(date, "15:00")
	if !call.runAt.Equal(wantStart.Add(-time.Hour)) {
		t.Fatalf("reminder should fire one hour before start, got %v", call.runAt)
	}
}

func TestDateAndTimeBothRequired(t *testing.T) {
	f := newFixture(t, time.Hour)
	id := openSession(t, f)

	setFields(t, f, id, map[string]string{
		transport.FieldFullName: "Jane Visitor",
		transport.FieldEmail:    "jane@example.com",
		transport.FieldDate:     time.Now().AddDate(0, 0, 1).Format("2006-01-02"),
	})

	_, err := f.svc.Submit(context.Background(), id)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err.Error() != msgDateTimeRequired {
		t.Fatalf("expected the date/time message, got %q", err.Error())
	}

	state := f.signals.Snapshot()
	if !state.Alert.Visible || state.Alert.Kind != signals.AlertWarning {
		t.Fatalf("expected warning alert, got %+v", state.Alert)
	}

	records, _ := f.store.ListRecords(context.Background(), store.CollectionAppointments)
	if len(records) != 0 {
		t.Fatal("validation failure must not persist")
	}
}

func TestPastDateRejected(t *testing.T) {
	f := newFixture(t, time.Hour)
	id := openSession(t, f)

	setFields(t, f, id, map[string]string{
		transport.FieldFullName: "Jane Visitor",
		transport.FieldEmail:    "jane@example.com",
		transport.FieldDate:     "2020-01-01",
		transport.FieldTime:     "09:00",
	})

	_, err := f.svc.Submit(context.Background(), id)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestQuickPickEqualsManualEntry(t *testing.T) {
	f := newFixture(t, time.Hour)

	picks := f.svc.QuickPicks()
	if len(picks.Dates) != 4 {
		t.Fatalf("expected 4 date shortcuts, got %d", len(picks.Dates))
	}
	if !reflect.DeepEqual(picks.Times, []string{"09:00", "12:00", "15:00", "18:00"}) {
		t.Fatalf("unexpected time slots: %v", picks.Times)
	}

	// Tomorrow via quick pick.
	quickDate := picks.Dates[1].Value

	submit := func(date, clock string) map[string]any {
		id := openSession(t, f)
		setFields(t, f, id, map[string]string{
			transport.FieldFullName: "Jane Visitor",
			transport.FieldEmail:    "jane@example.com",
			transport.FieldDate:     date,
			transport.FieldTime:     clock,
		})
		if _, err := f.svc.Submit(context.Background(), id); err != nil {
			t.Fatalf("submit: %v", err)
		}
		records, _ := f.store.ListRecords(context.Background(), store.CollectionAppointments)
		return records[0].Data
	}

	viaQuickPick := submit(quickDate, picks.Times[2])
	manual := submit(quickDate, "15:00")

	if !reflect.DeepEqual(viaQuickPick, manual) {
		t.Fatalf("quick-pick and manual records differ:\n%v\n%v", viaQuickPick, manual)
	}
}

func TestReminderSkippedWhenTooClose(t *testing.T) {
	f := newFixture(t, 48*time.Hour)
	id := openSession(t, f)

	setFields(t, f, id, map[string]string{
		transport.FieldFullName: "Jane Visitor",
		transport.FieldEmail:    "jane@example.com",
		transport.FieldDate:     time.Now().AddDate(0, 0, 1).Format("2006-01-02"),
		transport.FieldTime:     "18:00",
	})

	if _, err := f.svc.Submit(context.Background(), id); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(f.reminders.calls) != 0 {
		t.Fatalf("reminder should be skipped when the lead time has passed, got %d calls", len(f.reminders.calls))
	}
}
