package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"portfolio_backend/internal/contact/transport"
	"portfolio_backend/internal/events"
	"portfolio_backend/internal/relay"
	"portfolio_backend/internal/signals"
	"portfolio_backend/internal/store"
	"portfolio_backend/platform/apperr"
	"portfolio_backend/platform/logger"
	"portfolio_backend/platform/validator"

	"github.com/google/uuid"
)

type flakyStore struct {
	inner    store.RecordStore
	failures int
}

func (f *flakyStore) CreateRecord(ctx context.Context, collection string, data map[string]any) (string, error) {
	if f.failures > 0 {
		f.failures--
		return "", errors.New("connection refused")
	}
	return f.inner.CreateRecord(ctx, collection, data)
}

func (f *flakyStore) ListRecords(ctx context.Context, collection string) ([]store.Record, error) {
	return f.inner.ListRecords(ctx, collection)
}

func (f *flakyStore) DeleteRecord(ctx context.Context, collection, id string) error {
	return f.inner.DeleteRecord(ctx, collection, id)
}

type fixture struct {
	svc     *Service
	store   *store.MemoryStore
	signals *signals.Bus
	relay   *relay.Cell
}

func newFixture(t *testing.T, recordStore store.RecordStore) *fixture {
	t.Helper()

	mem, _ := recordStore.(*store.MemoryStore)
	signalBus := signals.NewBus()
	relayCell := relay.NewCell()
	log := logger.New("test")
	bus := events.NewInMemoryBus(log)

	svc := New(recordStore, signalBus, relayCell, bus, validator.New(), log)
	return &fixture{svc: svc, store: mem, signals: signalBus, relay: relayCell}
}

func setAll(t *testing.T, f *fixture, id uuid.UUID) {
	t.Helper()
	_, err := f.svc.SetFields(id, map[string]string{
		transport.FieldName:    "Jane Visitor",
		transport.FieldEmail:   "jane@example.com",
		transport.FieldSubject: "Website project",
		transport.FieldMessage: "I need a <b>website</b> for my shop.",
	})
	if err != nil {
		t.Fatalf("set fields: %v", err)
	}
}

func mustParse(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	if err != nil {
		t.Fatalf("parse session id: %v", err)
	}
	return id
}

func TestSubmitPersistsRecord(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore())
	sess := f.svc.Open(context.Background())
	id := mustParse(t, sess.SessionID)
	setAll(t, f, id)

	resp, err := f.svc.Submit(context.Background(), id)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if resp.RecordID == "" {
		t.Fatal("expected a record id")
	}

	records, err := f.store.ListRecords(context.Background(), store.CollectionContactMessages)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if got := records[0].Data["message"]; got != "I need a website for my shop." {
		t.Fatalf("message not sanitized: %q", got)
	}

	state := f.signals.Snapshot()
	if state.Loader.Visible {
		t.Fatal("loader should be hidden after submit")
	}
	if !state.Alert.Visible || state.Alert.Kind != signals.AlertSuccess {
		t.Fatalf("expected success alert, got %+v", state.Alert)
	}
}

func TestSubmitValidationFailure(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore())
	sess := f.svc.Open(context.Background())
	id := mustParse(t, sess.SessionID)

	_, err := f.svc.SetFields(id, map[string]string{
		transport.FieldName:    "Jane Visitor",
		transport.FieldSubject: "Website project",
		transport.FieldMessage: "Hello",
	})
	if err != nil {
		t.Fatalf("set fields: %v", err)
	}

	_, err = f.svc.Submit(context.Background(), id)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	records, _ := f.store.ListRecords(context.Background(), store.CollectionContactMessages)
	if len(records) != 0 {
		t.Fatalf("validation failure must not persist, got %d records", len(records))
	}

	state := f.signals.Snapshot()
	if !state.Alert.Visible || state.Alert.Kind != signals.AlertWarning {
		t.Fatalf("expected warning alert, got %+v", state.Alert)
	}
}

func TestSubmitFailureRetainsFields(t *testing.T) {
	flaky := &flakyStore{inner: store.NewMemoryStore(), failures: 1}
	f := newFixture(t, flaky)
	sess := f.svc.Open(context.Background())
	id := mustParse(t, sess.SessionID)
	setAll(t, f, id)

	_, err := f.svc.Submit(context.Background(), id)
	if !apperr.Is(err, apperr.KindInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}

	snap, err := f.svc.Session(id)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if snap.Fields[transport.FieldName] != "Jane Visitor" {
		t.Fatal("fields must be retained after a failed submit")
	}

	state := f.signals.Snapshot()
	if !state.Alert.Visible || state.Alert.Kind != signals.AlertError {
		t.Fatalf("expected error alert, got %+v", state.Alert)
	}

	// Retry without retyping.
	if _, err := f.svc.Submit(context.Background(), id); err != nil {
		t.Fatalf("retry submit: %v", err)
	}
}

func TestRelayPrefillOnSelection(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore())
	sess := f.svc.Open(context.Background())
	id := mustParse(t, sess.SessionID)

	f.relay.Set("Starter Package")

	snap, _ := f.svc.Session(id)
	if snap.Fields[transport.FieldSubject] != "Starter Package" {
		t.Fatalf("subject not pre-filled: %q", snap.Fields[transport.FieldSubject])
	}
	if !strings.Contains(snap.Fields[transport.FieldMessage], "Starter Package") {
		t.Fatalf("message should mention the package: %q", snap.Fields[transport.FieldMessage])
	}
}

func TestRelayNeverOverwritesUserInput(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore())
	sess := f.svc.Open(context.Background())
	id := mustParse(t, sess.SessionID)

	if _, err := f.svc.SetFields(id, map[string]string{
		transport.FieldSubject: "My own subject",
	}); err != nil {
		t.Fatalf("set fields: %v", err)
	}

	f.relay.Set("Premium Package")

	snap, _ := f.svc.Session(id)
	if snap.Fields[transport.FieldSubject] != "My own subject" {
		t.Fatalf("user subject overwritten: %q", snap.Fields[transport.FieldSubject])
	}
	if !strings.Contains(snap.Fields[transport.FieldMessage], "Premium Package") {
		t.Fatal("untouched message should still receive the pre-fill")
	}
}

func TestPrefillAppliesOnOpen(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore())
	f.relay.Set("Professional Package")

	sess := f.svc.Open(context.Background())
	if sess.Fields[transport.FieldSubject] != "Professional Package" {
		t.Fatalf("subject not pre-filled on open: %q", sess.Fields[transport.FieldSubject])
	}
}

func TestSubmitResetsRelay(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore())
	f.relay.Set("Starter Package")

	sess := f.svc.Open(context.Background())
	id := mustParse(t, sess.SessionID)
	setAll(t, f, id)

	if _, err := f.svc.Submit(context.Background(), id); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got := f.relay.Get(); got != "" {
		t.Fatalf("relay should be reset after success, got %q", got)
	}
}

func TestUnknownSession(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore())

	_, err := f.svc.Submit(context.Background(), uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	_, err = f.svc.SetFields(uuid.New(), map[string]string{transport.FieldName: "x"})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSuccessWindowRejectsResubmit(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore())
	sess := f.svc.Open(context.Background())
	id := mustParse(t, sess.SessionID)
	setAll(t, f, id)

	if _, err := f.svc.Submit(context.Background(), id); err != nil {
		t.Fatalf("submit: %v", err)
	}

	_, err := f.svc.Submit(context.Background(), id)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict during success window, got %v", err)
	}
}
