package service

import (
	"context"
	"testing"

	"portfolio_backend/internal/events"
	"portfolio_backend/internal/order/transport"
	"portfolio_backend/internal/plans"
	"portfolio_backend/internal/signals"
	"portfolio_backend/internal/store"
	"portfolio_backend/platform/apperr"
	"portfolio_backend/platform/logger"
	"portfolio_backend/platform/validator"

	"github.com/google/uuid"
)

type fixture struct {
	svc     *Service
	store   *store.MemoryStore
	signals *signals.Bus
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	catalog, err := plans.LoadCatalog()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	mem := store.NewMemoryStore()
	signalBus := signals.NewBus()
	log := logger.New("test")

	svc := New(mem, signalBus, events.NewInMemoryBus(log), catalog, validator.New(), log)
	return &fixture{svc: svc, store: mem, signals: signalBus}
}

func open(t *testing.T, f *fixture, planID string) (uuid.UUID, transport.SessionResponse) {
	t.Helper()
	sess := f.svc.Open(context.Background(), planID)
	id, err := uuid.Parse(sess.SessionID)
	if err != nil {
		t.Fatalf("parse session id: %v", err)
	}
	return id, sess
}

func fillRequired(t *testing.T, f *fixture, id uuid.UUID) {
	t.Helper()
	_, err := f.svc.SetFields(id, map[string]string{
		transport.FieldName:        "Jane Founder",
		transport.FieldEmail:       "jane@example.com",
		transport.FieldPhone:       "+14155552671",
		transport.FieldDescription: "An online store for handmade goods.",
		transport.FieldTimeline:    "2 months",
	})
	if err != nil {
		t.Fatalf("set fields: %v", err)
	}
}

func lastOrder(t *testing.T, f *fixture) map[string]any {
	t.Helper()
	records, err := f.store.ListRecords(context.Background(), store.CollectionOrders)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) == 0 {
		t.Fatal("expected an order record")
	}
	return records[0].Data
}

func TestFixedPlanLocksBudget(t *testing.T) {
	f := newFixture(t)
	id, sess := open(t, f, plans.PlanStarter)

	if !sess.BudgetFixed {
		t.Fatal("starter plan should report a fixed budget")
	}
	if sess.Fields[transport.FieldBudget] != "$499" {
		t.Fatalf("budget not derived from plan: %q", sess.Fields[transport.FieldBudget])
	}

	// Budget edits on a fixed tier are dropped.
	snap, err := f.svc.SetFields(id, map[string]string{transport.FieldBudget: "$5"})
	if err != nil {
		t.Fatalf("set fields: %v", err)
	}
	if snap.Fields[transport.FieldBudget] != "$499" {
		t.Fatalf("budget edit should be ignored, got %q", snap.Fields[transport.FieldBudget])
	}

	fillRequired(t, f, id)
	if _, err := f.svc.Submit(context.Background(), id); err != nil {
		t.Fatalf("submit: %v", err)
	}

	data := lastOrder(t, f)
	if data["budget"] != "$499" {
		t.Fatalf("stored budget should be the tier price, got %v", data["budget"])
	}
	if data["planId"] != plans.PlanStarter {
		t.Fatalf("unexpected planId: %v", data["planId"])
	}
}

func TestCustomPlanRequiresBudget(t *testing.T) {
	f := newFixture(t)
	id, sess := open(t, f, plans.PlanCustom)

	if sess.BudgetFixed {
		t.Fatal("custom plan must not report a fixed budget")
	}

	fillRequired(t, f, id)

	_, err := f.svc.Submit(context.Background(), id)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	state := f.signals.Snapshot()
	if !state.Alert.Visible || state.Alert.Kind != signals.AlertWarning {
		t.Fatalf("expected warning alert, got %+v", state.Alert)
	}

	// With a budget the same session goes through.
	if _, err := f.svc.SetFields(id, map[string]string{transport.FieldBudget: "around $3000"}); err != nil {
		t.Fatalf("set budget: %v", err)
	}
	if _, err := f.svc.Submit(context.Background(), id); err != nil {
		t.Fatalf("submit: %v", err)
	}

	data := lastOrder(t, f)
	if data["budget"] != "around $3000" {
		t.Fatalf("stored budget should be the user's text, got %v", data["budget"])
	}
}

func TestUnknownPlanFallsBackToCustom(t *testing.T) {
	f := newFixture(t)
	_, sess := open(t, f, "enterprise-deluxe")

	if sess.Fields[transport.FieldPlan] != plans.PlanCustom {
		t.Fatalf("unknown plan should fall back to custom, got %q", sess.Fields[transport.FieldPlan])
	}
	if sess.BudgetFixed {
		t.Fatal("fallback plan must leave the budget editable")
	}
}

func TestChangePlanRederivesBudget(t *testing.T) {
	f := newFixture(t)
	id, _ := open(t, f, plans.PlanStarter)

	snap, err := f.svc.ChangePlan(id, plans.PlanPremium)
	if err != nil {
		t.Fatalf("change plan: %v", err)
	}
	if snap.Fields[transport.FieldBudget] != "$2499" {
		t.Fatalf("budget should follow the new tier, got %q", snap.Fields[transport.FieldBudget])
	}

	// Switching to custom clears the derived budget.
	snap, err = f.svc.ChangePlan(id, plans.PlanCustom)
	if err != nil {
		t.Fatalf("change plan: %v", err)
	}
	if snap.Fields[transport.FieldBudget] != "" {
		t.Fatalf("derived budget should be cleared on custom, got %q", snap.Fields[transport.FieldBudget])
	}

	// A user-typed custom budget survives plan churn back to custom.
	if _, err := f.svc.SetFields(id, map[string]string{transport.FieldBudget: "$10k"}); err != nil {
		t.Fatalf("set budget: %v", err)
	}
	if _, err := f.svc.ChangePlan(id, plans.PlanCustom); err != nil {
		t.Fatalf("change plan: %v", err)
	}
	snap, _ = f.svc.Session(id)
	if snap.Fields[transport.FieldBudget] != "$10k" {
		t.Fatalf("user budget should survive, got %q", snap.Fields[transport.FieldBudget])
	}

	// A round trip through a fixed tier locks the price while selected but
	// brings the typed budget back on the return to custom.
	snap, err = f.svc.ChangePlan(id, plans.PlanStarter)
	if err != nil {
		t.Fatalf("change plan: %v", err)
	}
	if snap.Fields[transport.FieldBudget] != "$499" {
		t.Fatalf("fixed tier should lock the price, got %q", snap.Fields[transport.FieldBudget])
	}
	snap, err = f.svc.ChangePlan(id, plans.PlanCustom)
	if err != nil {
		t.Fatalf("change plan: %v", err)
	}
	if snap.Fields[transport.FieldBudget] != "$10k" {
		t.Fatalf("user budget should survive a fixed-tier round trip, got %q", snap.Fields[transport.FieldBudget])
	}
}

func TestPlanFieldNotUserEditable(t *testing.T) {
	f := newFixture(t)
	id, _ := open(t, f, plans.PlanPro)

	_, err := f.svc.SetFields(id, map[string]string{transport.FieldPlan: plans.PlanStarter})
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("plan id must not be editable as a field, got %v", err)
	}
}

func TestSuccessRestoresPlanDefaults(t *testing.T) {
	f := newFixture(t)
	id, _ := open(t, f, plans.PlanPro)
	fillRequired(t, f, id)

	if _, err := f.svc.Submit(context.Background(), id); err != nil {
		t.Fatalf("submit: %v", err)
	}

	snap, err := f.svc.Session(id)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if snap.Fields[transport.FieldName] != "" {
		t.Fatal("fields should be cleared after success")
	}
	if snap.Fields[transport.FieldPlan] != plans.PlanPro {
		t.Fatalf("plan default should be restored, got %q", snap.Fields[transport.FieldPlan])
	}
	if snap.Fields[transport.FieldBudget] != "$999" {
		t.Fatalf("budget default should be restored, got %q", snap.Fields[transport.FieldBudget])
	}
}
