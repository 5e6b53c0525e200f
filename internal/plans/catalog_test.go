package plans

import "testing"

func TestLoadCatalog(t *testing.T) {
	catalog, err := LoadCatalog()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	all := catalog.All()
	if len(all) != 4 {
		t.Fatalf("expected 4 plans, got %d", len(all))
	}

	starter := catalog.ByID(PlanStarter)
	if starter.Price != "$499" {
		t.Fatalf("unexpected starter price %q", starter.Price)
	}
	if !starter.HasFixedPrice() {
		t.Fatal("starter should be a fixed-price tier")
	}

	custom := catalog.ByID(PlanCustom)
	if custom.HasFixedPrice() {
		t.Fatal("custom plan must not have a fixed price")
	}
}

func TestByIDFallsBackToCustom(t *testing.T) {
	catalog, err := LoadCatalog()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	plan := catalog.ByID("no-such-plan")
	if plan.ID != PlanCustom {
		t.Fatalf("unknown plan id should fall back to custom, got %q", plan.ID)
	}
	if catalog.Exists("no-such-plan") {
		t.Fatal("Exists should be false for unknown id")
	}
}
