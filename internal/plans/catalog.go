// Package plans provides the pricing plan catalog and the "Request Now"
// entry point that feeds the cross-form selection relay.
package plans

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed plans.yaml
var catalogYAML []byte

// Fixed plan identifiers. Every plan except PlanCustom carries a fixed
// display price that locks the order form's budget field.
const (
	PlanStarter = "starter"
	PlanPro     = "pro"
	PlanPremium = "premium"
	PlanCustom  = "custom"
)

// Plan is one pricing tier as shown on the services/pricing cards.
type Plan struct {
	ID           string   `yaml:"id" json:"id"`
	Name         string   `yaml:"name" json:"name"`
	Price        string   `yaml:"price" json:"price"`
	Description  string   `yaml:"description" json:"description"`
	DeliveryTime string   `yaml:"deliveryTime" json:"deliveryTime"`
	Popular      bool     `yaml:"popular" json:"popular"`
	Features     []string `yaml:"features" json:"features"`
}

// HasFixedPrice reports whether the plan's price is a fixed tier rather than
// a user-negotiated budget.
func (p Plan) HasFixedPrice() bool {
	return p.ID != PlanCustom
}

// Catalog is the loaded, ordered plan list.
type Catalog struct {
	plans []Plan
	byID  map[string]Plan
}

type catalogFile struct {
	Plans []Plan `yaml:"plans"`
}

// LoadCatalog parses the embedded plan definitions.
func LoadCatalog() (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(catalogYAML, &file); err != nil {
		return nil, fmt.Errorf("parse plan catalog: %w", err)
	}
	if len(file.Plans) == 0 {
		return nil, fmt.Errorf("plan catalog is empty")
	}

	byID := make(map[string]Plan, len(file.Plans))
	for _, p := range file.Plans {
		if p.ID == "" || p.Name == "" || p.Price == "" {
			return nil, fmt.Errorf("plan %q is missing required fields", p.ID)
		}
		if _, dup := byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate plan id %q", p.ID)
		}
		byID[p.ID] = p
	}
	if _, ok := byID[PlanCustom]; !ok {
		return nil, fmt.Errorf("plan catalog must define the %s plan", PlanCustom)
	}

	return &Catalog{plans: file.Plans, byID: byID}, nil
}

// All returns the plans in catalog order.
func (c *Catalog) All() []Plan {
	out := make([]Plan, len(c.plans))
	copy(out, c.plans)
	return out
}

// ByID looks up a plan. Unknown ids fall back to the custom plan, matching
// how the order page treats unrecognized plan query parameters.
func (c *Catalog) ByID(id string) Plan {
	if p, ok := c.byID[id]; ok {
		return p
	}
	return c.byID[PlanCustom]
}

// Exists reports whether the id names a real plan.
func (c *Catalog) Exists(id string) bool {
	_, ok := c.byID[id]
	return ok
}
