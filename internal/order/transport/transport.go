// Package transport defines the request/response types for the order form.
package transport

// Field names held by an order form session. FieldPlan and FieldBudget are
// managed by the service for fixed-price tiers; only FieldBudget on the
// custom plan accepts user input.
const (
	FieldName        = "name"
	FieldEmail       = "email"
	FieldPhone       = "phone"
	FieldDescription = "projectDescription"
	FieldTimeline    = "timeline"
	FieldBudget      = "budget"
	FieldReferences  = "references"
	FieldExtra       = "additionalInfo"
	FieldPlan        = "planId"
)

// OrderRequest is the validated shape of an order submission. The budget
// requirement depends on the selected plan and is checked separately.
type OrderRequest struct {
	Name               string `validate:"required,max=120"`
	Email              string `validate:"required,email,max=254"`
	Phone              string `validate:"required,max=32"`
	ProjectDescription string `validate:"required,max=5000"`
	Timeline           string `validate:"required,max=200"`
	Budget             string `validate:"omitempty,max=100"`
	References         string `validate:"omitempty,max=2000"`
	AdditionalInfo     string `validate:"omitempty,max=5000"`
}

// OpenRequest selects the plan an order session starts with. Unknown or
// missing plan ids fall back to the custom plan.
type OpenRequest struct {
	PlanID string `json:"planId"`
}

// ChangePlanRequest switches the session to another plan.
type ChangePlanRequest struct {
	PlanID string `json:"planId" binding:"required"`
}

// SetFieldsRequest carries field edits for an open session.
type SetFieldsRequest struct {
	Fields map[string]string `json:"fields" binding:"required"`
}

// SessionResponse is the session snapshot returned by the session endpoints.
type SessionResponse struct {
	SessionID   string            `json:"sessionId"`
	State       string            `json:"state"`
	Fields      map[string]string `json:"fields"`
	BudgetFixed bool              `json:"budgetFixed"`
}

// SubmitResponse is returned after a successful submission.
type SubmitResponse struct {
	RecordID string `json:"recordId"`
	State    string `json:"state"`
}
