// Package transport defines the request/response types for the appointment form.
package transport

// Field names accepted by the appointment form session.
const (
	FieldFullName = "fullName"
	FieldEmail    = "email"
	FieldDate     = "preferredDate"
	FieldTime     = "preferredTime"
	FieldTopic    = "topic"
)

// AppointmentRequest is the validated shape of an appointment submission.
// PreferredDate is a calendar date (2006-01-02), PreferredTime a wall clock
// slot (15:04).
type AppointmentRequest struct {
	FullName      string `validate:"required,max=120"`
	Email         string `validate:"required,email,max=254"`
	PreferredDate string `validate:"required"`
	PreferredTime string `validate:"required"`
	Topic         string `validate:"omitempty,max=500"`
}

// SetFieldsRequest carries field edits for an open session.
type SetFieldsRequest struct {
	Fields map[string]string `json:"fields" binding:"required"`
}

// SessionResponse is the session snapshot returned by the session endpoints.
type SessionResponse struct {
	SessionID string            `json:"sessionId"`
	State     string            `json:"state"`
	Fields    map[string]string `json:"fields"`
}

// SubmitResponse is returned after a successful submission.
type SubmitResponse struct {
	RecordID string `json:"recordId"`
	State    string `json:"state"`
}

// DateOption is one quick-pick date shortcut.
type DateOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// QuickPicksResponse lists the date shortcuts and time slots shown next to
// the manual pickers. Applying one goes through the same field-edit path as
// typing the value by hand.
type QuickPicksResponse struct {
	Dates []DateOption `json:"dates"`
	Times []string     `json:"times"`
}
