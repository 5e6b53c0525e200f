// Package transport defines the request/response types for the contact form.
package transport

// Field names accepted by the contact form session.
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldPhone   = "phone"
	FieldSubject = "subject"
	FieldMessage = "message"
)

// ContactMessageRequest is the validated shape of a contact submission.
type ContactMessageRequest struct {
	Name    string `validate:"required,max=120"`
	Email   string `validate:"required,email,max=254"`
	Phone   string `validate:"omitempty,max=32"`
	Subject string `validate:"required,max=200"`
	Message string `validate:"required,max=5000"`
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
