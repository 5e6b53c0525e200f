// Package formflow implements the submit state machine shared by the contact,
// appointment, and order forms. A Controller owns one form's field state and
// walks Editing -> Validating -> Submitting -> Succeeded/Failed; failure
// returns to Editing with fields retained, success clears the fields and
// re-enables submission after a short display delay.
package formflow

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State names the controller phases.
type State string

const (
	// StateEditing accepts field edits and a submit attempt.
	StateEditing State = "editing"
	// StateValidating runs the synchronous field checks.
	StateValidating State = "validating"
	// StateSubmitting has one outstanding persist call; further submits are rejected.
	StateSubmitting State = "submitting"
	// StateSucceeded is the post-success display window before returning to editing.
	StateSucceeded State = "succeeded"
)

var (
	// ErrSubmitInFlight is returned when a submit arrives while a previous
	// one has not finished. The persist hook is never invoked twice.
	ErrSubmitInFlight = errors.New("formflow: submission already in progress")
	// ErrClosed is returned for any operation on a closed controller.
	ErrClosed = errors.New("formflow: controller closed")
)

// Hooks are the side effects a controller drives during a submit.
type Hooks struct {
	// Validate checks the field set before any persist attempt.
	Validate func(fields map[string]string) error
	// Persist writes the record and returns its store-assigned id.
	Persist func(ctx context.Context, fields map[string]string) (string, error)
	// OnSuccess fires after a successful persist, outside the controller lock.
	OnSuccess func(recordID string)
	// OnFailure fires after a failed persist, outside the controller lock.
	OnFailure func(err error)
}

// Config configures a Controller.
type Config struct {
	// Defaults are the initial field values, restored when the form clears.
	Defaults map[string]string
	// SuccessDelay keeps the controller in StateSucceeded before re-enabling
	// submission. Zero re-enables immediately.
	SuccessDelay time.Duration
	Hooks        Hooks
}

// Controller is one form's state machine. All methods are safe for
// concurrent use; only one submit can be in flight at a time.
type Controller struct {
	mu           sync.Mutex
	cfg          Config
	state        State
	fields       map[string]string
	touched      map[string]bool
	closed       bool
	lastActive   time.Time
	lastRecordID string
	successTimer *time.Timer
}

// NewController creates a controller in StateEditing with the default fields.
func NewController(cfg Config) *Controller {
	c := &Controller{
		cfg:        cfg,
		state:      StateEditing,
		fields:     make(map[string]string, len(cfg.Defaults)),
		touched:    make(map[string]bool),
		lastActive: time.Now(),
	}
	for k, v := range cfg.Defaults {
		c.fields[k] = v
	}
	return c
}

// SetField records a user edit. Edits are rejected while a submit is in
// flight so the submitted snapshot cannot change under the persist call.
func (c *Controller) SetField(name, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.state != StateEditing {
		return ErrSubmitInFlight
	}

	c.fields[name] = value
	c.touched[name] = true
	c.lastActive = time.Now()
	return nil
}

// SetFieldIfUntouched fills a field without marking it user-touched, and only
// when the user has not already typed into it. Used by the selection relay
// pre-fill; returns whether the value was applied.
func (c *Controller) SetFieldIfUntouched(name, value string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.state != StateEditing || c.touched[name] {
		return false
	}
	c.fields[name] = value
	return true
}

// OverrideField force-sets a field without marking it touched, regardless of
// prior pre-fills. Used for derived fields such as a plan-locked budget.
func (c *Controller) OverrideField(name, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.state != StateEditing {
		return ErrSubmitInFlight
	}
	c.fields[name] = value
	delete(c.touched, name)
	return nil
}

// Field returns the current value of a field.
func (c *Controller) Field(name string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fields[name]
}

// Fields returns a copy of the current field set.
func (c *Controller) Fields() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copyFieldsLocked()
}

// Touched reports whether the user has edited the named field.
func (c *Controller) Touched(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.touched[name]
}

// State returns the current machine state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastActive returns the time of the last user interaction.
func (c *Controller) LastActive() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActive
}

// LastRecordID returns the store id from the most recent successful submit,
// or empty if the last submit did not succeed.
func (c *Controller) LastRecordID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastRecordID
}

// Submit runs the full sequence: validate, persist, then either clear the
// fields (success) or retain them for retry (failure). At most one persist
// call can be outstanding; concurrent submits get ErrSubmitInFlight.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.state != StateEditing {
		c.mu.Unlock()
		return ErrSubmitInFlight
	}
	c.state = StateValidating
	c.lastActive = time.Now()
	c.lastRecordID = ""
	snapshot := c.copyFieldsLocked()
	hooks := c.cfg.Hooks
	c.mu.Unlock()

	if hooks.Validate != nil {
		if err := hooks.Validate(snapshot); err != nil {
			c.mu.Lock()
			if !c.closed {
				c.state = StateEditing
			}
			c.mu.Unlock()
			return err
		}
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.state = StateSubmitting
	c.mu.Unlock()

	recordID, err := hooks.Persist(ctx, snapshot)

	c.mu.Lock()
	if c.closed {
		// The form went away mid-request; drop the resolution on the floor.
		c.mu.Unlock()
		return ErrClosed
	}

	if err != nil {
		// Fields retained unchanged so the user can retry without retyping.
		c.state = StateEditing
		c.mu.Unlock()
		if hooks.OnFailure != nil {
			hooks.OnFailure(err)
		}
		return err
	}

	c.lastRecordID = recordID
	c.clearFieldsLocked()
	if c.cfg.SuccessDelay > 0 {
		c.state = StateSucceeded
		c.successTimer = time.AfterFunc(c.cfg.SuccessDelay, c.reenable)
	} else {
		c.state = StateEditing
	}
	c.mu.Unlock()

	if hooks.OnSuccess != nil {
		hooks.OnSuccess(recordID)
	}
	return nil
}

// Close marks the controller dead. Late persist resolutions no longer mutate
// state or fire hooks.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.successTimer != nil {
		c.successTimer.Stop()
		c.successTimer = nil
	}
}

func (c *Controller) reenable() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.state != StateSucceeded {
		return
	}
	c.state = StateEditing
	c.successTimer = nil
}

func (c *Controller) copyFieldsLocked() map[string]string {
	out := make(map[string]string, len(c.fields))
	for k, v := range c.fields {
		out[k] = v
	}
	return out
}

func (c *Controller) clearFieldsLocked() {
	c.fields = make(map[string]string, len(c.cfg.Defaults))
	for k, v := range c.cfg.Defaults {
		c.fields[k] = v
	}
	c.touched = make(map[string]bool)
}
