package formflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestValidationFailureSkipsPersist(t *testing.T) {
	persistCalls := 0
	validationErr := errors.New("name required")
	c := NewController(Config{
		Hooks: Hooks{
			Validate: func(map[string]string) error { return validationErr },
			Persist: func(context.Context, map[string]string) (string, error) {
				persistCalls++
				return "", nil
			},
		},
	})
	_ = c.SetField("name", "")

	err := c.Submit(context.Background())
	if !errors.Is(err, validationErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if persistCalls != 0 {
		t.Fatalf("persist must not run on validation failure, ran %d times", persistCalls)
	}
	if c.State() != StateEditing {
		t.Fatalf("expected return to editing, got %s", c.State())
	}
}

func TestDoubleSubmitFiresOnePersist(t *testing.T) {
	release := make(chan struct{})
	persistCalls := 0
	var mu sync.Mutex

	c := NewController(Config{
		Hooks: Hooks{
			Persist: func(context.Context, map[string]string) (string, error) {
				mu.Lock()
				persistCalls++
				mu.Unlock()
				<-release
				return "id-1", nil
			},
		},
	})

	done := make(chan error, 1)
	go func() { done <- c.Submit(context.Background()) }()

	// Wait for the first submit to reach the persist hook.
	for c.State() != StateSubmitting {
		time.Sleep(time.Millisecond)
	}

	if err := c.Submit(context.Background()); !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("second submit should be rejected, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	if persistCalls != 1 {
		t.Fatalf("expected exactly one persist call, got %d", persistCalls)
	}
}

func TestFailureRetainsFieldsForRetry(t *testing.T) {
	var failureSeen error
	attempts := 0
	c := NewController(Config{
		Hooks: Hooks{
			Persist: func(context.Context, map[string]string) (string, error) {
				attempts++
				if attempts == 1 {
					return "", errors.New("network down")
				}
				return "id-2", nil
			},
			OnFailure: func(err error) { failureSeen = err },
		},
	})
	_ = c.SetField("name", "Jane")
	_ = c.SetField("message", "Hello")

	if err := c.Submit(context.Background()); err == nil {
		t.Fatal("expected first submit to fail")
	}
	if failureSeen == nil {
		t.Fatal("expected OnFailure hook to fire")
	}
	if c.Field("name") != "Jane" || c.Field("message") != "Hello" {
		t.Fatal("fields must be retained after a failed submit")
	}
	if c.State() != StateEditing {
		t.Fatalf("expected immediate re-enable after failure, got %s", c.State())
	}

	// Retry without retyping succeeds.
	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
}

func TestSuccessClearsFieldsAndDelaysReenable(t *testing.T) {
	var successID string
	c := NewController(Config{
		Defaults:     map[string]string{"budget": "$499"},
		SuccessDelay: 30 * time.Millisecond,
		Hooks: Hooks{
			Persist: func(context.Context, map[string]string) (string, error) {
				return "id-3", nil
			},
			OnSuccess: func(id string) { successID = id },
		},
	})
	_ = c.SetField("name", "Jane")
	_ = c.SetField("budget", "$999")

	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if successID != "id-3" {
		t.Fatalf("expected OnSuccess with record id, got %q", successID)
	}
	if c.Field("name") != "" {
		t.Fatal("fields must clear after success")
	}
	if c.Field("budget") != "$499" {
		t.Fatalf("defaults must be restored after success, got %q", c.Field("budget"))
	}

	if err := c.Submit(context.Background()); !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("submit during the success display window should be rejected, got %v", err)
	}

	deadline := time.After(2 * time.Second)
	for c.State() != StateEditing {
		select {
		case <-deadline:
			t.Fatal("controller never re-enabled after success delay")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestClosedControllerIgnoresLateResolution(t *testing.T) {
	release := make(chan struct{})
	hookFired := false
	c := NewController(Config{
		Hooks: Hooks{
			Persist: func(context.Context, map[string]string) (string, error) {
				<-release
				return "id-4", nil
			},
			OnSuccess: func(string) { hookFired = true },
		},
	})

	done := make(chan error, 1)
	go func() { done <- c.Submit(context.Background()) }()
	for c.State() != StateSubmitting {
		time.Sleep(time.Millisecond)
	}

	c.Close()
	close(release)

	if err := <-done; !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed for late resolution, got %v", err)
	}
	if hookFired {
		t.Fatal("hooks must not fire after Close")
	}
}

func TestSetFieldIfUntouchedNeverOverwritesUserInput(t *testing.T) {
	c := NewController(Config{})

	if applied := c.SetFieldIfUntouched("subject", "Pro Plan"); !applied {
		t.Fatal("pre-fill of pristine field should apply")
	}
	if c.Field("subject") != "Pro Plan" {
		t.Fatalf("unexpected subject %q", c.Field("subject"))
	}

	_ = c.SetField("subject", "My own subject")
	if applied := c.SetFieldIfUntouched("subject", "Premium Package"); applied {
		t.Fatal("pre-fill must not overwrite a user-edited field")
	}
	if c.Field("subject") != "My own subject" {
		t.Fatalf("user input was overwritten: %q", c.Field("subject"))
	}
}

func TestRegistrySweepClosesIdleSessions(t *testing.T) {
	r := NewRegistry()
	c := NewController(Config{})
	id := r.Add(c)

	time.Sleep(10 * time.Millisecond)
	if removed := r.Sweep(5 * time.Millisecond); len(removed) != 1 || removed[0] != id {
		t.Fatalf("expected the idle session swept, got %v", removed)
	}
	if _, ok := r.Get(id); ok {
		t.Fatal("session should be gone after sweep")
	}
	if err := c.SetField("name", "x"); !errors.Is(err, ErrClosed) {
		t.Fatalf("swept controller should be closed, got %v", err)
	}
}
