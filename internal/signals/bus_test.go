package signals

import (
	"testing"
	"time"
)

func TestShowLoaderDefaults(t *testing.T) {
	bus := NewBus()
	bus.ShowLoader(LoaderOptions{Text: "Sending..."})

	loader := bus.Snapshot().Loader
	if !loader.Visible {
		t.Fatal("expected loader visible")
	}
	if loader.Kind != LoaderSpinner {
		t.Fatalf("expected default kind spinner, got %s", loader.Kind)
	}
	if !loader.FullScreen {
		t.Fatal("expected full screen by default")
	}
}

func TestShowLoaderOverwritesPrevious(t *testing.T) {
	bus := NewBus()
	bus.ShowLoader(LoaderOptions{Text: "first", Kind: LoaderDots})
	bus.ShowLoader(LoaderOptions{Text: "second", Kind: LoaderWave})

	loader := bus.Snapshot().Loader
	if loader.Text != "second" || loader.Kind != LoaderWave {
		t.Fatalf("expected last-write-wins, got %+v", loader)
	}
}

func TestHideLoaderWhenHiddenIsNoop(t *testing.T) {
	bus := NewBus()
	bus.HideLoader()
	if bus.Snapshot().Loader.Visible {
		t.Fatal("expected loader hidden")
	}
}

func TestAlertAutoCloses(t *testing.T) {
	bus := NewBus()
	bus.ShowAlert(AlertOptions{Kind: AlertSuccess, Title: "Done", Message: "ok", AutoCloseMs: 50})

	if !bus.Snapshot().Alert.Visible {
		t.Fatal("expected alert visible")
	}

	deadline := time.After(2 * time.Second)
	for bus.Snapshot().Alert.Visible {
		select {
		case <-deadline:
			t.Fatal("alert did not auto-close")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestHideAlertCancelsAutoClose(t *testing.T) {
	bus := NewBus()
	bus.ShowAlert(AlertOptions{Kind: AlertInfo, Title: "a", Message: "b", AutoCloseMs: 50})
	bus.HideAlert()

	// A second alert shown before the first timer would have fired must not
	// be hidden by the stale timer.
	bus.ShowAlert(AlertOptions{Kind: AlertError, Title: "c", Message: "d", AutoCloseMs: 60000})
	time.Sleep(120 * time.Millisecond)

	alert := bus.Snapshot().Alert
	if !alert.Visible || alert.Kind != AlertError {
		t.Fatalf("stale auto-close timer hid the newer alert: %+v", alert)
	}
}

func TestNewAlertReplacesPendingAutoClose(t *testing.T) {
	bus := NewBus()
	bus.ShowAlert(AlertOptions{Kind: AlertWarning, Title: "first", Message: "x", AutoCloseMs: 50})
	bus.ShowAlert(AlertOptions{Kind: AlertSuccess, Title: "second", Message: "y", AutoCloseMs: 60000})

	time.Sleep(120 * time.Millisecond)
	alert := bus.Snapshot().Alert
	if !alert.Visible || alert.Title != "second" {
		t.Fatalf("expected the second alert to survive the first alert's timer, got %+v", alert)
	}
}

func TestDisabledAutoCloseKeepsAlertVisible(t *testing.T) {
	bus := NewBus()
	autoClose := false
	bus.ShowAlert(AlertOptions{Kind: AlertInfo, Title: "sticky", Message: "m", AutoClose: &autoClose, AutoCloseMs: 20})

	time.Sleep(80 * time.Millisecond)
	if !bus.Snapshot().Alert.Visible {
		t.Fatal("alert with autoClose=false should stay visible")
	}
}

func TestSubscribeReceivesSnapshots(t *testing.T) {
	bus := NewBus()
	updates, cancel := bus.Subscribe()
	defer cancel()

	bus.ShowLoader(LoaderOptions{Text: "working"})

	select {
	case state := <-updates:
		if !state.Loader.Visible || state.Loader.Text != "working" {
			t.Fatalf("unexpected snapshot: %+v", state.Loader)
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot received")
	}
}
