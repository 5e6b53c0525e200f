// Package signals provides the process-wide UI signal bus: one loader state
// and one alert state, mutated only through the operations below. There is no
// history stack; overlapping calls are last-write-wins.
package signals

import (
	"sync"
	"time"
)

// LoaderKind selects the loader presentation.
type LoaderKind string

const (
	LoaderSpinner LoaderKind = "spinner"
	LoaderDots    LoaderKind = "dots"
	LoaderPulse   LoaderKind = "pulse"
	LoaderWave    LoaderKind = "wave"
)

// AlertKind selects the alert severity.
type AlertKind string

const (
	AlertSuccess AlertKind = "success"
	AlertError   AlertKind = "error"
	AlertWarning AlertKind = "warning"
	AlertInfo    AlertKind = "info"
)

// Position selects where the alert banner is anchored.
type Position string

const (
	PositionTop    Position = "top"
	PositionBottom Position = "bottom"
)

const defaultAutoCloseMs = 5000

// LoaderState is the current loader presentation.
type LoaderState struct {
	Visible    bool       `json:"visible"`
	Text       string     `json:"text"`
	Kind       LoaderKind `json:"kind"`
	FullScreen bool       `json:"fullScreen"`
}

// AlertState is the current alert presentation.
type AlertState struct {
	Visible     bool      `json:"visible"`
	Kind        AlertKind `json:"kind"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	AutoClose   bool      `json:"autoClose"`
	AutoCloseMs int       `json:"autoCloseMs"`
	Position    Position  `json:"position"`
}

// State is the full signal bus snapshot pushed to subscribers.
type State struct {
	Loader LoaderState `json:"loader"`
	Alert  AlertState  `json:"alert"`
}

// LoaderOptions configures ShowLoader. Zero values fall back to defaults
// (spinner, full screen, no text).
type LoaderOptions struct {
	Text       string
	Kind       LoaderKind
	FullScreen *bool
}

// AlertOptions configures ShowAlert. AutoClose defaults to true,
// AutoCloseMs to 5000, Position to top.
type AlertOptions struct {
	Kind        AlertKind
	Title       string
	Message     string
	AutoClose   *bool
	AutoCloseMs int
	Position    Position
}

// Bus is the single process-wide signal state. A second ShowLoader or
// ShowAlert while one is visible overwrites it; there is no stacking counter.
type Bus struct {
	mu         sync.Mutex
	state      State
	alertGen   uint64
	alertTimer *time.Timer
	subs       map[int]chan State
	nextSubID  int
}

// NewBus creates the signal bus with both loader and alert hidden.
func NewBus() *Bus {
	return &Bus{
		state: State{
			Loader: LoaderState{Kind: LoaderSpinner, FullScreen: true},
			Alert:  AlertState{Kind: AlertInfo, AutoClose: true, AutoCloseMs: defaultAutoCloseMs, Position: PositionTop},
		},
		subs: make(map[int]chan State),
	}
}

// ShowLoader makes the loader visible with the given presentation.
func (b *Bus) ShowLoader(opts LoaderOptions) {
	b.mu.Lock()
	defer b.mu.Unlock()

	kind := opts.Kind
	if kind == "" {
		kind = LoaderSpinner
	}
	fullScreen := true
	if opts.FullScreen != nil {
		fullScreen = *opts.FullScreen
	}

	b.state.Loader = LoaderState{
		Visible:    true,
		Text:       opts.Text,
		Kind:       kind,
		FullScreen: fullScreen,
	}
	b.broadcastLocked()
}

// HideLoader makes the loader invisible. Safe to call when already hidden.
func (b *Bus) HideLoader() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.state.Loader.Visible {
		return
	}
	b.state.Loader.Visible = false
	b.broadcastLocked()
}

// ShowAlert makes the alert visible. Any pending auto-close timer from a
// previous alert is cancelled first.
func (b *Bus) ShowAlert(opts AlertOptions) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.cancelAlertTimerLocked()

	autoClose := true
	if opts.AutoClose != nil {
		autoClose = *opts.AutoClose
	}
	autoCloseMs := opts.AutoCloseMs
	if autoCloseMs <= 0 {
		autoCloseMs = defaultAutoCloseMs
	}
	position := opts.Position
	if position == "" {
		position = PositionTop
	}

	b.state.Alert = AlertState{
		Visible:     true,
		Kind:        opts.Kind,
		Title:       opts.Title,
		Message:     opts.Message,
		AutoClose:   autoClose,
		AutoCloseMs: autoCloseMs,
		Position:    position,
	}

	if autoClose {
		gen := b.alertGen
		b.alertTimer = time.AfterFunc(time.Duration(autoCloseMs)*time.Millisecond, func() {
			b.autoHide(gen)
		})
	}
	b.broadcastLocked()
}

// HideAlert makes the alert invisible and cancels any pending auto-close.
func (b *Bus) HideAlert() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.cancelAlertTimerLocked()
	if !b.state.Alert.Visible {
		return
	}
	b.state.Alert.Visible = false
	b.broadcastLocked()
}

// Snapshot returns the current state.
func (b *Bus) Snapshot() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Subscribe registers a state watcher. The returned cancel function must be
// called when the watcher goes away. Slow subscribers miss intermediate
// snapshots rather than blocking publishers.
func (b *Bus) Subscribe() (<-chan State, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextSubID
	b.nextSubID++
	ch := make(chan State, 16)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// autoHide fires from the alert timer. The generation guard drops stale
// timers: a newer ShowAlert or HideAlert bumps the generation, so a late
// fire from a cancelled alert never hides its successor.
func (b *Bus) autoHide(gen uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if gen != b.alertGen || !b.state.Alert.Visible {
		return
	}
	b.alertGen++
	b.alertTimer = nil
	b.state.Alert.Visible = false
	b.broadcastLocked()
}

func (b *Bus) cancelAlertTimerLocked() {
	b.alertGen++
	if b.alertTimer != nil {
		b.alertTimer.Stop()
		b.alertTimer = nil
	}
}

func (b *Bus) broadcastLocked() {
	for _, ch := range b.subs {
		select {
		case ch <- b.state:
		default:
		}
	}
}
