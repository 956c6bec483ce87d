package rgbw

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/colorlightd/internal/color"
)

// Controller is a concrete Device backed by an HTTP client. It caches the
// last reported state and emits per-field change events when a poll or a
// successful command changes a field. Commands are applied to the cached
// state immediately on success (local echo), so subscribers see our own
// writes through the same notification path as external changes.
type Controller struct {
	id     string
	name   string
	mode   color.Mode
	client *Client
	logger *slog.Logger

	mu       sync.Mutex
	state    State
	lastSeen time.Time

	subMu   sync.Mutex
	subs    map[string]map[int]func(State)
	nextSub int
}

// NewController creates a controller around an existing client. The initial
// state should come from a prior GetState call; passing the zero State is
// allowed and the first poll will fill it in.
func NewController(id, name string, mode color.Mode, client *Client, initial State, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		id:       id,
		name:     name,
		mode:     mode,
		client:   client,
		logger:   logger,
		state:    initial.clone(),
		lastSeen: time.Now(),
		subs:     make(map[string]map[int]func(State)),
	}
}

// ID returns the controller's stable identifier.
func (d *Controller) ID() string { return d.id }

// Name returns the controller's display name.
func (d *Controller) Name() string { return d.name }

// Mode returns whether the fixture carries a white channel.
func (d *Controller) Mode() color.Mode { return d.mode }

// State returns a copy of the last reported state.
func (d *Controller) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.clone()
}

// LastSeen returns the time of the last successful communication.
func (d *Controller) LastSeen() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastSeen
}

// Subscribe registers a handler for a named change event and returns an
// unsubscribe function. Unsubscribing twice, or unsubscribing a handler for
// an event that never fires (e.g. change:white on an rgb fixture), is a
// no-op.
func (d *Controller) Subscribe(event string, fn func(State)) func() {
	d.subMu.Lock()
	if d.subs[event] == nil {
		d.subs[event] = make(map[int]func(State))
	}
	id := d.nextSub
	d.nextSub++
	d.subs[event][id] = fn
	d.subMu.Unlock()

	return func() {
		d.subMu.Lock()
		if handlers, ok := d.subs[event]; ok {
			delete(handlers, id)
		}
		d.subMu.Unlock()
	}
}

// emit calls all handlers registered for event with a state snapshot.
func (d *Controller) emit(event string, snapshot State) {
	d.subMu.Lock()
	handlers := make([]func(State), 0, len(d.subs[event]))
	for _, fn := range d.subs[event] {
		handlers = append(handlers, fn)
	}
	d.subMu.Unlock()

	for _, fn := range handlers {
		fn(snapshot)
	}
}

// Set sends a partial update to the device. On success the commanded fields
// are folded into the cached state and change events fire for every field
// that actually changed.
func (d *Controller) Set(ctx context.Context, cmd Command) error {
	if cmd.Empty() {
		return nil
	}
	if err := d.client.SetState(ctx, cmd); err != nil {
		return err
	}

	next := d.State()
	if cmd.On != nil {
		next.Output = *cmd.On
	}
	if cmd.Brightness != nil {
		b := *cmd.Brightness
		next.Brightness = &b
	}
	if cmd.RGB != nil {
		rgb := *cmd.RGB
		next.RGB = &rgb
	}
	if cmd.White != nil {
		w := *cmd.White
		next.White = &w
	}
	d.applyState(next)
	return nil
}

// Refresh fetches the device's reported state and emits change events for
// any fields that differ from the cache.
func (d *Controller) Refresh(ctx context.Context) error {
	state, err := d.client.GetState(ctx)
	if err != nil {
		return err
	}
	d.applyState(state)
	return nil
}

// Poll runs Refresh on an interval until ctx is cancelled. Errors are
// logged and polling continues; the next successful poll resynchronizes.
func (d *Controller) Poll(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	d.logger.Debug("device: poll loop started", "id", d.id, "interval", interval)
	for {
		select {
		case <-ctx.Done():
			d.logger.Debug("device: poll loop stopped", "id", d.id)
			return
		case <-ticker.C:
			if err := d.Refresh(ctx); err != nil {
				d.logger.Warn("device: poll failed", "id", d.id, "error", err)
			}
		}
	}
}

// applyState swaps the cached state and fires events for changed fields.
func (d *Controller) applyState(next State) {
	d.mu.Lock()
	prev := d.state
	d.state = next.clone()
	d.lastSeen = time.Now()
	d.mu.Unlock()

	snapshot := next.clone()
	if prev.Output != next.Output {
		d.emit(EventOutput, snapshot)
	}
	if intPtrChanged(prev.Brightness, next.Brightness) {
		d.emit(EventBrightness, snapshot)
	}
	if rgbPtrChanged(prev.RGB, next.RGB) {
		d.emit(EventRGB, snapshot)
	}
	if d.mode == color.ModeRGBW && intPtrChanged(prev.White, next.White) {
		d.emit(EventWhite, snapshot)
	}
}

func intPtrChanged(a, b *int) bool {
	switch {
	case a == nil && b == nil:
		return false
	case a == nil || b == nil:
		// A field appearing for the first time counts as a change only if
		// the new side is present.
		return b != nil
	default:
		return *a != *b
	}
}

func rgbPtrChanged(a, b *color.RGB) bool {
	switch {
	case a == nil && b == nil:
		return false
	case a == nil || b == nil:
		return b != nil
	default:
		return *a != *b
	}
}
