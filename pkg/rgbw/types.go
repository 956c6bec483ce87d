// Package rgbw implements discovery, transport and state tracking for
// RGB/RGBW color-light controllers speaking the Shelly-style HTTP API.
package rgbw

import (
	"context"
	"net"
	"time"

	"github.com/jmylchreest/colorlightd/internal/color"
)

// Device change event names. Handlers subscribed to one of these fire when
// the corresponding reported field changes, regardless of whether the change
// originated from our own command or an external actor.
const (
	EventOutput     = "change:output"
	EventBrightness = "change:brightness"
	EventRGB        = "change:rgb"
	EventWhite      = "change:white"
)

// State is a device's reported state. Brightness, RGB and White are nil when
// the fixture does not report that field; a color fixture without a
// brightness channel reports apparent brightness only through its color
// value.
type State struct {
	Output     bool       `json:"output"`
	Brightness *int       `json:"brightness,omitempty"`
	RGB        *color.RGB `json:"rgb,omitempty"`
	White      *int       `json:"white,omitempty"`
}

// clone returns a deep copy so callers can hold a State without racing the
// poll loop.
func (s State) clone() State {
	out := State{Output: s.Output}
	if s.Brightness != nil {
		b := *s.Brightness
		out.Brightness = &b
	}
	if s.RGB != nil {
		rgb := *s.RGB
		out.RGB = &rgb
	}
	if s.White != nil {
		w := *s.White
		out.White = &w
	}
	return out
}

// Command is a partial state update. A nil field means "do not change this
// channel"; every command carries only the fields that actually changed.
type Command struct {
	On         *bool
	Brightness *int
	RGB        *color.RGB
	White      *int
}

// Empty reports whether the command carries no fields at all.
func (c Command) Empty() bool {
	return c.On == nil && c.Brightness == nil && c.RGB == nil && c.White == nil
}

// Device is the contract consumed by the accessory layer. Subscribe returns
// an unsubscribe function; calling it more than once is a no-op.
type Device interface {
	ID() string
	State() State
	Set(ctx context.Context, cmd Command) error
	Subscribe(event string, fn func(State)) (unsubscribe func())
}

// Info is the identity a controller reports on its info endpoint.
type Info struct {
	Product  string `json:"type"`
	MAC      string `json:"mac"`
	Firmware string `json:"fw"`
	Name     string `json:"name"`
}

// DeviceRecord is the manager's bookkeeping view of a controller.
type DeviceRecord struct {
	ID       string
	Name     string
	IP       net.IP
	Port     int
	Mode     color.Mode
	Product  string
	Firmware string
	LastSeen time.Time
}
