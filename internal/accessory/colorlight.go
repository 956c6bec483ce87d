package accessory

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jmylchreest/colorlightd/internal/color"
	"github.com/jmylchreest/colorlightd/internal/errors"
	"github.com/jmylchreest/colorlightd/pkg/rgbw"
)

// ColorLight keeps a lightbulb service and an RGB/RGBW device in sync, in
// both directions. Platform writes on the service's characteristics become
// partial device commands; device change events become characteristic
// pushes. Device-originated changes never issue a device command, which is
// what breaks the feedback loop.
//
// The cache holds the last-known values. Hue and saturation are always the
// HSV projection of the cached rgb. Brightness is tracked independently
// when the device reports a brightness field; for fixtures without one the
// HSV value component stands in for brightness.
type ColorLight struct {
	device  rgbw.Device
	mode    color.Mode
	service *Lightbulb
	logger  *slog.Logger

	mu             sync.Mutex
	lastOn         bool
	lastBrightness int
	lastHue        int
	lastSaturation int
	lastRGB        color.RGB
	lastWhite      *int
	hasBrightness  bool

	unsubs []func()
}

// NewColorLight creates a reconciler binding service to device. Call
// Initialize before use and Detach before discarding it.
func NewColorLight(device rgbw.Device, mode color.Mode, service *Lightbulb, logger *slog.Logger) *ColorLight {
	if logger == nil {
		logger = slog.Default()
	}
	return &ColorLight{
		device:  device,
		mode:    mode,
		service: service,
		logger:  logger,
	}
}

// Service returns the lightbulb service this reconciler drives.
func (l *ColorLight) Service() *Lightbulb { return l.service }

// Mode returns the fixture's channel mode.
func (l *ColorLight) Mode() color.Mode { return l.mode }

// Initialize seeds the cache from the device's reported state, pushes the
// seeded values onto the characteristics and wires up both handler
// directions.
func (l *ColorLight) Initialize(ctx context.Context) error {
	state := l.device.State()

	l.mu.Lock()
	l.lastOn = state.Output
	if state.RGB != nil {
		l.lastRGB = *state.RGB
	}
	hsv := color.RGBToHSV(l.lastRGB)
	l.lastHue = hsv.H
	l.lastSaturation = hsv.S
	if state.Brightness != nil {
		l.hasBrightness = true
		l.lastBrightness = *state.Brightness
	} else {
		// Brightness-less fixtures report apparent brightness only through
		// their color value.
		l.lastBrightness = hsv.V
	}
	if l.mode == color.ModeRGBW && state.White != nil {
		w := *state.White
		l.lastWhite = &w
	}
	on := l.lastOn
	brightness := l.lastBrightness
	hue := l.lastHue
	saturation := l.lastSaturation
	l.mu.Unlock()

	l.service.On.Update(on)
	l.service.Brightness.Update(brightness)
	l.service.Hue.Update(hue)
	l.service.Saturation.Update(saturation)

	l.service.On.OnSet(l.setOn)
	l.service.Brightness.OnSet(l.setBrightness)
	l.service.Hue.OnSet(l.setHue)
	l.service.Saturation.OnSet(l.setSaturation)

	l.unsubs = append(l.unsubs,
		l.device.Subscribe(rgbw.EventOutput, l.outputChanged),
		l.device.Subscribe(rgbw.EventBrightness, l.brightnessChanged),
		l.device.Subscribe(rgbw.EventRGB, l.rgbChanged),
	)
	if l.mode == color.ModeRGBW {
		l.unsubs = append(l.unsubs, l.device.Subscribe(rgbw.EventWhite, l.whiteChanged))
	}

	l.logger.Debug("accessory: initialized",
		"id", l.service.ID,
		"mode", string(l.mode),
		"on", on,
		"brightness", brightness,
		"hue", hue,
		"saturation", saturation,
	)
	return nil
}

// Detach unsubscribes all device-change handlers. Safe to call more than
// once.
func (l *ColorLight) Detach() {
	l.mu.Lock()
	unsubs := l.unsubs
	l.unsubs = nil
	l.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
	if len(unsubs) > 0 {
		l.logger.Debug("accessory: detached", "id", l.service.ID)
	}
}

// setOn handles a platform write to the On characteristic. The no-op check
// runs against the device's reported output, not the cache, so a retry after
// a failed command still reaches the device.
func (l *ColorLight) setOn(v bool) error {
	reported := l.device.State().Output

	l.mu.Lock()
	l.lastOn = v
	l.mu.Unlock()

	if reported == v {
		return nil
	}

	on := v
	if err := l.device.Set(context.Background(), rgbw.Command{On: &on}); err != nil {
		return errors.LogErrorAndReturn(
			l.logger,
			errors.ServiceCommunicationf("failed to set power: %w", err),
			"accessory: device command failed",
			"id", l.service.ID,
			"characteristic", CharacteristicOn,
		)
	}
	return nil
}

// setBrightness handles a platform write to the Brightness characteristic.
// The cache is updated before the device confirms. The write is suppressed
// only when the device itself reports the requested brightness; fixtures
// without a brightness channel always get the command.
func (l *ColorLight) setBrightness(v int) error {
	reported := l.device.State().Brightness

	l.mu.Lock()
	l.lastBrightness = v
	l.mu.Unlock()

	if reported != nil && *reported == v {
		return nil
	}

	brightness := v
	if err := l.device.Set(context.Background(), rgbw.Command{Brightness: &brightness}); err != nil {
		return errors.LogErrorAndReturn(
			l.logger,
			errors.ServiceCommunicationf("failed to set brightness: %w", err),
			"accessory: device command failed",
			"id", l.service.ID,
			"characteristic", CharacteristicBrightness,
		)
	}
	return nil
}

// setHue handles a platform write to the Hue characteristic.
func (l *ColorLight) setHue(v int) error {
	l.mu.Lock()
	l.lastHue = v
	cmd := l.colorCommandLocked()
	l.mu.Unlock()
	return l.sendColor(cmd, CharacteristicHue)
}

// setSaturation handles a platform write to the Saturation characteristic.
func (l *ColorLight) setSaturation(v int) error {
	l.mu.Lock()
	l.lastSaturation = v
	cmd := l.colorCommandLocked()
	l.mu.Unlock()
	return l.sendColor(cmd, CharacteristicSaturation)
}

// colorCommandLocked recomputes the cached rgb from the cached hue and
// saturation at full value and builds the device command. Brightness is
// deliberately absent so color changes never perturb the brightness
// channel. Callers hold l.mu.
func (l *ColorLight) colorCommandLocked() rgbw.Command {
	rgb := color.HSVToRGB(l.lastHue, l.lastSaturation, 100)
	l.lastRGB = rgb
	cmd := rgbw.Command{RGB: &rgb}
	if l.mode == color.ModeRGBW && l.lastWhite != nil {
		w := *l.lastWhite
		cmd.White = &w
	}
	return cmd
}

func (l *ColorLight) sendColor(cmd rgbw.Command, characteristic string) error {
	if err := l.device.Set(context.Background(), cmd); err != nil {
		return errors.LogErrorAndReturn(
			l.logger,
			errors.ServiceCommunicationf("failed to set color: %w", err),
			"accessory: device command failed",
			"id", l.service.ID,
			"characteristic", characteristic,
		)
	}
	return nil
}

// outputChanged mirrors a device power change onto the On characteristic.
func (l *ColorLight) outputChanged(state rgbw.State) {
	l.mu.Lock()
	l.lastOn = state.Output
	l.mu.Unlock()
	l.service.On.Update(state.Output)
}

// brightnessChanged mirrors a device brightness change onto the Brightness
// characteristic.
func (l *ColorLight) brightnessChanged(state rgbw.State) {
	if state.Brightness == nil {
		return
	}
	l.mu.Lock()
	l.hasBrightness = true
	l.lastBrightness = *state.Brightness
	l.mu.Unlock()
	l.service.Brightness.Update(*state.Brightness)
}

// rgbChanged mirrors a device color change onto the Hue and Saturation
// characteristics. Fixtures without a brightness channel additionally get
// the HSV value component pushed as brightness.
func (l *ColorLight) rgbChanged(state rgbw.State) {
	if state.RGB == nil {
		return
	}
	hsv := color.RGBToHSV(*state.RGB)

	l.mu.Lock()
	l.lastRGB = *state.RGB
	l.lastHue = hsv.H
	l.lastSaturation = hsv.S
	deriveBrightness := !l.hasBrightness
	if deriveBrightness {
		l.lastBrightness = hsv.V
	}
	l.mu.Unlock()

	l.service.Hue.Update(hsv.H)
	l.service.Saturation.Update(hsv.S)
	if deriveBrightness {
		l.service.Brightness.Update(hsv.V)
	}
}

// whiteChanged tracks the device's white channel. White has no platform
// characteristic; the cached value rides along on subsequent color
// commands.
func (l *ColorLight) whiteChanged(state rgbw.State) {
	if state.White == nil {
		return
	}
	l.mu.Lock()
	w := *state.White
	l.lastWhite = &w
	l.mu.Unlock()
}
