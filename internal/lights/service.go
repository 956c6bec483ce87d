// Package lights presents discovered devices and their platform
// characteristics as one light model, consumed by the socket server and the
// HTTP API.
package lights

import (
	"log/slog"
	"time"

	"github.com/jmylchreest/colorlightd/internal/accessory"
	"github.com/jmylchreest/colorlightd/pkg/rgbw"
)

// Light is the externally visible view of a device: controller identity
// plus the current characteristic values.
type Light struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Mode       string    `json:"mode"`
	Product    string    `json:"product,omitempty"`
	Firmware   string    `json:"firmware,omitempty"`
	IP         string    `json:"ip,omitempty"`
	Port       int       `json:"port,omitempty"`
	LastSeen   time.Time `json:"last_seen"`
	On         bool      `json:"on"`
	Brightness int       `json:"brightness"`
	Hue        int       `json:"hue"`
	Saturation int       `json:"saturation"`
}

// Service is the light operations contract consumed by the socket server and
// HTTP handlers.
type Service interface {
	GetLights() map[string]*Light
	GetLight(id string) (*Light, error)
	SetLightPower(id string, on bool) error
	SetLightBrightness(id string, brightness int) error
	SetLightHue(id string, hue int) error
	SetLightSaturation(id string, saturation int) error
}

// Manager implements Service over the device manager and the accessory
// registry.
type Manager struct {
	devices  *rgbw.Manager
	registry *accessory.Registry
	logger   *slog.Logger
}

// NewManager creates a light service.
func NewManager(devices *rgbw.Manager, registry *accessory.Registry, logger *slog.Logger) *Manager {
	return &Manager{
		devices:  devices,
		registry: registry,
		logger:   logger,
	}
}

// GetLights returns views for all lights that have both a device record and
// a registered accessory.
func (m *Manager) GetLights() map[string]*Light {
	records := m.devices.GetRecords()
	out := make(map[string]*Light, len(records))
	for _, rec := range records {
		a, err := m.registry.Get(rec.ID)
		if err != nil {
			// Device known but accessory not registered yet; skip until the
			// registration settles.
			continue
		}
		out[rec.ID] = buildView(rec, a)
	}
	return out
}

// GetLight returns the view for a single light.
func (m *Manager) GetLight(id string) (*Light, error) {
	rec, err := m.devices.GetRecord(id)
	if err != nil {
		return nil, err
	}
	a, err := m.registry.Get(id)
	if err != nil {
		return nil, err
	}
	return buildView(rec, a), nil
}

// SetLightPower sets the On characteristic of a light.
func (m *Manager) SetLightPower(id string, on bool) error {
	a, err := m.registry.Get(id)
	if err != nil {
		return err
	}
	return a.Service().On.Set(on)
}

// SetLightBrightness sets the Brightness characteristic of a light.
func (m *Manager) SetLightBrightness(id string, brightness int) error {
	a, err := m.registry.Get(id)
	if err != nil {
		return err
	}
	return a.Service().Brightness.Set(brightness)
}

// SetLightHue sets the Hue characteristic of a light.
func (m *Manager) SetLightHue(id string, hue int) error {
	a, err := m.registry.Get(id)
	if err != nil {
		return err
	}
	return a.Service().Hue.Set(hue)
}

// SetLightSaturation sets the Saturation characteristic of a light.
func (m *Manager) SetLightSaturation(id string, saturation int) error {
	a, err := m.registry.Get(id)
	if err != nil {
		return err
	}
	return a.Service().Saturation.Set(saturation)
}

func buildView(rec rgbw.DeviceRecord, a accessory.Ability) *Light {
	svc := a.Service()
	view := &Light{
		ID:         rec.ID,
		Name:       rec.Name,
		Mode:       string(rec.Mode),
		Product:    rec.Product,
		Firmware:   rec.Firmware,
		Port:       rec.Port,
		LastSeen:   rec.LastSeen,
		On:         svc.On.Value(),
		Brightness: svc.Brightness.Value(),
		Hue:        svc.Hue.Value(),
		Saturation: svc.Saturation.Value(),
	}
	if rec.IP != nil {
		view.IP = rec.IP.String()
	}
	return view
}
