package accessory

import (
	"github.com/jmylchreest/colorlightd/internal/config"
	"github.com/jmylchreest/colorlightd/internal/events"
)

// Characteristic names used in update events and the HTTP API.
const (
	CharacteristicOn         = "on"
	CharacteristicBrightness = "brightness"
	CharacteristicHue        = "hue"
	CharacteristicSaturation = "saturation"
)

// CharacteristicUpdate is the payload published on the event bus whenever a
// characteristic value changes.
type CharacteristicUpdate struct {
	AccessoryID    string `json:"accessory_id"`
	Characteristic string `json:"characteristic"`
	Value          any    `json:"value"`
}

// Lightbulb groups the four platform characteristics of a color light.
// Every value change, platform- or device-originated, is published on the
// event bus.
type Lightbulb struct {
	ID   string
	Name string

	On         *Bool
	Brightness *Int
	Hue        *Int
	Saturation *Int
}

// NewLightbulb creates a lightbulb service for the accessory id. bus may be
// nil; update events are then dropped.
func NewLightbulb(id, name string, bus *events.Bus) *Lightbulb {
	lb := &Lightbulb{
		ID:         id,
		Name:       name,
		On:         NewBool(CharacteristicOn),
		Brightness: NewInt(CharacteristicBrightness, config.MinBrightness, config.MaxBrightness),
		Hue:        NewInt(CharacteristicHue, config.MinHue, config.MaxHue),
		Saturation: NewInt(CharacteristicSaturation, config.MinSaturation, config.MaxSaturation),
	}

	notify := func(name string, value any) {
		if bus == nil {
			return
		}
		bus.Publish(events.NewEvent(events.CharacteristicUpdated, CharacteristicUpdate{
			AccessoryID:    id,
			Characteristic: name,
			Value:          value,
		}))
	}
	lb.On.notify = notify
	lb.Brightness.notify = notify
	lb.Hue.notify = notify
	lb.Saturation.notify = notify
	return lb
}
