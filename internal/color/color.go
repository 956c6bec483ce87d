// Package color implements the RGB/HSV conversions used to translate between
// device-native color tuples and the Hue/Saturation/Brightness
// characteristics exposed to the platform.
package color

import "math"

// Mode selects whether a fixture carries a dedicated white channel.
type Mode string

const (
	// ModeRGB is a plain three-channel color fixture.
	ModeRGB Mode = "rgb"

	// ModeRGBW is a color fixture with an independent white channel.
	ModeRGBW Mode = "rgbw"
)

// Valid reports whether m is a known color mode.
func (m Mode) Valid() bool {
	return m == ModeRGB || m == ModeRGBW
}

// RGB is an additive color triple. Channels are clamped to [0,255] by the
// conversion functions; the white channel of RGBW fixtures is tracked
// separately and is not part of the triple.
type RGB struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// HSV is the hue/saturation/value projection of an RGB triple.
// H is integer degrees in [0,360), S and V are integer percent in [0,100].
type HSV struct {
	H int `json:"h"`
	S int `json:"s"`
	V int `json:"v"`
}

// clampChannel bounds a color channel to [0,255].
func clampChannel(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// clampPercent bounds a percentage to [0,100].
func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// RGBToHSV converts an RGB triple to its HSV projection.
// Achromatic input (all channels equal) yields hue 0; pure black yields
// saturation 0. Results are rounded to the nearest integer.
func RGBToHSV(c RGB) HSV {
	r := float64(clampChannel(c.R)) / 255.0
	g := float64(clampChannel(c.G)) / 255.0
	b := float64(clampChannel(c.B)) / 255.0

	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	delta := max - min

	var h float64
	switch {
	case delta == 0:
		h = 0
	case max == r:
		h = 60 * math.Mod((g-b)/delta, 6)
	case max == g:
		h = 60 * ((b-r)/delta + 2)
	case max == b:
		h = 60 * ((r-g)/delta + 4)
	}
	hue := int(math.Round(h))
	if hue < 0 {
		hue += 360
	}

	var s float64
	if max > 0 {
		s = delta / max
	}

	return HSV{
		H: hue % 360,
		S: int(math.Round(s * 100)),
		V: int(math.Round(max * 100)),
	}
}

// HSVToRGB converts hue (degrees), saturation and value (percent) to an RGB
// triple using the standard sector decomposition. Hue is normalized into
// [0,360) first, so negative input is handled; s and v are clamped to
// [0,100].
func HSVToRGB(h, s, v int) RGB {
	hue := float64(((h % 360) + 360) % 360)
	sat := float64(clampPercent(s)) / 100.0
	val := float64(clampPercent(v)) / 100.0

	c := val * sat
	x := c * (1 - math.Abs(math.Mod(hue/60, 2)-1))
	m := val - c

	var r, g, b float64
	switch {
	case hue < 60:
		r, g, b = c, x, 0
	case hue < 120:
		r, g, b = x, c, 0
	case hue < 180:
		r, g, b = 0, c, x
	case hue < 240:
		r, g, b = 0, x, c
	case hue < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return RGB{
		R: int(math.Round((r + m) * 255)),
		G: int(math.Round((g + m) * 255)),
		B: int(math.Round((b + m) * 255)),
	}
}
