package app

import (
	"image/color"
	"math"
)

// ColorTheme selects a power-to-color scheme.
type ColorTheme string

const (
	ClassicTheme   ColorTheme = "classic"   // Blue to red transition
	GrayscaleTheme ColorTheme = "grayscale" // Black to white transition
	ThermalTheme   ColorTheme = "thermal"   // Black to red to yellow to white

	colorMapSize = 256
)

var validThemes = map[ColorTheme]struct{}{
	ClassicTheme:   {},
	GrayscaleTheme: {},
	ThermalTheme:   {},
}

// ColorMapper maps dB power values onto a pre-computed color table so the
// per-pixel cost is a single index calculation.
type ColorMapper struct {
	colorMap      []color.Color
	boundsMin     float64
	powerPerIndex float64
}

// NewColorMapper builds the lookup table for the given theme over the
// given power bounds.
func NewColorMapper(theme ColorTheme, bounds PowerBounds) *ColorMapper {
	cm := ColorMapper{
		colorMap:      make([]color.Color, colorMapSize),
		boundsMin:     bounds.Min,
		powerPerIndex: (bounds.Max - bounds.Min) / float64(colorMapSize-1),
	}

	themeFn := colorThemeFn(theme)
	for i := range cm.colorMap {
		cm.colorMap[i] = themeFn(float64(i) / float64(colorMapSize-1))
	}
	return &cm
}

// GetColor returns the color for a dB power value. Values outside the
// bounds clamp to the ends of the scale; non-finite values map to the
// bottom of the scale.
func (cm *ColorMapper) GetColor(power float64) color.Color {
	if math.IsNaN(power) || math.IsInf(power, -1) {
		return cm.colorMap[0]
	}
	if math.IsInf(power, 1) {
		return cm.colorMap[len(cm.colorMap)-1]
	}

	index := int((power - cm.boundsMin) / cm.powerPerIndex)
	if index < 0 {
		return cm.colorMap[0]
	}
	if index >= len(cm.colorMap) {
		return cm.colorMap[len(cm.colorMap)-1]
	}
	return cm.colorMap[index]
}

func colorThemeFn(theme ColorTheme) func(float64) color.Color {
	switch theme {
	case GrayscaleTheme:
		return func(power float64) color.Color {
			v := uint8(math.Pow(power, 0.7) * 255)
			return color.RGBA{R: v, G: v, B: v, A: 0xff}
		}

	case ThermalTheme:
		return func(power float64) color.Color {
			if power < 0.33 {
				return color.RGBA{R: uint8(power * 3 * 255), A: 0xff}
			}
			if power < 0.66 {
				return color.RGBA{R: 255, G: uint8((power - 0.33) * 3 * 255), A: 0xff}
			}
			return color.RGBA{R: 255, G: 255, B: uint8((power - 0.66) * 3 * 255), A: 0xff}
		}

	default: // ClassicTheme
		return func(power float64) color.Color {
			return hsvToRGB(
				240-(power*240),      // blue to red
				0.9+(power*0.1),      // slightly richer towards the top
				math.Pow(power, 0.7), // gamma for perceptual balance
			)
		}
	}
}

// hsvToRGB converts H in [0, 360), S and V in [0, 1].
func hsvToRGB(h, s, v float64) color.Color {
	if s <= 0 {
		g := uint8(v * 255)
		return color.RGBA{R: g, G: g, B: g, A: 0xff}
	}

	h = math.Mod(h, 360) / 60
	i := int(h)
	f := h - float64(i)

	vv := uint8(v * 255)
	p := uint8(v * (1 - s) * 255)
	q := uint8(v * (1 - s*f) * 255)
	t := uint8(v * (1 - s*(1-f)) * 255)

	switch i {
	case 0:
		return color.RGBA{R: vv, G: t, B: p, A: 0xff}
	case 1:
		return color.RGBA{R: q, G: vv, B: p, A: 0xff}
	case 2:
		return color.RGBA{R: p, G: vv, B: t, A: 0xff}
	case 3:
		return color.RGBA{R: p, G: q, B: vv, A: 0xff}
	case 4:
		return color.RGBA{R: t, G: p, B: vv, A: 0xff}
	default:
		return color.RGBA{R: vv, G: p, B: q, A: 0xff}
	}
}
