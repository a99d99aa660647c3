package scope

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// paletteHuePhase offsets the first channel hue away from pure red so that
// single-channel traces default to an amber tone.
const paletteHuePhase = 60.0

// EvenHuePalette generates n fully saturated colors evenly spaced in hue,
// starting at the given phase in degrees.
func EvenHuePalette(n int, phase float64) []color.Color {
	colors := make([]color.Color, 0, n)
	step := math.Round(360 / float64(n))
	for i := 0; i < n; i++ {
		hue := math.Mod(phase+float64(i)*step, 360)
		colors = append(colors, colorful.Hsv(hue, 1, 1))
	}
	return colors
}

// DefaultPalette is the palette used when Configure receives none.
func DefaultPalette(n int) []color.Color {
	return EvenHuePalette(n, paletteHuePhase)
}
