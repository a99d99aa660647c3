package app

import (
	"image"
)

// renderSpectrogram paints one pixel per (segment, frequency bin) cell:
// time runs left to right, frequency bottom to top.
func renderSpectrogram(sd *SpectrogramData, mapper *ColorMapper) *image.RGBA {
	width := len(sd.Rows)
	height := len(sd.Frequencies)
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for x, row := range sd.Rows {
		for bin, power := range row {
			img.Set(x, height-1-bin, mapper.GetColor(power))
		}
	}
	return img
}
