package app

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/sigview/sigview/internal/scope"
	"github.com/sigview/sigview/internal/storage"
)

const (
	// Dark theme matching the live display.
	gridMajorStep = 100 // pixels between major grid lines

	defaultTopBorder    = 20
	defaultLeftBorder   = 80
	defaultBottomBorder = 60
	defaultRightBorder  = 20
)

var (
	backgroundColor = color.RGBA{A: 0xff}
	gridColor       = color.RGBA{R: 0x50, G: 0x50, B: 0x50, A: 0xff}
	axisColor       = color.RGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}
)

// BorderConfig defines the space around the trace area reserved for
// scales and the information bar.
type BorderConfig struct {
	Top    int
	Left   int // Space for the amplitude scale
	Bottom int // Space for the time scale and information bar
	Right  int
}

// RenderConfig holds the waveform visualization options.
type RenderConfig struct {
	Width    int // Trace area width in pixels
	Height   int // Trace area height in pixels
	FontPath string
	Borders  BorderConfig
	Margin   scope.MarginPolicy
	Annotate bool
}

// WaveformRenderer draws a captured session's per-channel traces.
type WaveformRenderer struct {
	config RenderConfig
}

// NewWaveformRenderer creates a renderer, filling zero-valued config
// fields with defaults.
func NewWaveformRenderer(config RenderConfig) *WaveformRenderer {
	if config.Borders.Top == 0 {
		config.Borders.Top = defaultTopBorder
	}
	if config.Borders.Left == 0 {
		config.Borders.Left = defaultLeftBorder
	}
	if config.Borders.Bottom == 0 {
		config.Borders.Bottom = defaultBottomBorder
	}
	if config.Borders.Right == 0 {
		config.Borders.Right = defaultRightBorder
	}
	if config.Margin == (scope.MarginPolicy{}) {
		config.Margin = scope.DefaultMarginPolicy
	}

	return &WaveformRenderer{config: config}
}

// Render draws the full captured series into an annotated image.
func (r *WaveformRenderer) Render(series *storage.SeriesData) (*image.RGBA, error) {
	fullWidth := r.config.Width + r.config.Borders.Left + r.config.Borders.Right
	fullHeight := r.config.Height + r.config.Borders.Top + r.config.Borders.Bottom
	img := image.NewRGBA(image.Rect(0, 0, fullWidth, fullHeight))

	draw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, draw.Src)

	area := image.Rect(
		r.config.Borders.Left,
		r.config.Borders.Top,
		r.config.Borders.Left+r.config.Width,
		r.config.Borders.Top+r.config.Height,
	)

	ymin, ymax := seriesBounds(series, r.config.Margin)
	r.drawGrid(img, area)
	r.drawTraces(img, area, series, ymin, ymax)

	if r.config.Annotate {
		ann, err := newAnnotator(r.config.FontPath)
		if err != nil {
			return nil, err
		}
		if err = ann.annotate(img, area, series, ymin, ymax); err != nil {
			return nil, err
		}
	}

	return img, nil
}

// seriesBounds derives display bounds from the captured extrema using the
// same margin policy as the live display.
func seriesBounds(series *storage.SeriesData, margin scope.MarginPolicy) (lo, hi float64) {
	lo, hi = 0, 1
	first := true
	for _, channel := range series.Values {
		for _, v := range channel {
			if first {
				lo, hi = v, v
				first = false
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	return margin.Bounds(lo, hi)
}

func (r *WaveformRenderer) drawGrid(img *image.RGBA, area image.Rectangle) {
	for x := area.Min.X; x < area.Max.X; x += gridMajorStep {
		for y := area.Min.Y; y < area.Max.Y; y++ {
			img.Set(x, y, gridColor)
		}
	}
	for y := area.Min.Y; y < area.Max.Y; y += gridMajorStep {
		for x := area.Min.X; x < area.Max.X; x++ {
			img.Set(x, y, gridColor)
		}
	}
}

// drawTraces maps every channel onto the trace area and draws connected
// line segments between consecutive samples.
func (r *WaveformRenderer) drawTraces(img *image.RGBA, area image.Rectangle, series *storage.SeriesData, ymin, ymax float64) {
	n := len(series.Times)
	if n < 2 || ymax == ymin {
		return
	}

	palette := scope.DefaultPalette(series.Session.Channels)

	t0 := series.Times[0]
	tSpan := series.Times[n-1] - t0
	if tSpan == 0 {
		return
	}
	xScale := float64(area.Dx()-1) / tSpan
	yScale := float64(area.Dy()-1) / (ymax - ymin)

	for ch, values := range series.Values {
		c := palette[ch]
		prevX, prevY := 0, 0
		for i := 0; i < n; i++ {
			x := area.Min.X + int(math.Round((series.Times[i]-t0)*xScale))
			y := area.Max.Y - 1 - int(math.Round((values[i]-ymin)*yScale))
			if i > 0 {
				drawLine(img, prevX, prevY, x, y, c)
			}
			prevX, prevY = x, y
		}
	}
}

// drawLine draws a straight segment using the integer midpoint algorithm.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, c color.Color) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		img.Set(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
