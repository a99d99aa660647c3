package app

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/sigview/sigview/internal/storage"
)

const (
	fontDPI        = 72
	fontSize       = 13
	tickMarkLength = 5
	pixelsPerXTick = 200
	pixelsPerYTick = 100
)

// annotator draws the time and amplitude scales and the information bar.
// A TTF font is used when a path is supplied; otherwise the built-in
// bitmap face keeps the tool free of bundled assets.
type annotator struct {
	face font.Face
}

func newAnnotator(fontPath string) (*annotator, error) {
	if fontPath == "" {
		return &annotator{face: basicfont.Face7x13}, nil
	}

	p, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("reading font file: %w", err)
	}
	parsedFont, err := truetype.Parse(p)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	return &annotator{
		face: truetype.NewFace(parsedFont, &truetype.Options{
			Size:    fontSize,
			DPI:     fontDPI,
			Hinting: font.HintingFull,
		}),
	}, nil
}

func (a *annotator) annotate(img *image.RGBA, area image.Rectangle, series *storage.SeriesData, ymin, ymax float64) error {
	ops := []struct {
		msg string
		fn  func(*image.RGBA, image.Rectangle, *storage.SeriesData, float64, float64) error
	}{
		{"drawing time scale", a.drawTimeScale},
		{"drawing amplitude scale", a.drawAmplitudeScale},
		{"drawing info", a.drawInfo},
	}
	for _, op := range ops {
		if err := op.fn(img, area, series, ymin, ymax); err != nil {
			return fmt.Errorf("%s: %w", op.msg, err)
		}
	}

	return nil
}

func (a *annotator) drawTimeScale(img *image.RGBA, area image.Rectangle, series *storage.SeriesData, _, _ float64) error {
	n := len(series.Times)
	if n == 0 {
		return nil
	}

	count := area.Dx() / pixelsPerXTick
	if count < 2 {
		count = 2
	}
	t0 := series.Times[0]
	secsPerTick := (series.Times[n-1] - t0) / float64(count)

	for si := 0; si <= count; si++ {
		px := area.Min.X + si*area.Dx()/count
		secs := t0 + float64(si)*secsPerTick

		for i := 0; i < tickMarkLength; i++ {
			img.Set(px, area.Max.Y+i, axisColor)
		}

		a.drawString(img, humanSeconds(secs), px+3, area.Max.Y+tickMarkLength+12)
	}

	return nil
}

func (a *annotator) drawAmplitudeScale(img *image.RGBA, area image.Rectangle, _ *storage.SeriesData, ymin, ymax float64) error {
	count := area.Dy() / pixelsPerYTick
	if count < 2 {
		count = 2
	}
	perTick := (ymax - ymin) / float64(count)

	for si := 0; si <= count; si++ {
		py := area.Max.Y - si*area.Dy()/count
		value := ymin + float64(si)*perTick

		for i := 0; i < tickMarkLength; i++ {
			img.Set(area.Min.X-1-i, py, axisColor)
		}

		a.drawString(img, fmt.Sprintf("%0.3g", value), 3, py+4)
	}

	return nil
}

func (a *annotator) drawInfo(img *image.RGBA, area image.Rectangle, series *storage.SeriesData, _, _ float64) error {
	n := len(series.Times)
	duration := 0.0
	if n > 0 {
		duration = series.Times[n-1] - series.Times[0]
	}

	info := fmt.Sprintf("%s samples x %d channels @ %sHz, %s captured %s",
		humanize.Comma(int64(n)),
		series.Session.Channels,
		humanSI(series.Session.SampleRate),
		humanSeconds(duration),
		series.Session.StartTime.Format("2006-01-02 15:04:05"))

	a.drawString(img, info, area.Min.X, img.Bounds().Max.Y-8)
	return nil
}

func (a *annotator) drawString(img *image.RGBA, s string, x, y int) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}),
		Face: a.face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func humanSeconds(secs float64) string {
	return humanSI(secs) + "s"
}

func humanSI(v float64) string {
	fract, suffix := humanize.ComputeSI(v)
	return fmt.Sprintf("%0.2f %s", fract, suffix)
}
