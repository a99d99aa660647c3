package scope

import (
	"image/color"

	"github.com/sigview/sigview/internal/dsp"
)

// ChannelFrame is the renderable view of a single channel for one drain
// tick: the visible window samples plus display identity.
type ChannelFrame struct {
	Label   string
	Color   color.Color
	Samples []float64
}

// Frame is the unit of work handed to sinks on every nonempty drain tick.
// Slices alias the scope's internal series storage, which is append-only;
// a Frame is therefore a stable snapshot but must not be mutated.
type Frame struct {
	// Times is the visible time axis; Channels hold the matching visible
	// value windows.
	Times    []float64
	Channels []ChannelFrame

	// Batch is the newly drained batch in channel-major order, with
	// BatchTimes holding its synthesized timestamps and BatchStart its
	// index of the first new sample within the retained series.
	Batch      [][]float64
	BatchTimes []float64
	BatchStart int

	// YMin and YMax are the display bounds including the margin.
	YMin, YMax float64

	// Width is the active zoom window width in seconds.
	Width float64

	// Spectra holds one spectrum per channel when the spectrum view is
	// enabled, nil otherwise. Spectra are recomputed from scratch each
	// tick and are not retained across drains.
	Spectra []dsp.Spectrum
}

// FrameSink consumes frames produced by the drain scheduler. Sinks run on
// the scheduler goroutine; a slow sink delays subsequent drains but never
// blocks the producer.
type FrameSink interface {
	HandleFrame(f *Frame) error
}

// FrameSinkFunc adapts a function to the FrameSink interface.
type FrameSinkFunc func(f *Frame) error

func (fn FrameSinkFunc) HandleFrame(f *Frame) error { return fn(f) }
