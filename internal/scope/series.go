package scope

import "math"

// DefaultZoomWidths is the table of visible window widths in seconds, in
// ascending order from one microsecond to 500 seconds in a 1-2-5 sequence.
var DefaultZoomWidths = []float64{
	0.000001, 0.000002, 0.000005,
	0.000010, 0.000020, 0.000050,
	0.000100, 0.000200, 0.000500,
	0.001000, 0.002000, 0.005000,
	0.010000, 0.020000, 0.050000,
	0.100000, 0.200000, 0.500000,
	1.000000, 2.000000, 5.000000,
	10, 20, 50,
	100, 200, 500,
}

// defaultZoomIndex selects the 1 second width.
const defaultZoomIndex = 18

// minPlotSamples is the floor on the visible window size so that very
// narrow zoom widths still render a usable trace.
const minPlotSamples = 128

// series is the append-only per-channel time series with a synthesized
// monotonic time axis. Timestamps are never received from the producer:
// the first sample is at t=0 and each subsequent one advances by exactly
// dt = 1/samplerate. After every extend the value slices and the time axis
// have equal lengths. The series grows without bound for the lifetime of
// the session; there is deliberately no retention cap.
type series struct {
	dt         float64
	samplerate float64

	times  []float64
	values [][]float64

	widths   []float64
	widthIdx int
}

func newSeries(samplerate float64, channels int, widths []float64, widthIdx int) *series {
	if widthIdx < 0 {
		widthIdx = 0
	}
	if widthIdx > len(widths)-1 {
		widthIdx = len(widths) - 1
	}
	return &series{
		dt:         1 / samplerate,
		samplerate: samplerate,
		values:     make([][]float64, channels),
		widths:     widths,
		widthIdx:   widthIdx,
	}
}

// extend appends one drained batch. The batch is channel-major and every
// channel slice must have the same length n; n timestamps are synthesized
// continuing from the last stored time.
func (s *series) extend(batch [][]float64) {
	n := len(batch[0])
	if n == 0 {
		return
	}

	next := 0.0
	if len(s.times) > 0 {
		next = s.times[len(s.times)-1] + s.dt
	}
	for i := 0; i < n; i++ {
		s.times = append(s.times, next+float64(i)*s.dt)
	}
	for ch := range s.values {
		s.values[ch] = append(s.values[ch], batch[ch]...)
	}
}

func (s *series) length() int {
	return len(s.times)
}

// width returns the active visible window width in seconds.
func (s *series) width() float64 {
	return s.widths[s.widthIdx]
}

// plotSamples computes the number of stored points covered by the active
// zoom width at the configured samplerate, floored at minPlotSamples.
func (s *series) plotSamples() int {
	n := int(math.Round(s.width()*s.samplerate)) + 2
	if n < minPlotSamples {
		n = minPlotSamples
	}
	return n
}

// visibleRange returns the [lo, hi) index range of the visible window.
// The window is the trailing slice of the series sized from the zoom
// width; once the series has filled the window the most recent sample is
// dropped to avoid rendering an incomplete tail point. The resulting
// length is min(plotSamples-1, len(series)).
func (s *series) visibleRange() (lo, hi int) {
	n := len(s.times)
	p := s.plotSamples()
	if n < p {
		return 0, n
	}
	return n - p, n - 1
}

// visible returns the visible time axis and per-channel value slices.
// The returned slices alias the underlying series storage.
func (s *series) visible() (times []float64, values [][]float64) {
	lo, hi := s.visibleRange()
	values = make([][]float64, len(s.values))
	for ch := range s.values {
		values[ch] = s.values[ch][lo:hi]
	}
	return s.times[lo:hi], values
}

// widen moves to the next larger window width. Adjusting past the end of
// the table is a no-op, not an error.
func (s *series) widen() {
	if s.widthIdx < len(s.widths)-1 {
		s.widthIdx++
	}
}

// narrow moves to the next smaller window width, clamped at the start of
// the table.
func (s *series) narrow() {
	if s.widthIdx > 0 {
		s.widthIdx--
	}
}
