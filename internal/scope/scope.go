// Package scope implements the core of a real-time scrolling signal
// visualization engine: a thread-safe sample ingest buffer fed by a single
// producer, a periodic drain scheduler, an append-only time series with a
// synthesized time axis, zoom-width window selection, optional spectrum
// analysis and automatic amplitude scaling.
package scope

import (
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/sigview/sigview/internal/dsp"
)

// DefaultRefreshInterval is the drain scheduler period, roughly 30 frames
// per second.
const DefaultRefreshInterval = 34 * time.Millisecond

// DataSource is the capability any external producer must implement. Its
// constructor receives the scope and must issue exactly one Configure
// call; ProduceData is a loop that repeatedly builds sample batches and
// calls Submit, terminating when Submit returns false. Cancellation is
// cooperative: there is no forced interruption, so stop latency is
// bounded by one producer iteration.
type DataSource interface {
	ProduceData()
}

// Config carries the per-session data collection parameters established by
// a data source.
type Config struct {
	// SampleRate is the nominal sample rate in samples per second.
	SampleRate float64

	// Channels is the number of scalar values per sample.
	Channels int

	// Labels are optional display labels, one per channel.
	Labels []string

	// Palette holds optional display colors, one per channel. When nil an
	// even-hue palette is generated.
	Palette []color.Color

	// FFTRef is the reference amplitude for dB normalization of the
	// spectrum view. Defaults to 1.0.
	FFTRef float64
}

// Option configures a Scope.
type Option func(*Scope)

// WithLogger sets the logger for the scope.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scope) {
		s.logger = logger.With(slog.String("component", "scope"))
	}
}

// WithRefreshInterval sets the drain scheduler period.
func WithRefreshInterval(d time.Duration) Option {
	return func(s *Scope) {
		if d > 0 {
			s.refresh = d
		}
	}
}

// WithSpectrum enables or disables the per-channel spectrum view.
func WithSpectrum(enabled bool) Option {
	return func(s *Scope) {
		s.spectrum = enabled
	}
}

// WithZoomWidths replaces the zoom width table. Widths must be in
// ascending order.
func WithZoomWidths(widths []float64) Option {
	return func(s *Scope) {
		if len(widths) > 0 {
			s.zoomWidths = widths
		}
	}
}

// WithInitialZoom sets the starting index into the zoom width table. Out
// of range values are clamped.
func WithInitialZoom(idx int) Option {
	return func(s *Scope) {
		s.zoomIdx = idx
	}
}

// WithMarginPolicy replaces the display margin policy.
func WithMarginPolicy(p MarginPolicy) Option {
	return func(s *Scope) {
		s.margin = p
	}
}

// WithSink registers a frame sink. Sinks are invoked in registration
// order on every nonempty drain tick.
func WithSink(sink FrameSink) Option {
	return func(s *Scope) {
		s.sinks = append(s.sinks, sink)
	}
}

// Scope is the ingestion, windowing and spectrum pipeline. Exactly two
// execution contexts touch it once started: the single producer goroutine
// calling Submit, and the drain scheduler goroutine. The ingest buffer is
// the only state shared between them.
type Scope struct {
	logger  *slog.Logger
	refresh time.Duration

	spectrum   bool
	zoomWidths []float64
	zoomIdx    int
	margin     MarginPolicy
	sinks      []FrameSink

	// Session parameters, set by Configure.
	samplerate float64
	channels   int
	labels     []string
	palette    []color.Color
	fftRef     float64
	configured bool

	buf *ingestBuffer

	// mu guards the consumer-side state below against concurrent zoom,
	// autoscale toggles and exports. It is never the producer's lock.
	mu     sync.Mutex
	series *series
	scale  *autoscale

	// Lifecycle. The producer goroutine is started at most once for the
	// lifetime of the Scope.
	lifeMu          sync.Mutex
	source          DataSource
	producerStarted bool
	producerDone    chan struct{}
	drainStop       chan struct{}
}

// New creates an unconfigured Scope. A data source must Configure it and
// be attached before Start.
func New(options ...Option) *Scope {
	s := Scope{
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		refresh:    DefaultRefreshInterval,
		zoomWidths: DefaultZoomWidths,
		zoomIdx:    defaultZoomIndex,
		margin:     DefaultMarginPolicy,
	}

	for _, option := range options {
		option(&s)
	}

	return &s
}

// Configure establishes the per-channel containers and resets all series,
// scale and buffer state. It is issued exactly once by the data source
// constructor, before any goroutine starts.
func (s *Scope) Configure(cfg Config) error {
	if cfg.SampleRate <= 0 {
		return fmt.Errorf("samplerate must be positive, got %v", cfg.SampleRate)
	}
	if cfg.Channels <= 0 {
		return fmt.Errorf("channel count must be positive, got %d", cfg.Channels)
	}
	if cfg.Labels != nil && len(cfg.Labels) != cfg.Channels {
		return fmt.Errorf("expected %d channel labels, got %d", cfg.Channels, len(cfg.Labels))
	}
	if cfg.Palette != nil && len(cfg.Palette) != cfg.Channels {
		return fmt.Errorf("expected %d palette colors, got %d", cfg.Channels, len(cfg.Palette))
	}
	if cfg.FFTRef < 0 {
		return fmt.Errorf("FFT reference amplitude must be positive, got %v", cfg.FFTRef)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.samplerate = cfg.SampleRate
	s.channels = cfg.Channels
	s.labels = cfg.Labels
	s.palette = cfg.Palette
	if s.palette == nil {
		s.palette = DefaultPalette(cfg.Channels)
	}
	s.fftRef = cfg.FFTRef
	if s.fftRef == 0 {
		s.fftRef = 1.0
	}

	s.buf = newIngestBuffer(cfg.Channels)
	s.series = newSeries(cfg.SampleRate, cfg.Channels, s.zoomWidths, s.zoomIdx)
	s.scale = newAutoscale(s.margin)
	s.configured = true

	s.logger.Info("scope configured",
		slog.Float64("samplerate", cfg.SampleRate),
		slog.Int("channels", cfg.Channels),
		slog.Bool("spectrum", s.spectrum))

	return nil
}

// AttachSource registers the producer. The source constructor must have
// configured the scope already; attaching before that fails with
// ErrCapabilityViolation before any goroutine starts.
func (s *Scope) AttachSource(src DataSource) error {
	if src == nil {
		return fmt.Errorf("attaching nil source: %w", ErrCapabilityViolation)
	}
	if !s.configured {
		return fmt.Errorf("source did not configure the scope: %w", ErrCapabilityViolation)
	}

	s.lifeMu.Lock()
	s.source = src
	s.lifeMu.Unlock()
	return nil
}

// AddSink registers a frame sink after construction. Must be called
// before Start; sinks are not safe to add while the drain scheduler runs.
func (s *Scope) AddSink(sink FrameSink) {
	s.sinks = append(s.sinks, sink)
}

// SampleRate returns the configured sample rate.
func (s *Scope) SampleRate() float64 { return s.samplerate }

// Channels returns the configured channel count.
func (s *Scope) Channels() int { return s.channels }

// Labels returns a copy of the configured channel labels, or nil when
// none were given.
func (s *Scope) Labels() []string {
	if s.labels == nil {
		return nil
	}
	return append([]string(nil), s.labels...)
}

// Submit adds a batch of samples from the data source. It is the only
// producer-facing call and is safe for use concurrently with the drain
// scheduler: the lock is held only for the appends and the flag read.
//
// An empty batch acts purely as a liveness poll. Every sample must have
// exactly one scalar per configured channel; a shorter or longer sample is
// a caller programming error reported as ErrShapeMismatch with nothing
// appended. The returned flag tells the producer whether to continue its
// loop.
func (s *Scope) Submit(samples [][]float64) (bool, error) {
	if !s.configured {
		return false, ErrNotConfigured
	}
	if len(samples) == 0 {
		return s.buf.isRunning(), nil
	}
	for _, sample := range samples {
		if len(sample) != s.channels {
			return false, fmt.Errorf("sample has %d values, scope has %d channels: %w",
				len(sample), s.channels, ErrShapeMismatch)
		}
	}
	return s.buf.append(samples), nil
}

// SubmitSample is the single-sample form of Submit.
func (s *Scope) SubmitSample(sample []float64) (bool, error) {
	return s.Submit([][]float64{sample})
}

// Start begins data collection: it lazily starts the producer goroutine
// (exactly once for the Scope's lifetime), raises the running flag and
// enables the drain scheduler. Without an attached source it is a no-op.
func (s *Scope) Start() {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()

	if s.source == nil || !s.configured {
		return
	}

	// Raise the flag before the producer's first Submit so the loop does
	// not observe a stale stop.
	s.buf.setRunning(true)

	if !s.producerStarted {
		s.producerStarted = true
		s.producerDone = make(chan struct{})
		go func() {
			defer close(s.producerDone)
			s.source.ProduceData()
		}()
		s.logger.Info("producer started")
	}

	if s.drainStop == nil {
		s.drainStop = make(chan struct{})
		go s.drainLoop(s.drainStop)
	}
}

// Stop lowers the running flag and blocks until the producer loop has
// observed it through its next Submit call and exited; shutdown latency is
// therefore at most one producer iteration. The drain scheduler is then
// disabled. Stop without a prior Start is a no-op.
func (s *Scope) Stop() {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()

	if !s.producerStarted {
		return
	}

	s.buf.setRunning(false)
	<-s.producerDone

	if s.drainStop != nil {
		close(s.drainStop)
		s.drainStop = nil
	}

	s.logger.Info("producer stopped")
}

// Running reports the cooperative run flag.
func (s *Scope) Running() bool {
	if !s.configured {
		return false
	}
	return s.buf.isRunning()
}

// Widen steps to the next larger visible window width; at the end of the
// table it is a no-op.
func (s *Scope) Widen() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.series != nil {
		s.series.widen()
	}
}

// Narrow steps to the next smaller visible window width; at the start of
// the table it is a no-op.
func (s *Scope) Narrow() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.series != nil {
		s.series.narrow()
	}
}

// Width returns the active visible window width in seconds.
func (s *Scope) Width() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.series == nil {
		return 0
	}
	return s.series.width()
}

// SetAutoscale toggles automatic amplitude scaling. Re-enabling recomputes
// the extrema over the entire retained series before incremental extension
// resumes; disabling freezes the last computed bounds.
func (s *Scope) SetAutoscale(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scale == nil {
		return
	}
	if enabled && !s.scale.enabled {
		if lo, hi, ok := s.seriesExtrema(); ok {
			s.scale.reset(lo, hi)
		}
	}
	s.scale.enabled = enabled
}

// Bounds returns the current vertical display bounds including the margin.
func (s *Scope) Bounds() (lo, hi float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scale == nil {
		return 0, 0
	}
	return s.scale.bounds()
}

// SeriesLen returns the number of retained samples per channel.
func (s *Scope) SeriesLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.series == nil {
		return 0
	}
	return s.series.length()
}

// Label returns the display label of a channel, synthesizing CHn when no
// labels were configured.
func (s *Scope) Label(ch int) string {
	if s.labels != nil {
		return s.labels[ch]
	}
	return fmt.Sprintf("CH%d", ch)
}

// drainLoop is the consumer execution context: a ticker at the refresh
// interval driving one drain per tick.
func (s *Scope) drainLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(s.refresh)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.drainTick()
		}
	}
}

// drainTick swaps the pending queues for empty ones and, when the drained
// batch is nonempty, extends the series, updates the scale and hands a
// frame to every sink. An empty drain performs no further work, bounding
// idle cost. No lock is held during windowing, FFT or sink work.
func (s *Scope) drainTick() {
	batch := s.buf.swap()
	if len(batch) == 0 || len(batch[0]) == 0 {
		return
	}

	s.mu.Lock()
	s.series.extend(batch)
	lo, hi := batchExtrema(batch)
	s.scale.observe(lo, hi)
	frame := s.buildFrame(batch)
	s.mu.Unlock()

	if s.spectrum {
		s.analyzeSpectra(frame)
	}

	for _, sink := range s.sinks {
		if err := sink.HandleFrame(frame); err != nil {
			s.logger.Error("frame sink failed", slog.Any("error", err))
		}
	}
}

// buildFrame assembles the renderable snapshot for one drained batch.
// Called with mu held; slices alias the append-only series storage.
func (s *Scope) buildFrame(batch [][]float64) *Frame {
	times, values := s.series.visible()
	ymin, ymax := s.scale.bounds()
	n := len(batch[0])
	total := s.series.length()

	f := Frame{
		Times:      times,
		Channels:   make([]ChannelFrame, s.channels),
		Batch:      batch,
		BatchTimes: s.series.times[total-n:],
		BatchStart: total - n,
		YMin:       ymin,
		YMax:       ymax,
		Width:      s.series.width(),
	}
	for ch := range f.Channels {
		f.Channels[ch] = ChannelFrame{
			Label:   s.Label(ch),
			Color:   s.palette[ch],
			Samples: values[ch],
		}
	}
	return &f
}

// analyzeSpectra recomputes the per-channel spectrum of the visible
// window. Failures are surfaced per computation and never corrupt the
// series.
func (s *Scope) analyzeSpectra(f *Frame) {
	if len(f.Times) < 2 {
		return
	}
	f.Spectra = make([]dsp.Spectrum, len(f.Channels))
	for ch := range f.Channels {
		sp, err := dsp.DBSpectrum(f.Channels[ch].Samples, s.samplerate, nil, s.fftRef)
		if err != nil {
			s.logger.Error("spectrum analysis failed",
				slog.Int("channel", ch), slog.Any("error", err))
			continue
		}
		f.Spectra[ch] = sp
	}
}

// seriesExtrema scans the entire retained series. Called with mu held.
func (s *Scope) seriesExtrema() (lo, hi float64, ok bool) {
	if s.series == nil || s.series.length() == 0 {
		return 0, 0, false
	}
	lo, hi = batchExtrema(s.series.values)
	return lo, hi, true
}

func batchExtrema(values [][]float64) (lo, hi float64) {
	first := true
	for _, channel := range values {
		for _, v := range channel {
			if first {
				lo, hi = v, v
				first = false
				continue
			}
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	return lo, hi
}
