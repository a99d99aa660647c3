package scope

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

func configuredScope(t *testing.T, samplerate float64, channels int, options ...Option) *Scope {
	t.Helper()

	s := New(options...)
	if err := s.Configure(Config{SampleRate: samplerate, Channels: channels}); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	return s
}

func submitRamp(t *testing.T, s *Scope, n int) {
	t.Helper()

	batch := make([][]float64, n)
	for i := range batch {
		sample := make([]float64, s.Channels())
		for ch := range sample {
			sample[ch] = float64(i + ch)
		}
		batch[i] = sample
	}
	if _, err := s.Submit(batch); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
}

func TestScope_ConfigureValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero samplerate", Config{SampleRate: 0, Channels: 1}},
		{"negative samplerate", Config{SampleRate: -250, Channels: 1}},
		{"zero channels", Config{SampleRate: 250, Channels: 0}},
		{"label count mismatch", Config{SampleRate: 250, Channels: 2, Labels: []string{"only one"}}},
		{"negative FFT reference", Config{SampleRate: 250, Channels: 1, FFTRef: -1}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := New().Configure(tc.cfg); err == nil {
				t.Error("expected configuration error")
			}
		})
	}
}

func TestScope_SubmitExtendsSeries(t *testing.T) {
	s := configuredScope(t, 250, 2)

	submitRamp(t, s, 10)
	s.drainTick()

	if got := s.SeriesLen(); got != 10 {
		t.Fatalf("expected series length 10, got %d", got)
	}

	dt := 1.0 / 250
	if math.Abs(dt-0.004) > 1e-15 {
		t.Fatalf("unexpected dt: %v", dt)
	}
	for i, tv := range s.series.times {
		if want := float64(i) * dt; math.Abs(tv-want) > 1e-12 {
			t.Errorf("timestamp %d: expected %v, got %v", i, want, tv)
		}
	}
	if last := s.series.times[9]; math.Abs(last-9*0.004) > 1e-12 {
		t.Errorf("expected last timestamp %v, got %v", 9*0.004, last)
	}
}

func TestScope_EmptySubmitIsLivenessPoll(t *testing.T) {
	s := configuredScope(t, 250, 2)

	running, err := s.Submit(nil)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if running {
		t.Error("expected running=false before Start")
	}

	s.buf.setRunning(true)
	running, err = s.Submit([][]float64{})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if !running {
		t.Error("expected running=true after flag raised")
	}

	s.drainTick()
	if got := s.SeriesLen(); got != 0 {
		t.Errorf("liveness poll mutated the series: length %d", got)
	}
}

func TestScope_ShapeMismatch(t *testing.T) {
	s := configuredScope(t, 250, 2)

	_, err := s.Submit([][]float64{{1, 2}, {1, 2, 3}})
	if !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}

	// The failed batch must not be partially staged.
	s.drainTick()
	if got := s.SeriesLen(); got != 0 {
		t.Errorf("expected empty series after rejected batch, got length %d", got)
	}
}

func TestScope_SubmitBeforeConfigure(t *testing.T) {
	if _, err := New().Submit([][]float64{{1}}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestScope_EmptyDrainSkipsWork(t *testing.T) {
	frames := 0
	s := New(WithSink(FrameSinkFunc(func(*Frame) error {
		frames++
		return nil
	})))
	if err := s.Configure(Config{SampleRate: 250, Channels: 1}); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}

	s.drainTick()
	s.drainTick()
	if frames != 0 {
		t.Errorf("empty drains produced %d frames", frames)
	}

	submitRamp(t, s, 5)
	s.drainTick()
	if frames != 1 {
		t.Errorf("expected 1 frame, got %d", frames)
	}
}

func TestScope_AutoscaleLifecycle(t *testing.T) {
	s := configuredScope(t, 250, 1)

	if _, err := s.Submit([][]float64{{-1}, {1}}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	s.drainTick()

	lo, hi := s.Bounds()
	if lo != -2 || hi != 2 {
		t.Fatalf("expected bounds [-2, 2], got [%v, %v]", lo, hi)
	}

	// Freeze, then submit a new global maximum: displayed bounds stay.
	s.SetAutoscale(false)
	if _, err := s.Submit([][]float64{{100}}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	s.drainTick()

	if lo2, hi2 := s.Bounds(); lo2 != lo || hi2 != hi {
		t.Errorf("frozen bounds changed: [%v, %v] -> [%v, %v]", lo, hi, lo2, hi2)
	}

	// Re-enabling recomputes over the entire retained series.
	s.SetAutoscale(true)
	_, hi3 := s.Bounds()
	if hi3 <= hi {
		t.Errorf("expected re-enabled ymax to cover retained maximum, got %v", hi3)
	}
}

func TestScope_ZoomAdjustmentsClamp(t *testing.T) {
	s := configuredScope(t, 250, 1)

	for i := 0; i < len(DefaultZoomWidths)*2; i++ {
		s.Narrow()
	}
	if w := s.Width(); w != DefaultZoomWidths[0] {
		t.Errorf("expected narrowest width %v, got %v", DefaultZoomWidths[0], w)
	}

	for i := 0; i < len(DefaultZoomWidths)*2; i++ {
		s.Widen()
	}
	if w := s.Width(); w != DefaultZoomWidths[len(DefaultZoomWidths)-1] {
		t.Errorf("expected widest width %v, got %v", DefaultZoomWidths[len(DefaultZoomWidths)-1], w)
	}
}

// loopSource submits a fixed batch until the scope tells it to stop.
type loopSource struct {
	s     *Scope
	iters int
}

func (l *loopSource) ProduceData() {
	for {
		running, err := l.s.Submit([][]float64{{1}, {2}})
		if err != nil || !running {
			return
		}
		l.iters++
		time.Sleep(time.Millisecond)
	}
}

func TestScope_StartStopLifecycle(t *testing.T) {
	s := configuredScope(t, 250, 1, WithRefreshInterval(2*time.Millisecond))

	src := &loopSource{s: s}
	if err := s.AttachSource(src); err != nil {
		t.Fatalf("AttachSource failed: %v", err)
	}

	s.Start()
	if !s.Running() {
		t.Fatal("expected running=true after Start")
	}

	deadline := time.After(2 * time.Second)
	for s.SeriesLen() == 0 {
		select {
		case <-deadline:
			t.Fatal("drain scheduler never extended the series")
		case <-time.After(5 * time.Millisecond):
		}
	}

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not join the producer")
	}

	if s.Running() {
		t.Error("expected running=false after Stop")
	}
	if running, _ := s.Submit(nil); running {
		t.Error("liveness poll should report false after Stop")
	}

	// Restart re-enables the scheduler but never restarts the producer
	// goroutine.
	s.Start()
	if !s.Running() {
		t.Error("expected running=true after restart")
	}
	s.Stop()
}

func TestScope_StopWithoutStartIsNoop(t *testing.T) {
	s := configuredScope(t, 250, 1)
	s.Stop() // must not block or panic
}

func TestScope_StartWithoutSourceIsNoop(t *testing.T) {
	s := configuredScope(t, 250, 1)
	s.Start()
	if s.Running() {
		t.Error("Start without a source should not raise the running flag")
	}
}

func TestScope_AttachSourceContract(t *testing.T) {
	if err := New().AttachSource(&loopSource{}); !errors.Is(err, ErrCapabilityViolation) {
		t.Errorf("expected ErrCapabilityViolation for unconfigured scope, got %v", err)
	}
	if err := configuredScope(t, 250, 1).AttachSource(nil); !errors.Is(err, ErrCapabilityViolation) {
		t.Errorf("expected ErrCapabilityViolation for nil source, got %v", err)
	}
}

func TestScope_SpectrumFrames(t *testing.T) {
	var got *Frame
	s := New(
		WithSpectrum(true),
		WithSink(FrameSinkFunc(func(f *Frame) error {
			got = f
			return nil
		})))
	if err := s.Configure(Config{SampleRate: 250, Channels: 2}); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}

	submitRamp(t, s, 64)
	s.drainTick()

	if got == nil {
		t.Fatal("sink received no frame")
	}
	if len(got.Spectra) != 2 {
		t.Fatalf("expected 2 spectra, got %d", len(got.Spectra))
	}
	for ch, sp := range got.Spectra {
		if len(sp.Frequencies) == 0 || len(sp.Frequencies) != len(sp.Magnitudes) {
			t.Errorf("channel %d: malformed spectrum (%d freqs, %d magnitudes)",
				ch, len(sp.Frequencies), len(sp.Magnitudes))
		}
	}
}

func TestScope_WriteCSV(t *testing.T) {
	s := New()
	err := s.Configure(Config{
		SampleRate: 250,
		Channels:   2,
		Labels:     []string{"left", "right"},
	})
	if err != nil {
		t.Fatalf("Configure failed: %v", err)
	}

	if _, err = s.Submit([][]float64{{1, 10}, {2, 20}}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	s.drainTick()

	var buf bytes.Buffer
	if err = s.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "Time,left,right" {
		t.Errorf("unexpected header: %q", lines[0])
	}
	if lines[1] != "0,1,10" {
		t.Errorf("unexpected first row: %q", lines[1])
	}
	if lines[2] != "0.004,2,20" {
		t.Errorf("unexpected second row: %q", lines[2])
	}
}

func TestScope_WriteCSVDefaultLabels(t *testing.T) {
	s := configuredScope(t, 250, 2)

	var buf bytes.Buffer
	if err := s.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "Time,CH0,CH1" {
		t.Errorf("unexpected header for unlabeled channels: %q", got)
	}
}
