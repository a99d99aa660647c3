package scope

import (
	"math"
	"testing"
)

func extendN(s *series, n int, start float64) {
	batch := make([][]float64, len(s.values))
	for ch := range batch {
		batch[ch] = make([]float64, n)
		for i := range batch[ch] {
			batch[ch][i] = start + float64(i)
		}
	}
	s.extend(batch)
}

func TestSeries_SynthesizedTimestamps(t *testing.T) {
	s := newSeries(250, 2, DefaultZoomWidths, defaultZoomIndex)

	extendN(s, 10, 0)
	if s.length() != 10 {
		t.Fatalf("expected series length 10, got %d", s.length())
	}

	dt := 0.004
	for i, tv := range s.times {
		want := float64(i) * dt
		if math.Abs(tv-want) > 1e-12 {
			t.Errorf("timestamp %d: expected %v, got %v", i, want, tv)
		}
	}
	if last := s.times[len(s.times)-1]; math.Abs(last-9*dt) > 1e-12 {
		t.Errorf("expected last timestamp %v, got %v", 9*dt, last)
	}

	// A second batch continues from the last stored time plus dt.
	extendN(s, 5, 10)
	if s.length() != 15 {
		t.Fatalf("expected series length 15, got %d", s.length())
	}
	for i := 10; i < 15; i++ {
		want := float64(i) * dt
		if math.Abs(s.times[i]-want) > 1e-12 {
			t.Errorf("timestamp %d: expected %v, got %v", i, want, s.times[i])
		}
	}
}

func TestSeries_ValueLengthsMatchTimeAxis(t *testing.T) {
	s := newSeries(100, 3, DefaultZoomWidths, defaultZoomIndex)

	for _, n := range []int{1, 7, 128, 3} {
		extendN(s, n, 0)
		for ch := range s.values {
			if len(s.values[ch]) != len(s.times) {
				t.Fatalf("channel %d: %d values for %d timestamps", ch, len(s.values[ch]), len(s.times))
			}
		}
	}
}

func TestSeries_PlotSamplesFloor(t *testing.T) {
	// Every zoom width must yield at least the minimum window size, even
	// at the microsecond end of the table.
	s := newSeries(250, 1, DefaultZoomWidths, 0)
	for idx := range DefaultZoomWidths {
		s.widthIdx = idx
		if p := s.plotSamples(); p < minPlotSamples {
			t.Errorf("width %v: plotSamples %d below floor %d", DefaultZoomWidths[idx], p, minPlotSamples)
		}
	}

	// Wide windows scale with samplerate.
	s.widthIdx = len(DefaultZoomWidths) - 1 // 500 s
	if p := s.plotSamples(); p != 500*250+2 {
		t.Errorf("expected plotSamples %d, got %d", 500*250+2, p)
	}
}

func TestSeries_VisibleWindowLength(t *testing.T) {
	tests := []struct {
		name       string
		samplerate float64
		extend     []int
		wantLen    int
	}{
		{"shorter than window", 250, []int{10}, 10},
		{"exactly at window", 250, []int{252}, 251},
		{"longer than window", 250, []int{300}, 251},
		{"incremental growth", 250, []int{100, 100, 100}, 251},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newSeries(tc.samplerate, 1, DefaultZoomWidths, defaultZoomIndex) // 1 s window
			for _, n := range tc.extend {
				extendN(s, n, 0)
			}

			p := s.plotSamples()
			wantLen := min(p-1, s.length())
			if wantLen != tc.wantLen {
				t.Fatalf("test case is inconsistent: min(%d, %d) != %d", p-1, s.length(), tc.wantLen)
			}

			times, values := s.visible()
			if len(times) != tc.wantLen {
				t.Errorf("expected visible length %d, got %d", tc.wantLen, len(times))
			}
			for ch := range values {
				if len(values[ch]) != len(times) {
					t.Errorf("channel %d: visible values %d != times %d", ch, len(values[ch]), len(times))
				}
			}
		})
	}
}

func TestSeries_VisibleDropsTailWhenFull(t *testing.T) {
	s := newSeries(250, 1, DefaultZoomWidths, defaultZoomIndex)
	extendN(s, 300, 0)

	times, _ := s.visible()
	if last := times[len(times)-1]; last != s.times[s.length()-2] {
		t.Errorf("visible window should end one sample before the series tail: got %v, want %v",
			last, s.times[s.length()-2])
	}
}

func TestSeries_ZoomClamping(t *testing.T) {
	s := newSeries(250, 1, DefaultZoomWidths, 0)

	// Narrowing past the first index stays put, no fault.
	for i := 0; i < len(DefaultZoomWidths)*2; i++ {
		s.narrow()
	}
	if s.widthIdx != 0 {
		t.Errorf("expected width index 0 after repeated narrow, got %d", s.widthIdx)
	}
	if s.width() != DefaultZoomWidths[0] {
		t.Errorf("expected width %v, got %v", DefaultZoomWidths[0], s.width())
	}

	// Widening past the last index clamps there.
	for i := 0; i < len(DefaultZoomWidths)*2; i++ {
		s.widen()
	}
	if s.widthIdx != len(DefaultZoomWidths)-1 {
		t.Errorf("expected width index %d after repeated widen, got %d", len(DefaultZoomWidths)-1, s.widthIdx)
	}
}
