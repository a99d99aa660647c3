package app

import (
	"math"
	"testing"

	"github.com/sigview/sigview/internal/storage"
)

func sineSeries(n int, fs, freq float64) *storage.SeriesData {
	sd := storage.SeriesData{
		Session: storage.SessionData{SampleRate: fs, Channels: 1},
		Values:  [][]float64{make([]float64, n)},
	}
	for i := 0; i < n; i++ {
		sd.Times = append(sd.Times, float64(i)/fs)
		sd.Values[0][i] = math.Sin(2 * math.Pi * freq * float64(i) / fs)
	}
	return &sd
}

func TestComputeSpectrogram_GridShape(t *testing.T) {
	series := sineSeries(1024, 256, 32)

	sd, err := computeSpectrogram(series, 0, 256, 0.5)
	if err != nil {
		t.Fatalf("computeSpectrogram failed: %v", err)
	}

	// 1024 samples, 256-sample segments with a 128-sample hop.
	if want := 7; len(sd.Rows) != want {
		t.Fatalf("expected %d segments, got %d", want, len(sd.Rows))
	}
	if want := 256/2 + 1; len(sd.Frequencies) != want {
		t.Fatalf("expected %d frequency bins, got %d", want, len(sd.Frequencies))
	}
	for i, row := range sd.Rows {
		if len(row) != len(sd.Frequencies) {
			t.Errorf("segment %d: %d magnitudes for %d bins", i, len(row), len(sd.Frequencies))
		}
	}
	if len(sd.Times) != len(sd.Rows) {
		t.Fatalf("expected %d segment timestamps, got %d", len(sd.Rows), len(sd.Times))
	}
	if sd.Times[1] != series.Times[128] {
		t.Errorf("expected second segment to start at %v, got %v", series.Times[128], sd.Times[1])
	}
}

func TestComputeSpectrogram_PeakAtSignalFrequency(t *testing.T) {
	series := sineSeries(1024, 256, 32)

	sd, err := computeSpectrogram(series, 0, 256, 0)
	if err != nil {
		t.Fatalf("computeSpectrogram failed: %v", err)
	}

	for seg, row := range sd.Rows {
		peak := 0
		for k, m := range row {
			if m > row[peak] {
				peak = k
			}
		}
		if sd.Frequencies[peak] != 32 {
			t.Errorf("segment %d: expected peak at 32 Hz, got %v Hz", seg, sd.Frequencies[peak])
		}
	}
}

func TestComputeSpectrogram_Validation(t *testing.T) {
	series := sineSeries(100, 256, 32)

	if _, err := computeSpectrogram(series, 1, 64, 0.5); err == nil {
		t.Error("expected error for out-of-range channel")
	}
	if _, err := computeSpectrogram(series, 0, 256, 0.5); err == nil {
		t.Error("expected error for series shorter than one segment")
	}
}

func TestPowerBounds_Percentiles(t *testing.T) {
	// A flat body of values with one extreme outlier: the outlier must not
	// dominate the bounds.
	row := make([]float64, 200)
	for i := range row {
		row[i] = -60
	}
	row[0] = 40

	bounds := powerBounds([][]float64{row})
	if bounds.Max > 0 {
		t.Errorf("outlier widened the bounds to %v dB", bounds.Max)
	}
	if bounds.Min > -60 {
		t.Errorf("bounds exclude the signal body: min %v dB", bounds.Min)
	}
}

func TestPowerBounds_IgnoresNonFinite(t *testing.T) {
	row := []float64{math.Inf(-1), math.NaN(), -50, -50}
	if bounds := powerBounds([][]float64{row}); bounds != defaultPowerBounds() {
		t.Errorf("expected default bounds for sparse data, got %+v", bounds)
	}
}

func TestColorMapper_Clamping(t *testing.T) {
	cm := NewColorMapper(GrayscaleTheme, PowerBounds{Min: -100, Max: 0})

	bottom := cm.GetColor(-500)
	if bottom != cm.GetColor(math.Inf(-1)) {
		t.Error("below-range and -Inf powers should map to the same color")
	}
	top := cm.GetColor(100)
	if top != cm.GetColor(math.Inf(1)) {
		t.Error("above-range and +Inf powers should map to the same color")
	}
	if bottom == top {
		t.Error("scale ends must differ")
	}
}
