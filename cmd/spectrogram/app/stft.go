package app

import (
	"fmt"

	"github.com/sigview/sigview/internal/dsp"
	"github.com/sigview/sigview/internal/storage"
)

// SpectrogramData is the short-time spectral analysis of one captured
// channel: one dB magnitude row per analysis segment, all rows sharing the
// same frequency axis.
type SpectrogramData struct {
	// Rows holds one magnitude slice per segment, in time order.
	Rows [][]float64

	// Frequencies is the shared bin center axis in Hz.
	Frequencies []float64

	// Times holds the start timestamp of each segment.
	Times []float64
}

// computeSpectrogram slides a Hann-windowed analysis segment over the
// captured series and collects the per-segment spectra. The hop size is
// derived from the overlap fraction; a trailing partial segment is
// discarded.
func computeSpectrogram(series *storage.SeriesData, channel, fftSize int, overlap float64) (*SpectrogramData, error) {
	if channel >= series.Session.Channels {
		return nil, fmt.Errorf("session has %d channels, requested channel %d", series.Session.Channels, channel)
	}

	values := series.Values[channel]
	if len(values) < fftSize {
		return nil, fmt.Errorf("session holds %d samples, analysis needs at least %d", len(values), fftSize)
	}

	hop := int(float64(fftSize) * (1 - overlap))
	if hop < 1 {
		hop = 1
	}

	win := dsp.Hann(fftSize)
	sd := SpectrogramData{}
	for start := 0; start+fftSize <= len(values); start += hop {
		sp, err := dsp.DBSpectrum(values[start:start+fftSize], series.Session.SampleRate, win, 1)
		if err != nil {
			return nil, fmt.Errorf("analyzing segment at sample %d: %w", start, err)
		}
		if sd.Frequencies == nil {
			sd.Frequencies = sp.Frequencies
		}
		sd.Rows = append(sd.Rows, sp.Magnitudes)
		sd.Times = append(sd.Times, series.Times[start])
	}

	return &sd, nil
}
