// Package dsp converts time-domain sample windows into frequency-domain
// magnitude spectra for the scope's spectrum view.
package dsp

import (
	"errors"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

// ErrLengthMismatch is returned when an explicit window vector does not
// match the signal length.
var ErrLengthMismatch = errors.New("signal and window must be the same length")

// Spectrum is the frequency-domain view of one channel's visible window:
// bin center frequencies in Hz and magnitudes on a dB scale relative to
// the configured reference amplitude.
type Spectrum struct {
	Frequencies []float64
	Magnitudes  []float64
}

// Hann returns the Hann window coefficients of length n. This is the
// default analysis window.
func Hann(n int) []float64 {
	return window.NewValues(window.Hann, n)
}

// DBSpectrum computes the magnitude spectrum of a real signal in dB.
//
// The signal is multiplied elementwise by win (Hann of matching length
// when win is nil), transformed with a real-input FFT, and the one-sided
// magnitudes are scaled by 2/sum(win) before conversion to dB relative to
// ref. Frequencies are k*fs/N for each retained bin k.
//
// The transform is recomputed in full on every call; there is no plan
// caching, padding to a fixed size, or overlap aggregation.
func DBSpectrum(signal []float64, fs float64, win []float64, ref float64) (Spectrum, error) {
	n := len(signal)
	if n == 0 {
		return Spectrum{}, nil
	}
	if win == nil {
		win = Hann(n)
	}
	if len(win) != n {
		return Spectrum{}, ErrLengthMismatch
	}

	windowed := make([]float64, n)
	winSum := 0.0
	for i, v := range signal {
		windowed[i] = v * win[i]
		winSum += win[i]
	}

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, windowed)

	sp := Spectrum{
		Frequencies: make([]float64, len(coeffs)),
		Magnitudes:  make([]float64, len(coeffs)),
	}
	for k, c := range coeffs {
		sp.Frequencies[k] = float64(k) * fs / float64(n)

		// One-sided spectrum: double the magnitude and normalize by the
		// window sum.
		mag := cmplx.Abs(c) * 2 / winSum
		sp.Magnitudes[k] = 20 * math.Log10(mag/ref)
	}
	return sp, nil
}
