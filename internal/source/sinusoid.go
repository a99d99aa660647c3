package source

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/sigview/sigview/internal/scope"
)

const (
	defaultSinusoidRate      = 250
	defaultSinusoidFrequency = 0.5
	defaultSinusoidChannels  = 8
	defaultBatchSize         = 10
)

func init() {
	Register("sinusoid", NewSinusoid)
}

// Sinusoid produces one cosine per channel, phase-shifted evenly around
// the circle. It is the standard multi-channel test signal.
type Sinusoid struct {
	sc     *scope.Scope
	logger *slog.Logger

	rate      float64
	frequency float64
	channels  int
	batchSize int
	phases    []float64
}

// NewSinusoid builds the source and configures the scope with one label
// per channel carrying the phase offset in degrees.
func NewSinusoid(sc *scope.Scope, cfg Config, logger *slog.Logger) (scope.DataSource, error) {
	s := Sinusoid{
		sc:        sc,
		logger:    logger.With(slog.String("source", "sinusoid")),
		rate:      cfg.SampleRate,
		frequency: cfg.Frequency,
		channels:  cfg.Channels,
		batchSize: cfg.BatchSize,
	}
	if s.rate <= 0 {
		s.rate = defaultSinusoidRate
	}
	if s.frequency <= 0 {
		s.frequency = defaultSinusoidFrequency
	}
	if s.channels <= 0 {
		s.channels = defaultSinusoidChannels
	}
	if s.batchSize <= 0 {
		s.batchSize = defaultBatchSize
	}

	labels := make([]string, s.channels)
	s.phases = make([]float64, s.channels)
	for ch := 0; ch < s.channels; ch++ {
		s.phases[ch] = float64(ch) * 2 * math.Pi / float64(s.channels)
		labels[ch] = fmt.Sprintf("cos(2*Pi*f*t + %d)", int(math.Round(s.phases[ch]*360/(2*math.Pi))))
	}

	if err := sc.Configure(scope.Config{
		SampleRate: s.rate,
		Channels:   s.channels,
		Labels:     labels,
		FFTRef:     cfg.FFTRef,
	}); err != nil {
		return nil, fmt.Errorf("configuring scope: %w", err)
	}

	return &s, nil
}

// ProduceData generates batches at the nominal sample rate until Submit
// reports the scope has stopped. When one iteration takes at least its
// real-time budget the loop logs a falling-behind warning instead of
// sleeping; this is a performance signal, not a fault.
func (s *Sinusoid) ProduceData() {
	dt := 1 / s.rate
	budget := time.Duration(float64(s.batchSize) * dt * float64(time.Second))

	i := 0
	running := true
	for running {
		start := time.Now()

		batch := make([][]float64, s.batchSize)
		for n := range batch {
			t := float64(i) * dt
			sample := make([]float64, s.channels)
			for ch := range sample {
				sample[ch] = math.Cos(2*math.Pi*s.frequency*t + s.phases[ch])
			}
			batch[n] = sample
			i++
		}

		var err error
		if running, err = s.sc.Submit(batch); err != nil {
			s.logger.Error("submit failed", slog.Any("error", err))
			return
		}

		elapsed := time.Since(start)
		if elapsed >= budget {
			s.logger.Warn("producer falling behind",
				slog.Duration("elapsed", elapsed),
				slog.Duration("budget", budget))
			continue
		}
		time.Sleep(budget - elapsed)
	}
}
