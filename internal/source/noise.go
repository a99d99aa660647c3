package source

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/sigview/sigview/internal/scope"
)

const (
	defaultNoiseRate     = 250
	defaultNoiseChannels = 1
)

func init() {
	Register("noise", NewWhiteNoise)
}

// WhiteNoise produces gaussian white noise on every channel, useful for
// exercising autoscale and the spectrum view with a flat spectrum.
type WhiteNoise struct {
	sc     *scope.Scope
	logger *slog.Logger

	rate      float64
	channels  int
	batchSize int
}

// NewWhiteNoise builds the source and configures the scope.
func NewWhiteNoise(sc *scope.Scope, cfg Config, logger *slog.Logger) (scope.DataSource, error) {
	s := WhiteNoise{
		sc:        sc,
		logger:    logger.With(slog.String("source", "noise")),
		rate:      cfg.SampleRate,
		channels:  cfg.Channels,
		batchSize: cfg.BatchSize,
	}
	if s.rate <= 0 {
		s.rate = defaultNoiseRate
	}
	if s.channels <= 0 {
		s.channels = defaultNoiseChannels
	}
	if s.batchSize <= 0 {
		s.batchSize = defaultBatchSize
	}

	if err := sc.Configure(scope.Config{
		SampleRate: s.rate,
		Channels:   s.channels,
		FFTRef:     cfg.FFTRef,
	}); err != nil {
		return nil, fmt.Errorf("configuring scope: %w", err)
	}

	return &s, nil
}

// ProduceData generates normally distributed batches at the nominal rate
// until Submit reports the scope has stopped.
func (s *WhiteNoise) ProduceData() {
	dt := 1 / s.rate
	budget := time.Duration(float64(s.batchSize) * dt * float64(time.Second))

	running := true
	for running {
		start := time.Now()

		batch := make([][]float64, s.batchSize)
		for n := range batch {
			sample := make([]float64, s.channels)
			for ch := range sample {
				sample[ch] = rand.NormFloat64()
			}
			batch[n] = sample
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
