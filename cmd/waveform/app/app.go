package app

import (
	"fmt"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"

	"github.com/sigview/sigview/internal/storage"
)

// Run loads a captured session and renders its waveform image.
func Run(config *Config, logger *slog.Logger) error {
	if _, err := os.Stat(config.DBPath); err != nil && os.IsNotExist(err) {
		return fmt.Errorf("database file '%s' does not exist: %w", config.DBPath, err)
	}

	store, err := storage.New(config.DBPath)
	if err != nil {
		return fmt.Errorf("opening capture storage: %w", err)
	}
	defer store.Close()

	series, err := store.ReadSeries(config.SessionID)
	if err != nil {
		return fmt.Errorf("reading session %d: %w", config.SessionID, err)
	}

	if config.Verbose {
		logger.Info("session loaded",
			slog.Group("session",
				slog.Int64("id", series.Session.ID),
				slog.String("source", series.Session.SourceType),
				slog.Float64("samplerate", series.Session.SampleRate),
				slog.Int("channels", series.Session.Channels),
				slog.Int("samples", len(series.Times)),
			))
	}

	renderer := NewWaveformRenderer(RenderConfig{
		Width:    config.Width,
		Height:   config.Height,
		FontPath: config.FontPath,
		Annotate: !config.NoAnnotations,
	})

	logger.Info("rendering waveform",
		slog.Group("image",
			slog.String("destination", config.OutputFile),
			slog.String("format", string(config.Format)),
			slog.Int("width", config.Width),
			slog.Int("height", config.Height),
		))

	img, err := renderer.Render(series)
	if err != nil {
		return fmt.Errorf("rendering waveform: %w", err)
	}

	out, err := os.Create(config.OutputFile)
	if err != nil {
		return err
	}
	defer func() {
		if cErr := out.Close(); cErr != nil && err == nil {
			err = cErr
		}
	}()

	switch config.Format {
	case ImagePNG:
		err = png.Encode(out, img)

	case ImageJPEG:
		err = jpeg.Encode(out, img, &jpeg.Options{
			Quality: 98,
		})
	}
	return err
}
