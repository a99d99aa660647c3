package app

import (
	"fmt"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"

	"github.com/sigview/sigview/internal/storage"
)

// Run loads a captured session and renders its spectrogram image.
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

	sd, err := computeSpectrogram(series, config.Channel, config.FFTSize, config.Overlap)
	if err != nil {
		return fmt.Errorf("analyzing session %d: %w", config.SessionID, err)
	}

	bounds := powerBounds(sd.Rows)
	if config.MinPower != nil {
		bounds.Min = *config.MinPower
	}
	if config.MaxPower != nil {
		bounds.Max = *config.MaxPower
	}

	if config.Verbose {
		logger.Info("analysis finished",
			slog.Group("stats",
				slog.Int("segments", len(sd.Rows)),
				slog.Int("bins", len(sd.Frequencies)),
				slog.String("minPower", fmt.Sprintf("%0.2fdB", bounds.Min)),
				slog.String("maxPower", fmt.Sprintf("%0.2fdB", bounds.Max)),
			))
	}

	logger.Info("rendering spectrogram",
		slog.Group("image",
			slog.String("destination", config.OutputFile),
			slog.String("format", string(config.Format)),
			slog.String("theme", string(config.Theme)),
			slog.Int("width", len(sd.Rows)),
			slog.Int("height", len(sd.Frequencies)),
		))

	img := renderSpectrogram(sd, NewColorMapper(config.Theme, bounds))

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
