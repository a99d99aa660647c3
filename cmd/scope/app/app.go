package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/sigview/sigview/internal/scope"
	"github.com/sigview/sigview/internal/source"
	"github.com/sigview/sigview/internal/storage"
)

const storageDir = "data"

// Run wires the scope, data source, capture store and CSV export together
// and runs until the context is cancelled or the configured duration
// elapses.
func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	options := []scope.Option{
		scope.WithLogger(logger),
		scope.WithSpectrum(config.Scope.Spectrum),
	}
	if config.Scope.RefreshMs > 0 {
		options = append(options, scope.WithRefreshInterval(time.Duration(config.Scope.RefreshMs)*time.Millisecond))
	}

	sc := scope.New(options...)

	src, err := source.New(config.Source.Type, sc, config.Source.Config, logger)
	if err != nil {
		return fmt.Errorf("creating data source: %w", err)
	}
	if err = sc.AttachSource(src); err != nil {
		return fmt.Errorf("attaching data source: %w", err)
	}

	if config.Capture.Enabled {
		store, sErr := createStorage(&config.Capture)
		if sErr != nil {
			return fmt.Errorf("creating capture storage: %w", sErr)
		}
		defer func() {
			if cErr := store.Close(); cErr != nil {
				logger.Error("closing capture storage", slog.Any("error", cErr))
			}
		}()

		sessionID, sErr := store.CreateSession(config.Source.Type,
			sc.SampleRate(), sc.Channels(), sc.Labels(), config.Source)
		if sErr != nil {
			return fmt.Errorf("creating capture session: %w", sErr)
		}
		logger.Info("capture session created", slog.Int64("session", sessionID))

		var sinkOptions []func(*storage.CaptureSink)
		if config.Capture.MaxBatchSize > 0 {
			sinkOptions = append(sinkOptions, storage.WithMaxBatchSize(config.Capture.MaxBatchSize))
		}
		sc.AddSink(storage.NewCaptureSink(store, sessionID, sinkOptions...))
	}

	if config.Settings.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(config.Settings.Duration))
		defer cancel()
	}

	sc.Start()
	<-ctx.Done()
	sc.Stop()

	logger.Info("collection finished", slog.Int("samples", sc.SeriesLen()))

	if config.Export.CSVPath != "" {
		if err = exportCSV(sc, config.Export.CSVPath); err != nil {
			return fmt.Errorf("exporting CSV: %w", err)
		}
		logger.Info("series exported", slog.String("path", config.Export.CSVPath))
	}

	return nil
}

func exportCSV(sc *scope.Scope, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer func() {
		if cErr := f.Close(); cErr != nil && err == nil {
			err = fmt.Errorf("closing export file: %w", cErr)
		}
	}()

	return sc.WriteCSV(f)
}

func createStorage(config *CaptureConfig) (*storage.Store, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current working directory: %w", err)
	}

	dbPath := filepath.Join(wd, storageDir)
	if config.DataDirectory != "" {
		dbPath = filepath.Join(wd, config.DataDirectory)
	}

	stat, err := os.Stat(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("storage directory '%s' does not exist: %w", dbPath, err)
		}
		return nil, fmt.Errorf("inspecting storage directory '%s': %w", dbPath, err)
	}
	if !stat.IsDir() {
		return nil, fmt.Errorf("invalid storage directory '%s'", dbPath)
	}

	dbPath = filepath.Join(dbPath, fmt.Sprintf("scope_session_%s.sqlite", time.Now().UTC().Format("20060102_150405")))
	store, err := storage.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("creating storage: %w", err)
	}

	return store, nil
}
