package main

import (
	"log/slog"
	"os"

	"github.com/sigview/sigview/cmd/spectrogram/app"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	config, err := app.NewConfigFromCLI()
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}

	if err = app.Run(config, logger); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}
