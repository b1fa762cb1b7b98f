package main

import (
	"log/slog"
	"os"

	"github.com/jmurphy/apod-desktop/cmd"
	"github.com/jmurphy/apod-desktop/internal/conf"
	"github.com/jmurphy/apod-desktop/internal/logging"
)

func main() {
	logging.Init()

	settings, err := conf.Load()
	if err != nil {
		logging.Fatal("Error loading settings", "error", err)
	}

	// Optional file logger for the whole run. The log level follows the
	// default logger, so --debug raises it too.
	var closeLogger func() error
	if settings.Main.Log.Enabled {
		var mainLogger *slog.Logger
		mainLogger, closeLogger, err = logging.NewFileLogger(settings.Main.Log.Path, settings.Main.Name, logging.DefaultLevel())
		if err != nil {
			logging.Warn("Failed to initialize file logger", "path", settings.Main.Log.Path, "error", err)
		} else {
			mainLogger.Info("Starting run")
		}
	}

	rootCmd := cmd.RootCommand(settings)
	execErr := rootCmd.Execute()

	// os.Exit skips deferred calls, close the log writer explicitly.
	if closeLogger != nil {
		_ = closeLogger()
	}
	if execErr != nil {
		os.Exit(1)
	}
}
