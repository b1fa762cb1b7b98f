package cmd

import (
	"fmt"
	"log/slog"

	"github.com/jmurphy/apod-desktop/cmd/fetch"
	"github.com/jmurphy/apod-desktop/cmd/history"
	"github.com/jmurphy/apod-desktop/cmd/verify"
	"github.com/jmurphy/apod-desktop/internal/apod"
	"github.com/jmurphy/apod-desktop/internal/conf"
	"github.com/jmurphy/apod-desktop/internal/imagecache"
	"github.com/jmurphy/apod-desktop/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "apod-desktop",
		Short: "Fetch NASA's Astronomy Picture of the Day and set it as desktop background",
	}

	// Set up the global flags for the root command.
	setupFlags(rootCmd, settings)

	// Runs after cobra has parsed the flags, so --debug is visible here.
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if settings.Debug {
			level = slog.LevelDebug
		}
		logging.SetLevel(level)
		apod.SetLogLevel(level)
		imagecache.SetLogLevel(level)

		if configPath, err := conf.FindConfigFile(); err == nil {
			logging.Debug("Using config file", "path", configPath)
		}
		return nil
	}

	subcommands := []*cobra.Command{
		fetch.Command(settings),
		history.Command(settings),
		verify.Command(settings),
	}

	rootCmd.AddCommand(subcommands...)

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.ImageDir, "dir", viper.GetString("imagedir"), "Directory in which APOD images are stored")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
