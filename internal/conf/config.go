// config.go: settings struct and functions to load application settings.
package conf

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

//go:embed config.yaml
var configFiles embed.FS

// LogConfig contains settings for a rotated log file.
type LogConfig struct {
	Enabled bool   // true to enable file logging
	Path    string // path to log file
}

// MainSettings contains application-wide settings.
type MainSettings struct {
	Name string    // name reported in logs
	Log  LogConfig // file log settings
}

// NASASettings contains the APOD API client settings.
type NASASettings struct {
	Endpoint   string // APOD API endpoint URL
	APIKey     string // NASA API key, DEMO_KEY works with a low rate limit
	Timeout    int    // HTTP timeout in seconds
	MaxRetries int    // number of fetch attempts before giving up
}

// WallpaperSettings controls the desktop background step.
type WallpaperSettings struct {
	Enabled bool   // false to skip setting the desktop background
	Mode    string // picture placement, e.g. "zoom" or "scaled"
}

// Settings contains all application settings.
type Settings struct {
	Debug bool // true to enable debug logging

	Main      MainSettings
	ImageDir  string // default image cache directory, overridden by --dir
	NASA      NASASettings
	Wallpaper WallpaperSettings
}

// Load reads the configuration file and environment variables into a Settings struct.
func Load() (*Settings, error) {
	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	return settings, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}

	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	// Environment overrides, e.g. APOD_NASA_APIKEY
	viper.SetEnvPrefix("apod")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set default values for each configuration parameter
	// function defined in defaults.go
	setDefaultConfig()

	err = viper.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// Config file not found, create config with defaults
			return createDefaultConfig()
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// createDefaultConfig creates a default config file and writes it to the default config path
func createDefaultConfig() error {
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	configPath := filepath.Join(configPaths[0], "config.yaml")
	defaultConfig := getDefaultConfig()

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	fmt.Println("Created default config file at:", configPath)
	return viper.ReadInConfig()
}

// getDefaultConfig reads the default configuration from the embedded config.yaml file.
func getDefaultConfig() string {
	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		log.Fatalf("Error reading config file: %v", err)
	}
	return string(data)
}

// ValidateSettings checks settings values that have a constrained domain.
func ValidateSettings(settings *Settings) error {
	if settings.NASA.Endpoint == "" {
		return fmt.Errorf("nasa.endpoint must not be empty")
	}
	if settings.NASA.Timeout <= 0 {
		return fmt.Errorf("nasa.timeout must be positive, got %d", settings.NASA.Timeout)
	}
	if settings.NASA.MaxRetries < 1 {
		return fmt.Errorf("nasa.maxretries must be at least 1, got %d", settings.NASA.MaxRetries)
	}
	return nil
}
