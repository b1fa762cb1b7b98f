// conf/defaults.go default values for settings
package conf

import (
	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "apod-desktop")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "logs/apod.log")

	viper.SetDefault("imagedir", "")

	viper.SetDefault("nasa.endpoint", "https://api.nasa.gov/planetary/apod")
	viper.SetDefault("nasa.apikey", "DEMO_KEY")
	viper.SetDefault("nasa.timeout", 30)
	viper.SetDefault("nasa.maxretries", 3)

	viper.SetDefault("wallpaper.enabled", true)
	viper.SetDefault("wallpaper.mode", "zoom")
}
