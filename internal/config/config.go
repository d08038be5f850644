// This file defines the configuration structure for the application.
package config

import (
	// use Viper for loading the config.yml file.
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration settings for the application.
// It maps directly to the structure of config.yml.
type Config struct {
	Port            int `mapstructure:"port"`
	RefreshInterval int `mapstructure:"refresh_interval"` // seconds; 0 disables background polling
	Backend         struct {
		BaseURL        string `mapstructure:"base_url"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	} `mapstructure:"backend"`
	Submit struct {
		RefreshDelayMs int `mapstructure:"refresh_delay_ms"` // settle time before the post-submit refresh
	} `mapstructure:"submit"`
	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"` // "console" or "json"
	} `mapstructure:"log"`
}

// Load reads configuration from a file named "config.yml" in the
// current directory and unmarshals it into a Config struct.
func Load() (*Config, error) {
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or "yaml"
	viper.AddConfigPath(".")      // looking for config in the current directory

	// --- Environment Variable Overrides ---
	// This tells Viper to look for environment variables with a "SKETCHTRAN_" prefix.
	// e.g., SKETCHTRAN_BACKEND_BASE_URL will override the `backend.base_url` key.
	viper.SetEnvPrefix("SKETCHTRAN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("port", 8080)
	viper.SetDefault("refresh_interval", 30)
	viper.SetDefault("backend.base_url", "http://localhost:9000")
	viper.SetDefault("backend.timeout_seconds", 30)
	viper.SetDefault("submit.refresh_delay_ms", 500)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; ignore error and use defaults
		} else {
			// Config file was found but another error was produced
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
