// This test file verifies the configuration loading logic using Viper.

package config

import (
	"os"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Defaults when no config file", func(t *testing.T) {
		// Ensure no config file exists for this test
		os.Remove("config.yml")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() returned an error: %v", err)
		}

		// Check if default values are set
		if cfg.Port != 8080 {
			t.Errorf("Expected default port 8080, got %d", cfg.Port)
		}
		if cfg.Backend.BaseURL != "http://localhost:9000" {
			t.Errorf("Expected default backend base URL, got '%s'", cfg.Backend.BaseURL)
		}
		if cfg.Backend.TimeoutSeconds != 30 {
			t.Errorf("Expected default backend timeout of 30s, got %d", cfg.Backend.TimeoutSeconds)
		}
	})

	t.Run("Loads from config file", func(t *testing.T) {
		// Create a temporary config file for this test
		configContent := `
port: 9999
refresh_interval: 0
backend:
  base_url: "https://drawings.example.com/api"
unknown_setting: "should be ignored"
`
		// Create the config file in the current directory so Viper can find it.
		// Note: `t.TempDir()` is not used here because Viper looks in the CWD.
		configPath := "config.yml"
		if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
			t.Fatalf("Failed to write test config file: %v", err)
		}
		// Clean up the file after the test
		defer os.Remove(configPath)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() returned an error: %v", err)
		}

		// Check if values from the file were loaded
		if cfg.Port != 9999 {
			t.Errorf("Expected port 9999, got %d", cfg.Port)
		}
		if cfg.RefreshInterval != 0 {
			t.Errorf("Expected refresh interval 0, got %d", cfg.RefreshInterval)
		}
		if cfg.Backend.BaseURL != "https://drawings.example.com/api" {
			t.Errorf("Expected backend base URL from file, got '%s'", cfg.Backend.BaseURL)
		}
		if cfg.Backend.TimeoutSeconds != 30 {
			t.Errorf("Expected default backend timeout of 30s, got %d", cfg.Backend.TimeoutSeconds)
		}
	})
}
