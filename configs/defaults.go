package configs

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// SetDefaults installs the default configuration values into viper
func SetDefaults() {
	// Application defaults
	viper.SetDefault("verbose", false)
	viper.SetDefault("log_level", "info")

	home, _ := os.UserHomeDir()
	viper.SetDefault("data_dir", filepath.Join(home, ".local", "share", "vibrascope"))

	// Acquisition defaults: 1024 samples gated at 5ms for a nominal
	// 200 Hz rate
	viper.SetDefault("acquisition.sample_count", 1024)
	viper.SetDefault("acquisition.min_interval", 5*time.Millisecond)
	viper.SetDefault("acquisition.trigger_mode", "self")
	viper.SetDefault("acquisition.trigger_threshold", 4000)

	// Store defaults
	viper.SetDefault("store.capacity", 30)
	viper.SetDefault("store.dir", "")

	// Server defaults
	viper.SetDefault("server.listen", ":8790")
	viper.SetDefault("server.capture_interval", 30*time.Second)
}

// Default returns the default configuration
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Verbose:  false,
		LogLevel: "info",
		DataDir:  filepath.Join(home, ".local", "share", "vibrascope"),
		Acquisition: AcquisitionConfig{
			SampleCount:      1024,
			MinInterval:      5 * time.Millisecond,
			TriggerMode:      "self",
			TriggerThreshold: 4000,
		},
		Store: StoreConfig{
			Capacity: 30,
		},
		Server: ServerConfig{
			Listen:          ":8790",
			CaptureInterval: 30 * time.Second,
		},
	}
}

// StoreDir resolves the record store directory: the explicit store.dir
// when set, otherwise <data_dir>/records
func (c *Config) StoreDir() string {
	if c.Store.Dir != "" {
		return c.Store.Dir
	}
	return filepath.Join(c.DataDir, "records")
}

// WriteDefault writes the default configuration as YAML to path,
// refusing to overwrite an existing file
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("marshaling default configuration: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
