package configs

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	// Application settings
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose"`
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
	DataDir  string `mapstructure:"data_dir" yaml:"data_dir"`

	// Acquisition configuration
	Acquisition AcquisitionConfig `mapstructure:"acquisition" yaml:"acquisition"`

	// Record store configuration
	Store StoreConfig `mapstructure:"store" yaml:"store"`

	// Serve-mode configuration
	Server ServerConfig `mapstructure:"server" yaml:"server"`
}

// AcquisitionConfig contains sampling-run settings
type AcquisitionConfig struct {
	SampleCount      int           `mapstructure:"sample_count" yaml:"sample_count"`
	MinInterval      time.Duration `mapstructure:"min_interval" yaml:"min_interval"`
	TriggerMode      string        `mapstructure:"trigger_mode" yaml:"trigger_mode"`
	TriggerThreshold int           `mapstructure:"trigger_threshold" yaml:"trigger_threshold"`
}

// StoreConfig contains record store settings
type StoreConfig struct {
	Capacity int    `mapstructure:"capacity" yaml:"capacity"`
	Dir      string `mapstructure:"dir" yaml:"dir"`
}

// ServerConfig contains serve-mode settings
type ServerConfig struct {
	Listen          string        `mapstructure:"listen" yaml:"listen"`
	CaptureInterval time.Duration `mapstructure:"capture_interval" yaml:"capture_interval"`
}

// LoadConfig loads configuration from viper
func LoadConfig() (*Config, error) {
	config := &Config{}

	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}

	return config, nil
}

// ValidateConfig validates the configuration
func ValidateConfig(config *Config) error {
	acq := config.Acquisition
	if acq.SampleCount < 256 || acq.SampleCount&(acq.SampleCount-1) != 0 {
		return fmt.Errorf("acquisition sample count must be a power of two >= 256, got %d", acq.SampleCount)
	}

	if acq.MinInterval <= 0 {
		return fmt.Errorf("acquisition min interval must be positive")
	}

	switch acq.TriggerMode {
	case "self", "external":
	default:
		return fmt.Errorf("trigger mode must be self or external, got %q", acq.TriggerMode)
	}

	if acq.TriggerThreshold < 0 || acq.TriggerThreshold > 4095 {
		return fmt.Errorf("trigger threshold must be in [0, 4095], got %d", acq.TriggerThreshold)
	}

	if config.Store.Capacity < 1 {
		return fmt.Errorf("store capacity must be >= 1, got %d", config.Store.Capacity)
	}

	if config.Server.CaptureInterval < 0 {
		return fmt.Errorf("server capture interval cannot be negative")
	}

	return nil
}
