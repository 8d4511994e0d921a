package config

import (
	"os"
	"strconv"

	"winefit/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Data   DataConfig
	Output OutputConfig
	Study  StudyConfig
}

// DataConfig holds dataset input settings
type DataConfig struct {
	Path string
}

// OutputConfig holds report output settings
type OutputConfig struct {
	Dir   string
	Title string
}

// StudyConfig holds the tunable analysis parameters
type StudyConfig struct {
	Seed         int64
	TrainSize    int
	Alpha        float64
	VIFThreshold float64
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Data: DataConfig{
			Path: getEnvOrDefault("WINEFIT_DATA", "data/winequality-red.csv"),
		},
		Output: OutputConfig{
			Dir:   getEnvOrDefault("WINEFIT_OUT", "out"),
			Title: getEnvOrDefault("WINEFIT_TITLE", "Red Wine Quality Analysis"),
		},
		Study: StudyConfig{
			Seed:         getEnvInt64OrDefault("WINEFIT_SEED", 42),
			TrainSize:    getEnvIntOrDefault("WINEFIT_TRAIN_SIZE", 800),
			Alpha:        getEnvFloatOrDefault("WINEFIT_ALPHA", 0.05),
			VIFThreshold: getEnvFloatOrDefault("WINEFIT_VIF_THRESHOLD", 5.0),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Data.Path == "" {
		return errors.ConfigInvalid("dataset path is required")
	}
	if config.Output.Dir == "" {
		return errors.ConfigInvalid("output directory is required")
	}
	if config.Study.TrainSize < 1 {
		return errors.ConfigInvalid("train size must be positive")
	}
	if config.Study.Alpha <= 0 || config.Study.Alpha >= 1 {
		return errors.ConfigInvalid("alpha must be in (0, 1)")
	}
	if config.Study.VIFThreshold <= 1 {
		return errors.ConfigInvalid("VIF threshold must exceed 1")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
