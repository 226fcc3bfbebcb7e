// Package app wires the age detector together: models, capture loop and display surfaces.
package app

import (
	"fmt"
	"time"

	"github.com/teslashibe/agecam/internal/config"
	"github.com/teslashibe/agecam/pkg/capture"
)

// Age network backends.
const (
	BackendCaffe  = "caffe"
	BackendTFLite = "tflite"
)

// Config holds all configuration for the age detector application.
type Config struct {
	// Models
	ModelsDir  string // Directory holding the cascade and Caffe files
	AgeBackend string // "caffe" or "tflite"
	AgeModel   string // .tflite file, required for the tflite backend
	Threads    int    // TFLite interpreter threads (0 = library default)

	// Capture
	Device    int           // Camera index
	Interval  time.Duration // Tick period
	AutoStart bool          // Start capture without waiting for the Start button

	// Surfaces
	Addr   string // Dashboard listen address, empty disables the web surface
	Window bool   // Open a native OpenCV window

	// Debug
	Debug       bool
	DebugFrames bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		ModelsDir:  config.DefaultModelsDir,
		AgeBackend: BackendCaffe,
		Device:     config.DefaultDevice,
		Interval:   capture.DefaultConfig().Interval,
		Addr:       config.DefaultAddr,
	}
}

// LoadEnvConfig fills fields from environment variables.
// Call this before flag parsing so flags win.
func (c *Config) LoadEnvConfig() {
	c.ModelsDir = config.ModelsDir()
	c.Addr = config.Addr()
	c.Device = config.Device()
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.AgeBackend {
	case BackendCaffe:
	case BackendTFLite:
		if c.AgeModel == "" {
			return &ConfigError{Field: "AgeModel", Message: "--age-model is required for the tflite backend"}
		}
	default:
		return &ConfigError{Field: "AgeBackend", Message: fmt.Sprintf("unknown age backend %q", c.AgeBackend)}
	}
	if c.Device < 0 {
		return &ConfigError{Field: "Device", Message: "camera device index must be >= 0"}
	}
	if c.Interval < 0 {
		return &ConfigError{Field: "Interval", Message: "tick interval must be positive"}
	}
	if c.Addr == "" && !c.Window {
		return &ConfigError{Field: "Addr", Message: "no display surface: set --addr or --window"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}
