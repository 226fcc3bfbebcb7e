// Package camera opens the webcam and holds its runtime-configurable settings.
package camera

// Config holds all camera configuration parameters.
// These can be modified via the camera API and apply on the next start.
type Config struct {
	// Device is the capture index handed to OpenCV (0 = default camera).
	Device int `json:"device"`

	// === Resolution ===
	// Zero keeps whatever the driver negotiates.
	Width     int `json:"width"`     // Frame width in pixels
	Height    int `json:"height"`    // Frame height in pixels
	Framerate int `json:"framerate"` // Requested FPS

	// Quality is the JPEG quality (1-100) of the web preview.
	Quality int `json:"quality"`
}

// Driver limits accepted by Validate
const (
	MaxDevice    = 63
	MaxWidth     = 4096
	MaxHeight    = 2160
	MaxFramerate = 120
)

// DefaultConfig returns the default device at the driver's default resolution.
func DefaultConfig() Config {
	return Config{
		Device:    0,
		Width:     0,
		Height:    0,
		Framerate: 0,
		Quality:   80,
	}
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	if c.Device < 0 || c.Device > MaxDevice {
		errors = append(errors, "device must be between 0 and 63")
	}

	// Resolution
	if c.Width != 0 && (c.Width < 160 || c.Width > MaxWidth) {
		errors = append(errors, "width must be 0 (default) or between 160 and 4096")
	}
	if c.Height != 0 && (c.Height < 120 || c.Height > MaxHeight) {
		errors = append(errors, "height must be 0 (default) or between 120 and 2160")
	}
	if c.Framerate < 0 || c.Framerate > MaxFramerate {
		errors = append(errors, "framerate must be 0 (default) or between 1 and 120")
	}
	if c.Quality < 1 || c.Quality > 100 {
		errors = append(errors, "quality must be between 1 and 100")
	}

	return errors
}
