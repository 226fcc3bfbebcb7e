package camera

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"
)

// ErrDeviceUnavailable is returned when the camera cannot be opened.
var ErrDeviceUnavailable = errors.New("camera: device unavailable")

// Source yields frames on demand. *gocv.VideoCapture satisfies it.
type Source interface {
	// Read fills m with the next frame and reports whether it succeeded
	Read(m *gocv.Mat) bool

	// IsOpened reports whether the underlying device is usable
	IsOpened() bool

	// Close releases the device
	Close() error
}

// Opener acquires a Source for the given configuration.
type Opener func(cfg Config) (Source, error)

// OpenDevice opens cfg.Device through OpenCV and applies any non-zero
// resolution or framerate settings.
func OpenDevice(cfg Config) (Source, error) {
	vc, err := gocv.OpenVideoCapture(cfg.Device)
	if err != nil {
		return nil, fmt.Errorf("%w: device %d: %v", ErrDeviceUnavailable, cfg.Device, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("%w: device %d not opened", ErrDeviceUnavailable, cfg.Device)
	}

	if cfg.Width > 0 {
		vc.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	}
	if cfg.Height > 0 {
		vc.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	}
	if cfg.Framerate > 0 {
		vc.Set(gocv.VideoCaptureFPS, float64(cfg.Framerate))
	}

	return vc, nil
}
