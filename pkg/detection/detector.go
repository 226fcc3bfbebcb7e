// Package detection provides face detection using computer vision
package detection

import (
	"errors"
	"image"

	"gocv.io/x/gocv"
)

// Sentinel errors for detector setup.
var (
	// ErrModelNotFound is returned when the cascade file does not exist.
	ErrModelNotFound = errors.New("detection: model file not found")

	// ErrModelLoad is returned when the cascade file cannot be parsed.
	ErrModelLoad = errors.New("detection: cannot load model")
)

// Detector is the interface for face detection backends
type Detector interface {
	// Detect finds faces in a single-channel image, in detector order
	Detect(gray gocv.Mat) []image.Rectangle

	// Close releases resources
	Close() error
}

// Config holds detector configuration
type Config struct {
	CascadePath  string      // Path to Haar cascade XML
	ScaleFactor  float64     // Image pyramid step (default 1.1)
	MinNeighbors int         // Neighbours a candidate needs to be kept (default 5)
	MinSize      image.Point // Smallest face considered (default 30x30)
}

// DefaultConfig returns the fixed detection parameters
func DefaultConfig() Config {
	return Config{
		CascadePath:  "models/haarcascade_frontalface_default.xml",
		ScaleFactor:  1.1,
		MinNeighbors: 5,
		MinSize:      image.Pt(30, 30),
	}
}

// First returns the first region in detector order.
// No ranking by size or confidence is done.
func First(faces []image.Rectangle) (image.Rectangle, bool) {
	if len(faces) == 0 {
		return image.Rectangle{}, false
	}
	return faces[0], true
}
