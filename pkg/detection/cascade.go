package detection

import (
	"fmt"
	"image"
	"os"

	"github.com/teslashibe/agecam/pkg/debug"
	"gocv.io/x/gocv"
)

// CascadeDetector uses an OpenCV Haar cascade for face detection
type CascadeDetector struct {
	classifier gocv.CascadeClassifier
	config     Config
}

// NewCascade loads the cascade file named in cfg
func NewCascade(cfg Config) (*CascadeDetector, error) {
	// Check if model file exists first
	if _, err := os.Stat(cfg.CascadePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, cfg.CascadePath)
	}

	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(cfg.CascadePath) {
		classifier.Close()
		return nil, fmt.Errorf("%w: %s", ErrModelLoad, cfg.CascadePath)
	}

	return &CascadeDetector{
		classifier: classifier,
		config:     cfg,
	}, nil
}

// Detect runs multi-scale detection on a grayscale image
func (d *CascadeDetector) Detect(gray gocv.Mat) []image.Rectangle {
	if gray.Empty() {
		return nil
	}

	faces := d.classifier.DetectMultiScaleWithParams(
		gray,
		d.config.ScaleFactor,
		d.config.MinNeighbors,
		0, // flags
		d.config.MinSize,
		image.Pt(0, 0), // no max size
	)

	if len(faces) > 0 {
		debug.FrameLog("👁️  Cascade found %d face(s)\n", len(faces))
	}

	return faces
}

// Close releases the classifier
func (d *CascadeDetector) Close() error {
	return d.classifier.Close()
}
