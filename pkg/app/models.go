package app

import (
	"errors"
	"fmt"

	"github.com/teslashibe/agecam/internal/config"
	"github.com/teslashibe/agecam/internal/log"
	"github.com/teslashibe/agecam/pkg/age"
	"github.com/teslashibe/agecam/pkg/annotate"
	"github.com/teslashibe/agecam/pkg/detection"
)

// Models holds the face detector and the age network.
// They are loaded once and shared by everything that annotates frames.
type Models struct {
	Detector   detection.Detector
	Classifier age.Classifier
}

// LoadModels loads the cascade and the configured age backend.
func LoadModels(cfg Config) (*Models, error) {
	paths := config.Paths(cfg.ModelsDir)

	detCfg := detection.DefaultConfig()
	detCfg.CascadePath = paths.Cascade
	det, err := detection.NewCascade(detCfg)
	if err != nil {
		return nil, fmt.Errorf("face detector: %w", err)
	}

	var cls age.Classifier
	switch cfg.AgeBackend {
	case BackendTFLite:
		cls, err = age.NewTFLite(cfg.AgeModel, cfg.Threads)
	default:
		cls, err = age.NewCaffe(paths.AgeProto, paths.AgeModel)
	}
	if err != nil {
		det.Close()
		return nil, fmt.Errorf("age classifier: %w", err)
	}

	log.Info("models loaded", "dir", cfg.ModelsDir, "backend", cfg.AgeBackend)
	return &Models{Detector: det, Classifier: cls}, nil
}

// Annotator returns a frame annotator over the loaded models.
func (m *Models) Annotator() *annotate.Annotator {
	return annotate.New(m.Detector, m.Classifier)
}

// Close releases both models.
func (m *Models) Close() error {
	var errs []error
	if m.Detector != nil {
		errs = append(errs, m.Detector.Close())
	}
	if m.Classifier != nil {
		errs = append(errs, m.Classifier.Close())
	}
	return errors.Join(errs...)
}
