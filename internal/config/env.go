// Package config provides configuration helpers for agecam commands.
package config

import (
	"os"
	"path/filepath"
	"strconv"
)

// Default application configuration.
const (
	DefaultModelsDir = "models"
	DefaultAddr      = ":8080"
	DefaultDevice    = 0
	DefaultLogLevel  = "info"
)

// Model file names expected inside the models directory.
const (
	CascadeFile  = "haarcascade_frontalface_default.xml"
	AgeProtoFile = "age_deploy.prototxt"
	AgeModelFile = "age_net.caffemodel"
)

// ModelsDir returns the model directory from AGECAM_MODELS env var.
// Falls back to DefaultModelsDir if not set.
func ModelsDir() string {
	return stringEnv("AGECAM_MODELS", DefaultModelsDir)
}

// Addr returns the dashboard listen address from AGECAM_ADDR env var.
func Addr() string {
	return stringEnv("AGECAM_ADDR", DefaultAddr)
}

// Device returns the camera index from AGECAM_DEVICE env var.
// Unparseable values fall back to DefaultDevice.
func Device() int {
	if v := os.Getenv("AGECAM_DEVICE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return DefaultDevice
}

// LogLevel returns the log level from LOG_LEVEL env var.
func LogLevel() string {
	return stringEnv("LOG_LEVEL", DefaultLogLevel)
}

// ModelPaths holds the resolved paths of the three model files.
type ModelPaths struct {
	Cascade  string
	AgeProto string
	AgeModel string
}

// Paths resolves the model file locations inside dir.
func Paths(dir string) ModelPaths {
	return ModelPaths{
		Cascade:  filepath.Join(dir, CascadeFile),
		AgeProto: filepath.Join(dir, AgeProtoFile),
		AgeModel: filepath.Join(dir, AgeModelFile),
	}
}

func stringEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
