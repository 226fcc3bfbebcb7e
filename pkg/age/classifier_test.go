package age

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gocv.io/x/gocv"
)

func findModelDir() string {
	for _, dir := range []string{"models", "../models", "../../models"} {
		if _, err := os.Stat(filepath.Join(dir, "age_net.caffemodel")); err == nil {
			return dir
		}
	}
	return ""
}

func TestNewCaffe_MissingFiles(t *testing.T) {
	_, err := NewCaffe("/nonexistent/age_deploy.prototxt", "/nonexistent/age_net.caffemodel")
	if !errors.Is(err, ErrModelNotFound) {
		t.Errorf("Expected ErrModelNotFound, got %v", err)
	}
}

func TestNewTFLite_MissingFile(t *testing.T) {
	_, err := NewTFLite("/nonexistent/age.tflite", 1)
	if !errors.Is(err, ErrModelNotFound) {
		t.Errorf("Expected ErrModelNotFound, got %v", err)
	}
}

func TestCaffe_Classify(t *testing.T) {
	dir := findModelDir()
	if dir == "" {
		t.Skip("age model not found, skipping test")
	}

	c, err := NewCaffe(filepath.Join(dir, "age_deploy.prototxt"), filepath.Join(dir, "age_net.caffemodel"))
	if err != nil {
		t.Fatalf("NewCaffe failed: %v", err)
	}
	defer c.Close()

	face := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(120, 140, 160, 0), 100, 80, gocv.MatTypeCV8UC3)
	defer face.Close()

	probs, err := c.Classify(face)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if len(probs) != NumBrackets {
		t.Fatalf("Expected %d probabilities, got %d", NumBrackets, len(probs))
	}

	var sum float32
	for _, p := range probs {
		sum += p
	}
	if sum < 0.99 || sum > 1.01 {
		t.Errorf("Expected softmax output to sum to 1, got %v", sum)
	}
}

func TestCaffe_ClassifyEmpty(t *testing.T) {
	dir := findModelDir()
	if dir == "" {
		t.Skip("age model not found, skipping test")
	}

	c, err := NewCaffe(filepath.Join(dir, "age_deploy.prototxt"), filepath.Join(dir, "age_net.caffemodel"))
	if err != nil {
		t.Fatalf("NewCaffe failed: %v", err)
	}
	defer c.Close()

	empty := gocv.NewMat()
	defer empty.Close()

	if _, err := c.Classify(empty); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("Expected ErrEmptyInput, got %v", err)
	}
}
