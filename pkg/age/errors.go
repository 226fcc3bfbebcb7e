package age

import "errors"

// Sentinel errors for common error conditions.
var (
	// ErrBadVector is returned when the network output has the wrong length.
	ErrBadVector = errors.New("age: unexpected output vector")

	// ErrModelNotFound is returned when a model file does not exist.
	ErrModelNotFound = errors.New("age: model file not found")

	// ErrModelLoad is returned when a model file exists but cannot be loaded.
	ErrModelLoad = errors.New("age: cannot load model")

	// ErrEmptyInput is returned when asked to classify an empty crop.
	ErrEmptyInput = errors.New("age: empty face crop")

	// ErrInference is returned when the network fails to run.
	ErrInference = errors.New("age: inference failed")
)
