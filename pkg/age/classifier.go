package age

import (
	"fmt"
	"image"
	"os"

	"gocv.io/x/gocv"
)

// Classifier turns a BGR face crop into a probability vector over Labels.
type Classifier interface {
	Classify(face gocv.Mat) ([]float32, error)
	Close() error
}

// Mean values the Caffe age network was trained with, in BGR order.
var Mean = gocv.NewScalar(78.4263377603, 87.7689143744, 114.895847746, 0)

// InputSize is the network input resolution.
var InputSize = image.Pt(227, 227)

// CaffeClassifier runs the Levi-Hassner Caffe age network through OpenCV DNN.
type CaffeClassifier struct {
	net gocv.Net
}

// NewCaffe loads the network definition and weights.
func NewCaffe(prototxt, weights string) (*CaffeClassifier, error) {
	for _, p := range []string{prototxt, weights} {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, p)
		}
	}

	net := gocv.ReadNetFromCaffe(prototxt, weights)
	if net.Empty() {
		net.Close()
		return nil, fmt.Errorf("%w: %s", ErrModelLoad, weights)
	}

	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &CaffeClassifier{net: net}, nil
}

// Classify builds a 227x227 mean-subtracted blob from the crop and runs a
// forward pass.
func (c *CaffeClassifier) Classify(face gocv.Mat) ([]float32, error) {
	if face.Empty() {
		return nil, ErrEmptyInput
	}

	blob := gocv.BlobFromImage(face, 1.0, InputSize, Mean, false, false)
	defer blob.Close()

	c.net.SetInput(blob, "")
	out := c.net.Forward("")
	defer out.Close()

	if out.Empty() {
		return nil, ErrInference
	}

	data, err := out.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInference, err)
	}
	if len(data) != NumBrackets {
		return nil, fmt.Errorf("%w: got %d values, want %d", ErrBadVector, len(data), NumBrackets)
	}

	// data points into out, which is closed on return
	probs := make([]float32, len(data))
	copy(probs, data)
	return probs, nil
}

// Close releases the network.
func (c *CaffeClassifier) Close() error {
	return c.net.Close()
}
