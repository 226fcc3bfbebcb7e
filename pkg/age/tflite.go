package age

import (
	"fmt"
	"image"
	"os"

	"github.com/mattn/go-tflite"
	"gocv.io/x/gocv"
)

// TFLiteClassifier runs a TensorFlow Lite age model with a single
// NHWC RGB input and a NumBrackets-wide output.
type TFLiteClassifier struct {
	model  *tflite.Model
	interp *tflite.Interpreter
}

// NewTFLite loads a .tflite model and allocates its tensors.
func NewTFLite(modelPath string, threads int) (*TFLiteClassifier, error) {
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, modelPath)
	}

	model := tflite.NewModelFromFile(modelPath)
	if model == nil {
		return nil, fmt.Errorf("%w: %s", ErrModelLoad, modelPath)
	}

	options := tflite.NewInterpreterOptions()
	defer options.Delete()
	if threads > 0 {
		options.SetNumThread(threads)
	}

	interp := tflite.NewInterpreter(model, options)
	if interp == nil {
		model.Delete()
		return nil, fmt.Errorf("%w: cannot create interpreter", ErrModelLoad)
	}

	if status := interp.AllocateTensors(); status != tflite.OK {
		interp.Delete()
		model.Delete()
		return nil, fmt.Errorf("%w: allocate tensors: %v", ErrModelLoad, status)
	}

	return &TFLiteClassifier{model: model, interp: interp}, nil
}

// Classify resizes the crop to the input tensor dims and invokes the model.
func (c *TFLiteClassifier) Classify(face gocv.Mat) ([]float32, error) {
	if face.Empty() {
		return nil, ErrEmptyInput
	}

	input := c.interp.GetInputTensor(0)
	if err := fillInput(input, face); err != nil {
		return nil, err
	}

	if status := c.interp.Invoke(); status != tflite.OK {
		return nil, fmt.Errorf("%w: invoke: %v", ErrInference, status)
	}

	return readOutput(c.interp.GetOutputTensor(0))
}

// Close releases the interpreter and the model.
func (c *TFLiteClassifier) Close() error {
	c.interp.Delete()
	c.model.Delete()
	return nil
}

func fillInput(input *tflite.Tensor, face gocv.Mat) error {
	size := image.Pt(input.Dim(2), input.Dim(1))

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(face, &resized, size, 0, 0, gocv.InterpolationDefault)
	gocv.CvtColor(resized, &resized, gocv.ColorBGRToRGB)

	switch input.Type() {
	case tflite.UInt8:
		v, err := resized.DataPtrUint8()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInference, err)
		}
		input.SetUint8s(v)
	case tflite.Float32:
		f := gocv.NewMat()
		defer f.Close()
		resized.ConvertTo(&f, gocv.MatTypeCV32F)
		v, err := f.DataPtrFloat32()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInference, err)
		}
		for i := range v {
			v[i] = v[i] / 255
		}
		input.SetFloat32s(v)
	default:
		return fmt.Errorf("%w: unsupported input type %v", ErrInference, input.Type())
	}
	return nil
}

func readOutput(output *tflite.Tensor) ([]float32, error) {
	var probs []float32
	switch output.Type() {
	case tflite.UInt8:
		f := output.UInt8s()
		probs = make([]float32, len(f))
		for i, v := range f {
			probs[i] = float32(v) / 255
		}
	case tflite.Float32:
		f := output.Float32s()
		probs = make([]float32, len(f))
		copy(probs, f)
	default:
		return nil, fmt.Errorf("%w: unsupported output type %v", ErrInference, output.Type())
	}

	if len(probs) != NumBrackets {
		return nil, fmt.Errorf("%w: got %d values, want %d", ErrBadVector, len(probs), NumBrackets)
	}
	return probs, nil
}
