package app

import (
	"errors"
	"fmt"

	"github.com/teslashibe/agecam/pkg/annotate"
	"gocv.io/x/gocv"
)

// Still image errors.
var (
	ErrUnreadableImage = errors.New("app: cannot read image")
	ErrWriteImage      = errors.New("app: cannot write image")
)

// ClassifyImage annotates a single image file.
// When out is not empty the annotated image is written there.
func ClassifyImage(ann *annotate.Annotator, path, out string) (annotate.Result, error) {
	img := gocv.IMRead(path, gocv.IMReadColor)
	defer img.Close()
	if img.Empty() {
		return annotate.Result{}, fmt.Errorf("%w: %s", ErrUnreadableImage, path)
	}

	res, err := ann.Annotate(&img)
	if err != nil {
		return res, fmt.Errorf("%s: %w", path, err)
	}

	if out != "" && !gocv.IMWrite(out, img) {
		return res, fmt.Errorf("%w: %s", ErrWriteImage, out)
	}
	return res, nil
}
