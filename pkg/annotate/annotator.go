// Package annotate runs the per-frame pipeline: detect faces, classify the
// age of the first one, draw the result and convert the frame for display.
package annotate

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/teslashibe/agecam/pkg/age"
	"github.com/teslashibe/agecam/pkg/debug"
	"github.com/teslashibe/agecam/pkg/detection"
	"gocv.io/x/gocv"
)

// Sentinel errors for common error conditions.
var (
	// ErrEmptyFrame is returned when the frame has no pixels.
	ErrEmptyFrame = errors.New("annotate: empty frame")

	// ErrRegionOutside is returned when a face region does not overlap the frame.
	ErrRegionOutside = errors.New("annotate: face region outside frame")
)

// Style controls how the box and label are drawn.
type Style struct {
	Color     color.RGBA // gocv maps R/G/B onto the BGR channels of the Mat
	Thickness int
	FontScale float64
	TextLift  int // label baseline distance above the box
}

// DefaultStyle draws a blue 2px box with the label 10px above it.
func DefaultStyle() Style {
	return Style{
		Color:     color.RGBA{R: 0, G: 0, B: 255, A: 0},
		Thickness: 2,
		FontScale: 0.9,
		TextLift:  10,
	}
}

// Result is the outcome of one Annotate call.
type Result struct {
	// Image is the annotated frame in RGBA order, ready for display.
	// It is set whenever the frame itself was valid.
	Image *image.RGBA

	Faces   int             // regions returned by the detector
	Found   bool            // true when a face was classified and drawn
	Region  image.Rectangle // first region, clamped to the frame
	Bracket age.Bracket
	Label   string
	Probs   []float32
}

// Annotator holds the two read-only models shared by every frame.
type Annotator struct {
	detector   detection.Detector
	classifier age.Classifier
	style      Style
}

// New creates an annotator over an already loaded detector and classifier.
// The annotator does not own them; the caller closes them.
func New(detector detection.Detector, classifier age.Classifier) *Annotator {
	return &Annotator{
		detector:   detector,
		classifier: classifier,
		style:      DefaultStyle(),
	}
}

// WithStyle returns a copy of the annotator drawing with s.
func (a *Annotator) WithStyle(s Style) *Annotator {
	c := *a
	c.style = s
	return &c
}

// Annotate processes one BGR frame in place and returns the display image.
//
// Only the first detected region is classified. When no face is found the
// frame is left untouched and Result.Found is false. A classification error
// is returned together with a Result whose Image is still populated.
func (a *Annotator) Annotate(frame *gocv.Mat) (Result, error) {
	if frame == nil || frame.Empty() {
		return Result{}, ErrEmptyFrame
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)

	faces := a.detector.Detect(gray)
	res := Result{Faces: len(faces)}

	var classifyErr error
	if region, ok := detection.First(faces); ok {
		classifyErr = a.annotateFace(frame, region, &res)
	}

	img, err := ToRGBA(*frame)
	if err != nil {
		return res, err
	}
	res.Image = img

	return res, classifyErr
}

func (a *Annotator) annotateFace(frame *gocv.Mat, region image.Rectangle, res *Result) error {
	bounds := image.Rect(0, 0, frame.Cols(), frame.Rows())
	r := region.Intersect(bounds)
	if r.Empty() {
		return fmt.Errorf("%w: %v", ErrRegionOutside, region)
	}

	crop := frame.Region(r)
	probs, err := a.classifier.Classify(crop)
	crop.Close()
	if err != nil {
		return fmt.Errorf("classify face: %w", err)
	}

	bracket, err := age.Select(probs)
	if err != nil {
		return fmt.Errorf("classify face: %w", err)
	}

	label := bracket.String()
	gocv.Rectangle(frame, r, a.style.Color, a.style.Thickness)
	gocv.PutText(frame, label, image.Pt(r.Min.X, r.Min.Y-a.style.TextLift),
		gocv.FontHersheySimplex, a.style.FontScale, a.style.Color, a.style.Thickness)

	debug.FrameLog("🎂 %s at %v\n", label, r)

	res.Found = true
	res.Region = r
	res.Bracket = bracket
	res.Label = label
	res.Probs = probs
	return nil
}

// ToRGBA converts a BGR frame into a freshly allocated RGBA image.
func ToRGBA(frame gocv.Mat) (*image.RGBA, error) {
	if frame.Empty() {
		return nil, ErrEmptyFrame
	}

	rgba := gocv.NewMat()
	defer rgba.Close()
	gocv.CvtColor(frame, &rgba, gocv.ColorBGRToRGBA)

	w, h := rgba.Cols(), rgba.Rows()
	pix := rgba.ToBytes()
	if len(pix) != 4*w*h {
		return nil, fmt.Errorf("annotate: rgba buffer is %d bytes, want %d", len(pix), 4*w*h)
	}

	return &image.RGBA{
		Pix:    pix,
		Stride: 4 * w,
		Rect:   image.Rect(0, 0, w, h),
	}, nil
}
