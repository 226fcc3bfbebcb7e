package annotate

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/teslashibe/agecam/pkg/age"
	"gocv.io/x/gocv"
)

// stubDetector returns a fixed list of regions and records its input size
type stubDetector struct {
	faces []image.Rectangle
	calls int
	input image.Point
}

func (d *stubDetector) Detect(gray gocv.Mat) []image.Rectangle {
	d.calls++
	d.input = image.Pt(gray.Cols(), gray.Rows())
	return d.faces
}

func (d *stubDetector) Close() error { return nil }

// stubClassifier returns a fixed vector and records every crop it receives
type stubClassifier struct {
	probs []float32
	err   error
	crops []image.Point
}

func (c *stubClassifier) Classify(face gocv.Mat) ([]float32, error) {
	c.crops = append(c.crops, image.Pt(face.Cols(), face.Rows()))
	return c.probs, c.err
}

func (c *stubClassifier) Close() error { return nil }

var fixedProbs = []float32{0.1, 0.05, 0.05, 0.6, 0.05, 0.05, 0.05, 0.05, 0.05, 0.05}

// solidFrame creates a BGR frame filled with one color
func solidFrame(w, h int, b, g, r float64) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(b, g, r, 0), h, w, gocv.MatTypeCV8UC3)
}

func TestAnnotate_NoFaces(t *testing.T) {
	frame := solidFrame(160, 120, 10, 20, 30)
	defer frame.Close()

	det := &stubDetector{}
	cls := &stubClassifier{probs: fixedProbs}

	res, err := New(det, cls).Annotate(&frame)
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}

	if res.Found || res.Label != "" {
		t.Errorf("Expected no label, got Found=%v Label=%q", res.Found, res.Label)
	}
	if len(cls.crops) != 0 {
		t.Errorf("Classifier should not run without faces, ran %d times", len(cls.crops))
	}
	if det.input != image.Pt(160, 120) {
		t.Errorf("Detector got %v, want 160x120 grayscale", det.input)
	}

	// Output is the input with channels reordered, nothing drawn
	want := color.RGBA{R: 30, G: 20, B: 10, A: 255}
	for y := 0; y < 120; y++ {
		for x := 0; x < 160; x++ {
			if got := res.Image.RGBAAt(x, y); got != want {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestAnnotate_SingleFace(t *testing.T) {
	frame := solidFrame(200, 200, 10, 20, 30)
	defer frame.Close()

	face := image.Rect(40, 60, 120, 140)
	det := &stubDetector{faces: []image.Rectangle{face}}
	cls := &stubClassifier{probs: fixedProbs}

	res, err := New(det, cls).Annotate(&frame)
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}

	if !res.Found {
		t.Fatal("Expected a classified face")
	}
	if res.Bracket != 3 || res.Label != "(15-20)" {
		t.Errorf("Expected bracket 3 (15-20), got %d %q", res.Bracket, res.Label)
	}
	if res.Faces != 1 || res.Region != face {
		t.Errorf("Unexpected region info: faces=%d region=%v", res.Faces, res.Region)
	}
	if len(cls.crops) != 1 || cls.crops[0] != image.Pt(80, 80) {
		t.Errorf("Expected one 80x80 crop, got %v", cls.crops)
	}

	// Box edge is blue in display order
	if got := res.Image.RGBAAt(40, 100); got != (color.RGBA{R: 0, G: 0, B: 255, A: 255}) {
		t.Errorf("Expected box pixel at left edge, got %v", got)
	}
	// Far corner is untouched
	if got := res.Image.RGBAAt(195, 195); got != (color.RGBA{R: 30, G: 20, B: 10, A: 255}) {
		t.Errorf("Expected untouched pixel, got %v", got)
	}
}

func TestAnnotate_OnlyFirstFace(t *testing.T) {
	frame := solidFrame(320, 240, 10, 20, 30)
	defer frame.Close()

	first := image.Rect(200, 100, 240, 140)
	second := image.Rect(20, 100, 180, 230)
	det := &stubDetector{faces: []image.Rectangle{first, second}}
	cls := &stubClassifier{probs: fixedProbs}

	res, err := New(det, cls).Annotate(&frame)
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}

	if len(cls.crops) != 1 {
		t.Fatalf("Expected exactly one classification, got %d", len(cls.crops))
	}
	if cls.crops[0] != image.Pt(40, 40) {
		t.Errorf("Expected the first (40x40) region to be classified, got %v", cls.crops[0])
	}
	if res.Faces != 2 || res.Region != first {
		t.Errorf("Expected first region annotated, got faces=%d region=%v", res.Faces, res.Region)
	}

	// Second region's left edge is not drawn
	if got := res.Image.RGBAAt(20, 200); got != (color.RGBA{R: 30, G: 20, B: 10, A: 255}) {
		t.Errorf("Second face should not be annotated, got %v", got)
	}
}

func TestAnnotate_RegionClamped(t *testing.T) {
	frame := solidFrame(200, 200, 10, 20, 30)
	defer frame.Close()

	det := &stubDetector{faces: []image.Rectangle{image.Rect(150, 150, 260, 260)}}
	cls := &stubClassifier{probs: fixedProbs}

	res, err := New(det, cls).Annotate(&frame)
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}

	if len(cls.crops) != 1 || cls.crops[0] != image.Pt(50, 50) {
		t.Errorf("Expected clamped 50x50 crop, got %v", cls.crops)
	}
	if res.Region != image.Rect(150, 150, 200, 200) {
		t.Errorf("Expected clamped region, got %v", res.Region)
	}
}

func TestAnnotate_RegionOutside(t *testing.T) {
	frame := solidFrame(100, 100, 10, 20, 30)
	defer frame.Close()

	det := &stubDetector{faces: []image.Rectangle{image.Rect(300, 300, 340, 340)}}
	cls := &stubClassifier{probs: fixedProbs}

	res, err := New(det, cls).Annotate(&frame)
	if !errors.Is(err, ErrRegionOutside) {
		t.Errorf("Expected ErrRegionOutside, got %v", err)
	}
	if res.Image == nil || res.Found {
		t.Error("Expected unannotated display image")
	}
}

func TestAnnotate_ClassifierError(t *testing.T) {
	frame := solidFrame(100, 100, 10, 20, 30)
	defer frame.Close()

	boom := errors.New("boom")
	det := &stubDetector{faces: []image.Rectangle{image.Rect(10, 10, 60, 60)}}
	cls := &stubClassifier{err: boom}

	res, err := New(det, cls).Annotate(&frame)
	if !errors.Is(err, boom) {
		t.Errorf("Expected wrapped classifier error, got %v", err)
	}
	if res.Found {
		t.Error("Nothing should be drawn on classifier error")
	}
	if res.Image == nil {
		t.Fatal("Display image should still be produced")
	}
	if got := res.Image.RGBAAt(10, 30); got != (color.RGBA{R: 30, G: 20, B: 10, A: 255}) {
		t.Errorf("Expected untouched pixel, got %v", got)
	}
}

func TestAnnotate_BadVector(t *testing.T) {
	frame := solidFrame(100, 100, 10, 20, 30)
	defer frame.Close()

	det := &stubDetector{faces: []image.Rectangle{image.Rect(10, 10, 60, 60)}}
	cls := &stubClassifier{probs: []float32{1, 0, 0}}

	_, err := New(det, cls).Annotate(&frame)
	if !errors.Is(err, age.ErrBadVector) {
		t.Errorf("Expected ErrBadVector, got %v", err)
	}
}

func TestAnnotate_EmptyFrame(t *testing.T) {
	det := &stubDetector{}
	cls := &stubClassifier{}
	a := New(det, cls)

	empty := gocv.NewMat()
	defer empty.Close()

	if _, err := a.Annotate(&empty); !errors.Is(err, ErrEmptyFrame) {
		t.Errorf("Expected ErrEmptyFrame, got %v", err)
	}
	if _, err := a.Annotate(nil); !errors.Is(err, ErrEmptyFrame) {
		t.Errorf("Expected ErrEmptyFrame for nil, got %v", err)
	}
	if det.calls != 0 {
		t.Errorf("Detector should not run on empty frame, ran %d times", det.calls)
	}
}

func TestWithStyle(t *testing.T) {
	frame := solidFrame(200, 200, 0, 0, 0)
	defer frame.Close()

	det := &stubDetector{faces: []image.Rectangle{image.Rect(40, 60, 120, 140)}}
	cls := &stubClassifier{probs: fixedProbs}

	style := DefaultStyle()
	style.Color = color.RGBA{G: 255}
	base := New(det, cls)
	green := base.WithStyle(style)

	res, err := green.Annotate(&frame)
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}
	if got := res.Image.RGBAAt(40, 100); got != (color.RGBA{G: 255, A: 255}) {
		t.Errorf("Expected green box pixel, got %v", got)
	}
	if base.style != DefaultStyle() {
		t.Error("WithStyle should not modify the original annotator")
	}
}
