package display

import (
	"context"
	"image"
	"image/color"
	"sync"

	"github.com/teslashibe/agecam/internal/log"
	"gocv.io/x/gocv"
)

// Key codes handled by Window.Run
const (
	KeyStart = 's'
	KeyStop  = 'x'
	KeyQuit  = 'q'
	KeyEsc   = 27
)

// Controls is what the window keys drive.
type Controls interface {
	Start() error
	Stop()
}

// Window is a native OpenCV preview window.
//
// ShowFrame and ShowAge may be called from any goroutine; only the latest
// frame is kept. Run owns the highgui window and must be called from the
// main goroutine on platforms that require it.
type Window struct {
	name   string
	frames chan *image.RGBA

	mu  sync.Mutex
	age string
}

// NewWindow creates a window surface. The OS window appears when Run starts.
func NewWindow(name string) *Window {
	return &Window{
		name:   name,
		frames: make(chan *image.RGBA, 1),
	}
}

// ShowFrame implements Surface. Older pending frames are dropped.
func (w *Window) ShowFrame(img *image.RGBA) {
	for {
		select {
		case w.frames <- img:
			return
		default:
			select {
			case <-w.frames:
			default:
			}
		}
	}
}

// ShowAge implements Surface.
func (w *Window) ShowAge(label string) {
	w.mu.Lock()
	w.age = label
	w.mu.Unlock()
}

// Age returns the label currently shown.
func (w *Window) Age() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.age
}

// Run shows frames until ctx is done or the quit key is pressed.
// s starts capture, x stops it, q or Esc quits.
func (w *Window) Run(ctx context.Context, controls Controls) error {
	win := gocv.NewWindow(w.name)
	defer win.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case img := <-w.frames:
			w.show(win, img)
		default:
		}

		switch key := win.WaitKey(10); key {
		case KeyStart:
			if err := controls.Start(); err != nil {
				log.Warn("start from window failed", "error", err)
			}
		case KeyStop:
			controls.Stop()
		case KeyQuit, KeyEsc:
			return nil
		}
	}
}

func (w *Window) show(win *gocv.Window, img *image.RGBA) {
	mat, err := gocv.ImageToMatRGBA(img)
	if err != nil {
		log.Warn("window frame conversion failed", "error", err)
		return
	}
	defer mat.Close()

	if age := w.Age(); age != "" {
		gocv.PutText(&mat, "YOU ARE "+age, image.Pt(10, mat.Rows()-15),
			gocv.FontHersheySimplex, 0.9, color.RGBA{R: 255, G: 255, B: 255, A: 255}, 2)
	}

	win.IMShow(mat)
}
