// Package capture runs the periodic camera loop: one tick reads a frame,
// annotates it and pushes the result to the display surface.
package capture

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/teslashibe/agecam/internal/log"
	"github.com/teslashibe/agecam/pkg/annotate"
	"github.com/teslashibe/agecam/pkg/camera"
	"github.com/teslashibe/agecam/pkg/debug"
	"github.com/teslashibe/agecam/pkg/display"
	"gocv.io/x/gocv"
)

// Sentinel errors recorded when a tick is skipped.
var (
	// ErrNoSource means the camera is not open.
	ErrNoSource = errors.New("capture: camera not available")

	// ErrNoFrame means the camera is open but returned no frame.
	ErrNoFrame = errors.New("capture: failed to read frame")
)

// State is the loop state.
type State int

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	default:
		return "idle"
	}
}

// Processor annotates one frame. *annotate.Annotator satisfies it.
type Processor interface {
	Annotate(frame *gocv.Mat) (annotate.Result, error)
}

// Config holds loop timing.
type Config struct {
	Interval time.Duration // Tick period
}

// DefaultConfig returns the 20ms tick the preview was designed around.
func DefaultConfig() Config {
	return Config{
		Interval: 20 * time.Millisecond,
	}
}

// Status is a snapshot of the loop for dashboards.
type Status struct {
	State     string    `json:"state"`
	Running   bool      `json:"running"`
	SessionID string    `json:"session_id,omitempty"`
	StartedAt time.Time `json:"started_at,omitempty"`
	Age       string    `json:"age"`
	Faces     int       `json:"faces"`
	Frames    uint64    `json:"frames"`
	Skipped   uint64    `json:"skipped"`
	LastError string    `json:"last_error,omitempty"`
}

// Option configures a Loop.
type Option func(*Loop)

// WithOpener replaces the camera opener (default camera.OpenDevice).
func WithOpener(open camera.Opener) Option {
	return func(l *Loop) { l.open = open }
}

// WithCamera uses mgr for the device settings applied at each Start.
// The loop takes over mgr.OnConfigChange.
func WithCamera(mgr *camera.Manager) Option {
	return func(l *Loop) { l.camera = mgr }
}

// Loop owns the camera between Start and Stop and runs ticks on a single
// goroutine. Start and Stop may be called from any goroutine.
type Loop struct {
	cfg     Config
	proc    Processor
	surface display.Surface
	open    camera.Opener
	camera  *camera.Manager

	// OnChange is called after Start, Stop and every age update.
	// Set it before the first Start.
	OnChange func(Status)

	mu    sync.Mutex // serialises Start/Stop
	state  State
	src    camera.Source
	opened camera.Config // settings src was opened with
	stop  chan struct{}
	done  chan struct{}

	statusMu sync.RWMutex
	status   Status
}

// New creates an idle loop.
func New(cfg Config, proc Processor, surface display.Surface, opts ...Option) *Loop {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	if surface == nil {
		surface = display.Discard
	}

	l := &Loop{
		cfg:     cfg,
		proc:    proc,
		surface: surface,
		open:    camera.OpenDevice,
		status:  Status{State: Idle.String()},
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.camera == nil {
		l.camera = camera.NewManager(camera.DefaultConfig())
	}
	// Device and resolution changes only take effect on a fresh capture
	l.camera.OnConfigChange = l.reopen
	return l
}

// Camera returns the camera settings manager.
func (l *Loop) Camera() *camera.Manager {
	return l.camera
}

// Start acquires the camera and begins ticking.
// If the device cannot be opened the loop stays idle and the error is returned.
// Calling Start while running does nothing.
func (l *Loop) Start() error {
	l.mu.Lock()
	if l.state == Running {
		l.mu.Unlock()
		return nil
	}

	camCfg := l.camera.GetConfig()
	src, err := l.open(camCfg)
	if err != nil {
		l.mu.Unlock()
		log.Warn("failed to open camera", "device", camCfg.Device, "error", err)
		l.updateStatus(func(s *Status) { s.LastError = err.Error() })
		return fmt.Errorf("start capture: %w", err)
	}

	session := uuid.NewString()
	st := l.updateStatus(func(s *Status) {
		*s = Status{
			State:     Running.String(),
			Running:   true,
			SessionID: session,
			StartedAt: time.Now(),
		}
	})

	l.src = src
	l.opened = camCfg
	l.state = Running
	l.stop = make(chan struct{})
	l.done = make(chan struct{})
	go l.run(src, l.stop, l.done)
	l.mu.Unlock()

	log.Info("capture started", "session", session, "device", camCfg.Device, "interval", l.cfg.Interval)
	l.notify(st)
	return nil
}

// Stop halts ticking, releases the camera and clears the age label.
// It is safe to call when not running.
func (l *Loop) Stop() {
	l.mu.Lock()
	wasRunning := l.state == Running
	if wasRunning {
		close(l.stop)
		<-l.done
		l.stop, l.done = nil, nil
	}
	if l.src != nil {
		if err := l.src.Close(); err != nil {
			log.Warn("failed to release camera", "error", err)
		}
		l.src = nil
	}
	l.state = Idle
	l.mu.Unlock()

	l.surface.ShowAge("")
	st := l.updateStatus(func(s *Status) {
		s.State = Idle.String()
		s.Running = false
		s.Age = ""
		s.Faces = 0
	})
	if wasRunning {
		log.Info("capture stopped", "session", st.SessionID, "frames", st.Frames, "skipped", st.Skipped)
	}
	l.notify(st)
}

// reopen restarts a running capture when cfg needs a new device handle.
func (l *Loop) reopen(cfg camera.Config) error {
	l.mu.Lock()
	restart := l.state == Running && needsReopen(l.opened, cfg)
	l.mu.Unlock()
	if !restart {
		return nil
	}

	log.Info("camera settings changed, reopening", "device", cfg.Device, "width", cfg.Width, "height", cfg.Height)
	l.Stop()
	return l.Start()
}

func needsReopen(a, b camera.Config) bool {
	return a.Device != b.Device || a.Width != b.Width || a.Height != b.Height || a.Framerate != b.Framerate
}

// Running reports whether the loop is ticking.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state == Running
}

// State returns the current state.
func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Status returns a snapshot of the loop.
func (l *Loop) Status() Status {
	l.statusMu.RLock()
	defer l.statusMu.RUnlock()
	return l.status
}

func (l *Loop) run(src camera.Source, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	frame := gocv.NewMat()
	defer frame.Close()

	ticker := time.NewTicker(l.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			l.tick(src, &frame)
		}
	}
}

// tick is one synchronous read, annotate and display pass.
func (l *Loop) tick(src camera.Source, frame *gocv.Mat) {
	if src == nil || !src.IsOpened() {
		l.skip(ErrNoSource)
		return
	}
	if ok := src.Read(frame); !ok || frame.Empty() {
		l.skip(ErrNoFrame)
		return
	}

	started := time.Now()
	res, err := l.proc.Annotate(frame)
	if err != nil {
		log.Warn("frame annotation failed", "error", err)
	}

	if res.Found {
		l.surface.ShowAge(res.Label)
	}
	if res.Image != nil {
		l.surface.ShowFrame(res.Image)
	}

	debug.FrameLog("🎞️  tick faces=%d found=%v took=%v\n", res.Faces, res.Found, time.Since(started))

	st := l.updateStatus(func(s *Status) {
		s.Frames++
		s.Faces = res.Faces
		if res.Found {
			s.Age = res.Label
		}
		if err != nil {
			s.LastError = err.Error()
		}
	})
	if res.Found {
		l.notify(st)
	}
}

func (l *Loop) skip(reason error) {
	log.Warn("tick skipped", "reason", reason)
	l.updateStatus(func(s *Status) {
		s.Skipped++
		s.LastError = reason.Error()
	})
}

func (l *Loop) updateStatus(update func(*Status)) Status {
	l.statusMu.Lock()
	defer l.statusMu.Unlock()
	update(&l.status)
	return l.status
}

func (l *Loop) notify(st Status) {
	if l.OnChange != nil {
		l.OnChange(st)
	}
}
