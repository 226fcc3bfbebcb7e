package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/teslashibe/agecam/internal/log"
	"github.com/teslashibe/agecam/pkg/camera"
	"github.com/teslashibe/agecam/pkg/capture"
	"github.com/teslashibe/agecam/pkg/debug"
	"github.com/teslashibe/agecam/pkg/display"
	"github.com/teslashibe/agecam/pkg/web"
)

// WindowName is the title of the native preview window.
const WindowName = "Age Detector"

// Option configures an App.
type Option func(*App)

// WithModels uses already loaded models instead of reading them from disk.
func WithModels(m *Models) Option {
	return func(a *App) { a.models = m }
}

// WithOpener replaces the camera opener (tests).
func WithOpener(open camera.Opener) Option {
	return func(a *App) { a.opener = open }
}

// App is the age detector application.
type App struct {
	config Config
	opener camera.Opener

	models *Models
	loop   *capture.Loop
	server *web.Server
	window *display.Window
}

// New creates a new application with the given configuration.
func New(cfg Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	debug.Enabled = cfg.Debug
	debug.Frames = cfg.DebugFrames

	a := &App{config: cfg}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Init loads the models and builds the capture loop and surfaces.
// Call this after New() and before Run().
func (a *App) Init() error {
	if a.models == nil {
		models, err := LoadModels(a.config)
		if err != nil {
			return fmt.Errorf("models: %w", err)
		}
		a.models = models
	}

	var surfaces display.Multi
	if a.config.Addr != "" {
		// The server controls capture through the app, which forwards to the loop
		a.server = web.NewServer(a)
		surfaces = append(surfaces, a.server)
	}
	if a.config.Window {
		a.window = display.NewWindow(WindowName)
		surfaces = append(surfaces, a.window)
	}

	camCfg := camera.DefaultConfig()
	camCfg.Device = a.config.Device

	opts := []capture.Option{capture.WithCamera(camera.NewManager(camCfg))}
	if a.opener != nil {
		opts = append(opts, capture.WithOpener(a.opener))
	}

	a.loop = capture.New(capture.Config{Interval: a.config.Interval}, a.models.Annotator(), surfaces, opts...)
	if a.server != nil {
		a.loop.OnChange = a.server.PublishStatus
	}

	debug.Log("🔧 surfaces: web=%v window=%v device=%d\n", a.server != nil, a.window != nil, camCfg.Device)
	return nil
}

// Run serves the surfaces. Blocks until ctx is cancelled, the window
// is closed or the web server fails.
func (a *App) Run(ctx context.Context) error {
	if a.loop == nil {
		return errors.New("app: Run called before Init")
	}

	serveErr := make(chan error, 1)
	if a.server != nil {
		go func() {
			serveErr <- a.server.Listen(a.config.Addr)
		}()
	}

	if a.config.AutoStart {
		if err := a.Start(); err != nil {
			log.Warn("autostart failed", "error", err)
		}
	}

	if a.window != nil {
		// highgui wants the calling goroutine
		winCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		failed := make(chan error, 1)
		go func() {
			select {
			case err := <-serveErr:
				failed <- err
				cancel()
			case <-winCtx.Done():
			}
		}()

		if err := a.window.Run(winCtx, a); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		select {
		case err := <-failed:
			return serveErrOrNil(err)
		default:
			return nil
		}
	}

	select {
	case <-ctx.Done():
		return nil
	case err := <-serveErr:
		return serveErrOrNil(err)
	}
}

func serveErrOrNil(err error) error {
	if err != nil {
		return fmt.Errorf("web server: %w", err)
	}
	return nil
}

// Shutdown stops capture, closes the surfaces and releases the models.
func (a *App) Shutdown() {
	if a.loop != nil {
		a.loop.Stop()
	}
	if a.server != nil {
		if err := a.server.Shutdown(); err != nil {
			log.Warn("web server shutdown", "error", err)
		}
	}
	if a.models != nil {
		if err := a.models.Close(); err != nil {
			log.Warn("closing models", "error", err)
		}
	}
}

// Start begins capturing.
func (a *App) Start() error {
	return a.loop.Start()
}

// Stop halts capturing.
func (a *App) Stop() {
	a.loop.Stop()
}

// Status returns the capture loop state.
func (a *App) Status() capture.Status {
	return a.loop.Status()
}

// Camera returns the camera settings manager.
func (a *App) Camera() *camera.Manager {
	return a.loop.Camera()
}

// Server returns the web dashboard, nil when disabled.
func (a *App) Server() *web.Server {
	return a.server
}
