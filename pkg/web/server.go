// Package web provides the browser dashboard: live preview, age label and
// start/stop controls for the capture loop.
package web

import (
	"bytes"
	"embed"
	"image"
	"image/jpeg"
	"io/fs"
	"net"
	"net/http"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/websocket/v2"
	"github.com/teslashibe/agecam/internal/log"
	"github.com/teslashibe/agecam/pkg/camera"
	"github.com/teslashibe/agecam/pkg/capture"
	"github.com/teslashibe/agecam/pkg/hub"
)

//go:embed static
var staticFS embed.FS

// Controller is the capture loop as seen by the dashboard.
// *capture.Loop satisfies it.
type Controller interface {
	Start() error
	Stop()
	Status() capture.Status
	Camera() *camera.Manager
}

// StatusMessage is pushed on /ws/status whenever the loop changes.
type StatusMessage struct {
	Type string `json:"type"` // "status"
	capture.Status
}

// AgeMessage is pushed on /ws/status when a new age label is shown.
type AgeMessage struct {
	Type string `json:"type"` // "age"
	Age  string `json:"age"`
}

// Server is the web dashboard server. It is also a display.Surface.
type Server struct {
	app  *fiber.App
	ctrl Controller

	// Hubs for websocket broadcast
	statusHub *hub.Hub
	cameraHub *hub.Hub

	// Latest preview, kept for /api/snapshot
	frameMu sync.RWMutex
	frame   *image.RGBA

	ageMu sync.RWMutex
	age   string
}

// NewServer creates the dashboard for ctrl
func NewServer(ctrl Controller) *Server {
	s := &Server{
		ctrl:      ctrl,
		statusHub: hub.New("status"),
		cameraHub: hub.New("camera"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Age Detector",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	// API routes
	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Post("/camera/start", s.handleStart)
	api.Post("/camera/stop", s.handleStop)
	api.Get("/camera/config", s.handleGetConfig)
	api.Patch("/camera/config", s.handleUpdateConfig)
	api.Get("/camera/presets", s.handlePresets)
	api.Get("/snapshot", s.handleSnapshot)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/camera", websocket.New(s.handleCameraWS))
	app.Get("/ws/status", websocket.New(s.handleStatusWS))

	// Dashboard page
	pages, _ := fs.Sub(staticFS, "static")
	app.Use("/", filesystem.New(filesystem.Config{
		Root:  http.FS(pages),
		Index: "index.html",
	}))

	s.app = app
	return s
}

// App exposes the fiber app (for tests and embedding)
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown
func (s *Server) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve serves on an existing listener until Shutdown
func (s *Server) Serve(ln net.Listener) error {
	go s.statusHub.Run()
	go s.cameraHub.Run()

	log.Info("web dashboard listening", "url", "http://"+ln.Addr().String())
	return s.app.Listener(ln)
}

// Shutdown stops the server and disconnects every websocket client
func (s *Server) Shutdown() error {
	s.statusHub.Stop()
	s.cameraHub.Stop()
	return s.app.Shutdown()
}

// ShowFrame implements display.Surface. Frames are only encoded when
// someone is watching.
func (s *Server) ShowFrame(img *image.RGBA) {
	s.frameMu.Lock()
	s.frame = img
	s.frameMu.Unlock()

	if s.cameraHub.ClientCount() == 0 {
		return
	}

	data, err := s.encode(img)
	if err != nil {
		log.Warn("preview encode failed", "error", err)
		return
	}
	s.cameraHub.BroadcastBinary(data)
}

// ShowAge implements display.Surface.
func (s *Server) ShowAge(label string) {
	s.ageMu.Lock()
	changed := s.age != label
	s.age = label
	s.ageMu.Unlock()

	if changed {
		s.statusHub.BroadcastJSON(AgeMessage{Type: "age", Age: label})
	}
}

// Age returns the label currently shown on the dashboard.
func (s *Server) Age() string {
	s.ageMu.RLock()
	defer s.ageMu.RUnlock()
	return s.age
}

// PublishStatus pushes a loop status to every status client.
// Wire it to capture.Loop.OnChange.
func (s *Server) PublishStatus(st capture.Status) {
	s.statusHub.BroadcastJSON(StatusMessage{Type: "status", Status: st})
}

func (s *Server) encode(img *image.RGBA) ([]byte, error) {
	quality := s.ctrl.Camera().GetConfig().Quality
	if quality < 1 || quality > 100 {
		quality = jpeg.DefaultQuality
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
