package web

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/teslashibe/agecam/internal/log"
	"github.com/teslashibe/agecam/pkg/camera"
	"github.com/teslashibe/agecam/pkg/hub"
)

// handleStatus returns the loop status
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.ctrl.Status())
}

// handleStart starts the capture loop
func (s *Server) handleStart(c *fiber.Ctx) error {
	if err := s.ctrl.Start(); err != nil {
		status := fiber.StatusInternalServerError
		if errors.Is(err, camera.ErrDeviceUnavailable) {
			status = fiber.StatusServiceUnavailable
		}
		log.Warn("start requested but failed", "error", err)
		return c.Status(status).JSON(fiber.Map{
			"error":  err.Error(),
			"status": s.ctrl.Status(),
		})
	}
	return c.JSON(s.ctrl.Status())
}

// handleStop stops the capture loop
func (s *Server) handleStop(c *fiber.Ctx) error {
	s.ctrl.Stop()
	return c.JSON(s.ctrl.Status())
}

// handleGetConfig returns the camera settings used on the next start
func (s *Server) handleGetConfig(c *fiber.Ctx) error {
	return c.JSON(s.ctrl.Camera().GetConfigJSON())
}

// handleUpdateConfig applies a partial camera config or a preset
func (s *Server) handleUpdateConfig(c *fiber.Ctx) error {
	var params map[string]interface{}
	if err := c.BodyParser(&params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid JSON body",
		})
	}

	if err := s.ctrl.Camera().UpdateConfig(params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(s.ctrl.Camera().GetConfigJSON())
}

// handlePresets lists the camera presets
func (s *Server) handlePresets(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"presets": camera.PresetNames(),
	})
}

// handleSnapshot returns the latest preview frame as JPEG
func (s *Server) handleSnapshot(c *fiber.Ctx) error {
	s.frameMu.RLock()
	img := s.frame
	s.frameMu.RUnlock()

	if img == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no frame yet",
		})
	}

	data, err := s.encode(img)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	c.Set(fiber.HeaderContentType, "image/jpeg")
	return c.Send(data)
}

// handleCameraWS streams JPEG preview frames
func (s *Server) handleCameraWS(c *websocket.Conn) {
	client := hub.NewClient(s.cameraHub, c)
	client.Run()
}

// handleStatusWS streams status and age updates, starting with the current state
func (s *Server) handleStatusWS(c *websocket.Conn) {
	var initial []hub.Message
	if data, err := jsonMessage(StatusMessage{Type: "status", Status: s.ctrl.Status()}); err == nil {
		initial = append(initial, data)
	}

	client := hub.NewClient(s.statusHub, c, initial...)
	client.Run()
}

func jsonMessage(v interface{}) (hub.Message, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return hub.Message{}, err
	}
	return hub.NewJSONMessage(data), nil
}
