package ipc

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kitsunet/livepaper/internal/engine"
)

// GET /status
func statusHandler(ctrl Controller) echo.HandlerFunc {
	return func(c echo.Context) error {
		report, err := ctrl.Status()
		if err != nil {
			return c.JSON(http.StatusServiceUnavailable, Response{
				Status:  "error",
				Message: err.Error(),
			})
		}
		return c.JSON(http.StatusOK, report)
	}
}

// POST /set
func setHandler(ctrl Controller) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req SetRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, Response{Status: "error", Message: "invalid request body"})
		}
		if strings.TrimSpace(req.Monitor) == "" || strings.TrimSpace(req.Video) == "" {
			return c.JSON(http.StatusBadRequest, Response{Status: "error", Message: "monitor and video are required"})
		}
		ctrl.Enqueue(engine.Command{Type: engine.CommandSet, Output: req.Monitor, Path: req.Video})
		return c.JSON(http.StatusOK, Response{Status: "ok"})
	}
}

// POST /unset
func unsetHandler(ctrl Controller) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req UnsetRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, Response{Status: "error", Message: "invalid request body"})
		}
		if strings.TrimSpace(req.Monitor) == "" {
			return c.JSON(http.StatusBadRequest, Response{Status: "error", Message: "monitor is required"})
		}
		ctrl.Enqueue(engine.Command{Type: engine.CommandUnset, Output: req.Monitor})
		return c.JSON(http.StatusOK, Response{Status: "ok"})
	}
}

// POST /reload
func reloadHandler(ctrl Controller) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctrl.Enqueue(engine.Command{Type: engine.CommandReload})
		return c.JSON(http.StatusOK, Response{Status: "ok"})
	}
}

// POST /stop
func stopHandler(ctrl Controller) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctrl.Enqueue(engine.Command{Type: engine.CommandStop})
		return c.JSON(http.StatusOK, Response{Status: "ok"})
	}
}
