package ipc

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
)

// CharmLog logs each control request through the process logger.
func CharmLog() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			log.Debugf("ipc %s %s -> %d (%v)",
				c.Request().Method,
				c.Request().URL.Path,
				c.Response().Status,
				time.Since(start))
			return err
		}
	}
}
