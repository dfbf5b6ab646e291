package ipc

import (
	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, ctrl Controller) {
	e.GET("/status", statusHandler(ctrl))
	e.POST("/set", setHandler(ctrl))
	e.POST("/unset", unsetHandler(ctrl))
	e.POST("/reload", reloadHandler(ctrl))
	e.POST("/stop", stopHandler(ctrl))
}
