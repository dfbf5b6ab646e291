package ipc

import (
	"net"
	"net/http"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
)

// SocketPath returns the control socket for this session.
func SocketPath() string {
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "livepaper.sock")
}

// Start serves the control channel over the session unix socket. It blocks
// until the server is shut down, so callers run it on its own goroutine.
func Start(ctrl Controller) error {
	sockPath := SocketPath()
	if _, err := os.Stat(sockPath); err == nil {
		_ = os.Remove(sockPath)
	}

	listener, err := net.Listen("unix", sockPath)
	if err != nil {
		return err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Listener = listener

	e.Use(CharmLog())

	RegisterRoutes(e, ctrl)

	log.Infof("control channel listening on %s", sockPath)
	return e.StartServer(new(http.Server))
}
