// Package platform is the seam between the engine core and the native
// display/GPU bindings. A binding package registers a render.Binder from
// its init; when none is registered the daemon falls back to the stub
// device, which decodes and paces frames without displaying them.
package platform

import (
	"errors"

	"github.com/kitsunet/livepaper/internal/render"
)

// ErrNoBindings means no display binding registered itself.
var ErrNoBindings = errors.New("no display bindings registered")

var binder render.Binder

// RegisterBinder installs the native surface factory.
func RegisterBinder(b render.Binder) { binder = b }

// NewDevice returns the shared-context GL device when bindings are
// present.
func NewDevice() (render.Device, error) {
	if binder == nil {
		return nil, ErrNoBindings
	}
	return render.NewGLDevice(binder)
}
