// Package render owns the per-output drawable targets. All outputs share
// one Device (the GPU device/queue); every submission funnels through it
// from the scheduler goroutine, so there is a single submission path and no
// cross-context GPU calls. The platform bindings behind the Device are out
// of scope here: the engine only sees surface creation and frame submission.
package render

import "github.com/kitsunet/livepaper/internal/monitor"

// Device is the shared GPU device/queue. Surfaces hold a non-owning
// reference to it; the engine owns the device for the process lifetime.
type Device interface {
	// MaxTextureSize reports the backend texture limit used to clamp the
	// decode resolution.
	MaxTextureSize() int
	// Bind creates the drawable for an output, sized for frameW x frameH
	// RGBA uploads.
	Bind(out monitor.Output, frameW, frameH int) (Surface, error)
	Close()
}

// Surface is one output's drawable target.
type Surface interface {
	// UploadAndPresent submits one RGBA frame. Must be called from the
	// scheduler goroutine only.
	UploadAndPresent(frame []byte) error
	Resize(frameW, frameH int) error
	Release()
}
