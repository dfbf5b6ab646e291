package render

import (
	"fmt"
	"runtime"

	"github.com/go-gl/gl/v2.1/gl"

	"github.com/kitsunet/livepaper/internal/monitor"
)

// NativeSurface is the platform-bound drawable behind a GL surface: an EGL
// or GLX surface created by the display bindings, which are outside the
// engine core. It must share one GL context across all outputs.
type NativeSurface interface {
	// MakeCurrent binds the shared context to this drawable.
	MakeCurrent() error
	// SwapBuffers presents the back buffer, blocking at most one vsync.
	SwapBuffers() error
	Destroy()
}

// Binder creates the native drawable for an output.
type Binder func(out monitor.Output) (NativeSurface, error)

// GLDevice submits frames as textured fullscreen quads through one shared
// GL context. All calls must come from the scheduler goroutine; the
// constructor pins it to its OS thread since GL contexts are thread-bound.
type GLDevice struct {
	bind   Binder
	maxTex int
}

// NewGLDevice initializes the GL bindings. The caller must have made the
// shared context current on this goroutine first.
func NewGLDevice(bind Binder) (*GLDevice, error) {
	runtime.LockOSThread()
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("opengl init failed: %w", err)
	}
	var maxTex int32
	gl.GetIntegerv(gl.MAX_TEXTURE_SIZE, &maxTex)
	if maxTex <= 0 {
		return nil, fmt.Errorf("backend reported max texture size %d", maxTex)
	}
	return &GLDevice{bind: bind, maxTex: int(maxTex)}, nil
}

func (d *GLDevice) MaxTextureSize() int { return d.maxTex }

func (d *GLDevice) Bind(out monitor.Output, frameW, frameH int) (Surface, error) {
	if frameW <= 0 || frameH <= 0 || frameW > d.maxTex || frameH > d.maxTex {
		return nil, fmt.Errorf("surface size %dx%d out of range (max %d)", frameW, frameH, d.maxTex)
	}
	native, err := d.bind(out)
	if err != nil {
		return nil, fmt.Errorf("binding output %s: %w", out.ID, err)
	}
	s := &glSurface{
		native: native,
		output: out,
		width:  frameW,
		height: frameH,
	}
	if err := s.createTexture(); err != nil {
		native.Destroy()
		return nil, err
	}
	return s, nil
}

func (d *GLDevice) Close() {}

type glSurface struct {
	native        NativeSurface
	output        monitor.Output
	tex           uint32
	width, height int
	released      bool
}

func (s *glSurface) createTexture() error {
	if err := s.native.MakeCurrent(); err != nil {
		return fmt.Errorf("make current for %s: %w", s.output.ID, err)
	}
	if s.tex != 0 {
		gl.DeleteTextures(1, &s.tex)
	}
	gl.GenTextures(1, &s.tex)
	gl.BindTexture(gl.TEXTURE_2D, s.tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(s.width), int32(s.height), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, nil)
	return nil
}

func (s *glSurface) UploadAndPresent(frame []byte) error {
	if s.released {
		return fmt.Errorf("surface for %s released", s.output.ID)
	}
	if want := s.width * s.height * 4; len(frame) != want {
		return fmt.Errorf("frame size %d does not match surface %dx%d", len(frame), s.width, s.height)
	}
	if err := s.native.MakeCurrent(); err != nil {
		return fmt.Errorf("make current for %s: %w", s.output.ID, err)
	}

	gl.BindTexture(gl.TEXTURE_2D, s.tex)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(s.width), int32(s.height),
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(frame))

	gl.Viewport(0, 0, int32(s.output.Width), int32(s.output.Height))
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	gl.Enable(gl.TEXTURE_2D)
	gl.Begin(gl.QUADS)
	gl.TexCoord2f(0, 0)
	gl.Vertex2f(-1, 1)
	gl.TexCoord2f(1, 0)
	gl.Vertex2f(1, 1)
	gl.TexCoord2f(1, 1)
	gl.Vertex2f(1, -1)
	gl.TexCoord2f(0, 1)
	gl.Vertex2f(-1, -1)
	gl.End()
	gl.Disable(gl.TEXTURE_2D)

	if err := s.native.SwapBuffers(); err != nil {
		return fmt.Errorf("present for %s: %w", s.output.ID, err)
	}
	return nil
}

func (s *glSurface) Resize(frameW, frameH int) error {
	if frameW <= 0 || frameH <= 0 {
		return fmt.Errorf("bad surface size %dx%d", frameW, frameH)
	}
	s.width, s.height = frameW, frameH
	return s.createTexture()
}

func (s *glSurface) Release() {
	if s.released {
		return
	}
	s.released = true
	if s.native.MakeCurrent() == nil && s.tex != 0 {
		gl.DeleteTextures(1, &s.tex)
	}
	s.native.Destroy()
}
