package render

import (
	"fmt"
	"sync"

	"github.com/kitsunet/livepaper/internal/monitor"
)

// StubDevice is an in-memory Device used in stub mode and by tests. It
// serializes submissions the way the real device does and can inject
// per-output submit failures.
type StubDevice struct {
	mu       sync.Mutex
	maxTex   int
	surfaces map[string]*StubSurface
	failures map[string]error
	closed   bool
}

func NewStubDevice(maxTextureSize int) *StubDevice {
	return &StubDevice{
		maxTex:   maxTextureSize,
		surfaces: make(map[string]*StubSurface),
		failures: make(map[string]error),
	}
}

func (d *StubDevice) MaxTextureSize() int { return d.maxTex }

func (d *StubDevice) Bind(out monitor.Output, frameW, frameH int) (Surface, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, fmt.Errorf("device closed")
	}
	if frameW <= 0 || frameH <= 0 || frameW > d.maxTex || frameH > d.maxTex {
		return nil, fmt.Errorf("surface size %dx%d out of range (max %d)", frameW, frameH, d.maxTex)
	}
	s := &StubSurface{device: d, output: out.ID, width: frameW, height: frameH}
	d.surfaces[out.ID] = s
	return s, nil
}

func (d *StubDevice) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
}

// FailSubmits makes every subsequent submission for the output fail.
func (d *StubDevice) FailSubmits(outputID string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failures[outputID] = err
}

// Surface returns the bound stub surface for an output, or nil.
func (d *StubDevice) Surface(outputID string) *StubSurface {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.surfaces[outputID]
}

// StubSurface records submissions for assertions.
type StubSurface struct {
	device   *StubDevice
	output   string
	width    int
	height   int
	presents int
	released bool
}

func (s *StubSurface) UploadAndPresent(frame []byte) error {
	s.device.mu.Lock()
	defer s.device.mu.Unlock()
	if s.released {
		return fmt.Errorf("surface for %s released", s.output)
	}
	if err := s.device.failures[s.output]; err != nil {
		return err
	}
	if want := s.width * s.height * 4; len(frame) != want {
		return fmt.Errorf("frame size %d does not match surface %dx%d", len(frame), s.width, s.height)
	}
	s.presents++
	return nil
}

func (s *StubSurface) Resize(frameW, frameH int) error {
	s.device.mu.Lock()
	defer s.device.mu.Unlock()
	if frameW <= 0 || frameH <= 0 {
		return fmt.Errorf("bad surface size %dx%d", frameW, frameH)
	}
	s.width, s.height = frameW, frameH
	return nil
}

func (s *StubSurface) Release() {
	s.device.mu.Lock()
	defer s.device.mu.Unlock()
	s.released = true
}

// Presents reports how many frames were submitted.
func (s *StubSurface) Presents() int {
	s.device.mu.Lock()
	defer s.device.mu.Unlock()
	return s.presents
}

// Released reports whether Release was called.
func (s *StubSurface) Released() bool {
	s.device.mu.Lock()
	defer s.device.mu.Unlock()
	return s.released
}
