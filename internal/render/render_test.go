package render

import (
	"errors"
	"testing"

	"github.com/kitsunet/livepaper/internal/monitor"
)

var testOutput = monitor.Output{ID: "DP-1", Width: 1920, Height: 1080, Scale: 1}

func TestStubBindRejectsOversizedSurface(t *testing.T) {
	d := NewStubDevice(2048)
	if _, err := d.Bind(testOutput, 4096, 2160); err == nil {
		t.Error("oversized surface accepted")
	}
	if _, err := d.Bind(testOutput, 0, 16); err == nil {
		t.Error("zero-sized surface accepted")
	}
	if _, err := d.Bind(testOutput, 1920, 1080); err != nil {
		t.Errorf("in-range surface rejected: %v", err)
	}
}

func TestStubUploadChecksFrameSize(t *testing.T) {
	d := NewStubDevice(4096)
	s, err := d.Bind(testOutput, 4, 4)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if err := s.UploadAndPresent(make([]byte, 4*4*4)); err != nil {
		t.Errorf("valid frame rejected: %v", err)
	}
	if err := s.UploadAndPresent(make([]byte, 7)); err == nil {
		t.Error("undersized frame accepted")
	}
}

func TestStubSubmitFailureIsPerOutput(t *testing.T) {
	d := NewStubDevice(4096)
	a, _ := d.Bind(monitor.Output{ID: "DP-1"}, 4, 4)
	b, _ := d.Bind(monitor.Output{ID: "HDMI-1"}, 4, 4)

	boom := errors.New("submit failed")
	d.FailSubmits("DP-1", boom)

	frame := make([]byte, 4*4*4)
	if err := a.UploadAndPresent(frame); !errors.Is(err, boom) {
		t.Errorf("DP-1 submit error = %v, want injected failure", err)
	}
	if err := b.UploadAndPresent(frame); err != nil {
		t.Errorf("HDMI-1 affected by DP-1 failure: %v", err)
	}
}

func TestStubReleasedSurfaceRejectsUploads(t *testing.T) {
	d := NewStubDevice(4096)
	s, _ := d.Bind(testOutput, 4, 4)
	s.Release()
	if err := s.UploadAndPresent(make([]byte, 4*4*4)); err == nil {
		t.Error("released surface accepted a frame")
	}
}
