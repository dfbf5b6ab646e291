// Package monitor discovers display outputs and reports add/remove changes
// to the engine. The X11 registry talks RandR; when no display server is
// reachable the engine falls back to the stub registry so the render loop
// stays exercisable headless.
package monitor

import "errors"

// ErrBackendUnavailable means no display-server connection could be
// established. The caller decides whether to fall back to the stub registry.
var ErrBackendUnavailable = errors.New("display backend unavailable")

// Output is one logical display device.
type Output struct {
	ID     string
	Width  int
	Height int
	Scale  float64
}

type EventKind int

const (
	OutputAdded EventKind = iota
	OutputRemoved
)

// Event reports one output appearing or disappearing.
type Event struct {
	Kind   EventKind
	Output Output
}

// Registry enumerates outputs and streams change events.
type Registry interface {
	// List returns the currently connected outputs in stable order.
	List() ([]Output, error)
	// Events delivers add/remove notifications until Close.
	Events() <-chan Event
	Close()
}
