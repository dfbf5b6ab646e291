package monitor

import "sync"

// StubRegistry serves a fixed output list and lets tests (or stub mode)
// inject add/remove events by hand.
type StubRegistry struct {
	mu      sync.Mutex
	outputs []Output
	events  chan Event
	closed  bool
}

// NewStubRegistry builds a registry with the given outputs. With none given
// it serves one synthetic 1920x1080 output, which is what the engine uses
// when the display backend is unavailable.
func NewStubRegistry(outputs ...Output) *StubRegistry {
	if len(outputs) == 0 {
		outputs = []Output{{ID: "STUB-1", Width: 1920, Height: 1080, Scale: 1.0}}
	}
	return &StubRegistry{
		outputs: outputs,
		events:  make(chan Event, 8),
	}
}

func (r *StubRegistry) List() ([]Output, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Output, len(r.outputs))
	copy(out, r.outputs)
	return out, nil
}

func (r *StubRegistry) Events() <-chan Event { return r.events }

func (r *StubRegistry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.closed {
		r.closed = true
		close(r.events)
	}
}

// AddOutput attaches a new output and emits its add event.
func (r *StubRegistry) AddOutput(out Output) {
	r.mu.Lock()
	r.outputs = append(r.outputs, out)
	closed := r.closed
	r.mu.Unlock()
	if !closed {
		r.events <- Event{Kind: OutputAdded, Output: out}
	}
}

// RemoveOutput detaches an output by id and emits its remove event.
func (r *StubRegistry) RemoveOutput(id string) {
	r.mu.Lock()
	var removed *Output
	kept := r.outputs[:0]
	for _, out := range r.outputs {
		if out.ID == id && removed == nil {
			o := out
			removed = &o
			continue
		}
		kept = append(kept, out)
	}
	r.outputs = kept
	closed := r.closed
	r.mu.Unlock()
	if removed != nil && !closed {
		r.events <- Event{Kind: OutputRemoved, Output: *removed}
	}
}
