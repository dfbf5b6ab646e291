// Package pausepolicy decides whether rendering should be globally
// suspended because a foreground fullscreen application (typically a Steam
// or Proton game) is running. Detection is host-specific and sits behind
// the Detector interface; the engine only consumes pause transitions from
// a channel.
package pausepolicy

import (
	"time"
)

// Detector probes whether a recognized fullscreen application is active.
// Probe failures must report inactive, never an error: a broken detector
// degrades to "keep rendering".
type Detector interface {
	Poll() bool
}

// Disabled always reports inactive.
type Disabled struct{}

func (Disabled) Poll() bool { return false }

// Poller runs a Detector on its own interval, independent of the render
// tick, and delivers state transitions to the scheduler over a channel.
type Poller struct {
	detector Detector
	interval time.Duration
	changes  chan bool
	stop     chan struct{}
	done     chan struct{}
}

func NewPoller(detector Detector, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 1500 * time.Millisecond
	}
	return &Poller{
		detector: detector,
		interval: interval,
		changes:  make(chan bool, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Changes delivers true when the policy becomes active (pause) and false
// when it clears (resume). Only transitions are sent.
func (p *Poller) Changes() <-chan bool { return p.changes }

// Start launches the poll loop.
func (p *Poller) Start() {
	go p.run()
}

func (p *Poller) Stop() {
	close(p.stop)
	<-p.done
}

func (p *Poller) run() {
	defer close(p.done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	last := false
	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			active := p.detector.Poll()
			if active == last {
				continue
			}
			last = active
			select {
			case p.changes <- active:
			case <-p.stop:
				return
			}
		}
	}
}
