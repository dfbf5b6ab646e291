// Package framesource produces raw RGBA frames for one output, either from
// a looping video decoded by an ffmpeg child process or from a procedural
// pattern when no video is configured. The decode worker is the only part
// of the engine that runs outside the scheduler goroutine; it feeds a small
// latest-wins buffer that the scheduler drains without ever blocking.
package framesource

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/kitsunet/livepaper/internal/config"
)

const (
	defaultBufferDepth   = 3
	defaultMaxRestarts   = 3
	defaultRestartWindow = 30 * time.Second
	closeTimeout         = 2 * time.Second
)

// Options tunes one frame source.
type Options struct {
	FPS     int
	Speed   float64
	HWAccel config.HWAccel

	// Shader selects the animated procedural pattern; when false the
	// fallback is a static fill.
	Shader bool

	// BufferDepth is the frame buffer size between the decode worker and
	// the scheduler. Oldest frames are dropped when it is full.
	BufferDepth int

	// MaxRestarts bounds worker restarts per RestartWindow before the
	// source degrades to the procedural pattern.
	MaxRestarts   int
	RestartWindow time.Duration
}

func (o *Options) normalize() error {
	if o.FPS <= 0 {
		return fmt.Errorf("fps must be > 0, got %d", o.FPS)
	}
	if o.Speed <= 0 {
		return fmt.Errorf("speed must be > 0, got %v", o.Speed)
	}
	if o.BufferDepth < 1 {
		o.BufferDepth = defaultBufferDepth
	}
	if o.MaxRestarts < 1 {
		o.MaxRestarts = defaultMaxRestarts
	}
	if o.RestartWindow <= 0 {
		o.RestartWindow = defaultRestartWindow
	}
	return nil
}

// spawnFunc starts one decode worker and returns its frame stream. Swapped
// out in tests.
type spawnFunc func(path string, width, height int, opts Options) (worker, error)

// worker is a running decode process.
type worker interface {
	Frames() io.Reader
	Kill()
	Wait() error
}

// Source produces frames for one output. Next and Close are called only
// from the scheduler goroutine; the reader goroutine owns the worker.
type Source struct {
	path          string
	width, height int
	opts          Options
	spawn         spawnFunc

	frames  chan []byte
	last    []byte
	pattern *Pattern

	mu       sync.Mutex
	wk       worker
	degraded bool
	closed   bool

	stop chan struct{}
	done chan struct{}
}

// Open starts a frame source for path at the given target size. An empty
// path selects the procedural pattern; an unreadable path logs a warning
// and does the same rather than failing the output.
func Open(path string, width, height int, opts Options) (*Source, error) {
	return open(path, width, height, opts, spawnFFmpeg)
}

func open(path string, width, height int, opts Options, spawn spawnFunc) (*Source, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("target size must be positive, got %dx%d", width, height)
	}
	if err := opts.normalize(); err != nil {
		return nil, err
	}

	s := &Source{
		path:    path,
		width:   width,
		height:  height,
		opts:    opts,
		spawn:   spawn,
		frames:  make(chan []byte, opts.BufferDepth),
		pattern: NewPattern(width, height, opts.Shader),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	if path == "" {
		close(s.done)
		return s, nil
	}
	if _, err := os.Stat(path); err != nil {
		log.Warnf("video not readable, degrading to procedural pattern: %s: %v", path, err)
		s.degraded = true
		close(s.done)
		return s, nil
	}

	wk, err := spawn(path, width, height, opts)
	if err != nil {
		log.Warnf("decode worker failed to start, degrading to procedural pattern: %s: %v", path, err)
		s.degraded = true
		close(s.done)
		return s, nil
	}
	s.wk = wk
	go s.readLoop(wk)
	return s, nil
}

// Path returns the video path this source decodes; empty for the pattern.
func (s *Source) Path() string { return s.path }

// Degraded reports whether the decode worker exceeded its restart budget
// and the source fell back to the procedural pattern.
func (s *Source) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

// Next returns the frame to present this tick. It never blocks: with no new
// frame ready it repeats the last delivered one, and before any frame has
// arrived (or after degrading) it synthesizes a pattern frame. fresh is
// true when a newly decoded frame was consumed.
func (s *Source) Next() (frame []byte, fresh bool) {
	select {
	case f := <-s.frames:
		s.last = f
		return f, true
	default:
	}
	if s.last != nil && !s.Degraded() {
		return s.last, false
	}
	return s.pattern.Frame(), false
}

// Close terminates the decode worker and waits, bounded, for it to exit.
// Safe to call more than once; required on every teardown path.
func (s *Source) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	wk := s.wk
	s.mu.Unlock()

	close(s.stop)
	if wk != nil {
		wk.Kill()
	}
	select {
	case <-s.done:
	case <-time.After(closeTimeout):
		log.Warnf("decode worker for %s did not exit within %v", s.path, closeTimeout)
	}
}

// readLoop pulls fixed-size frames from the worker and publishes them
// latest-wins. A worker death restarts it up to MaxRestarts per
// RestartWindow, then degrades the source.
func (s *Source) readLoop(wk worker) {
	defer close(s.done)

	frameSize := s.width * s.height * 4
	restarts := 0
	windowStart := time.Now()

	for {
		frame := make([]byte, frameSize)
		_, err := io.ReadFull(wk.Frames(), frame)
		if err == nil {
			s.publish(frame)
			continue
		}

		wk.Kill()
		_ = wk.Wait()
		select {
		case <-s.stop:
			return
		default:
		}

		if time.Since(windowStart) > s.opts.RestartWindow {
			restarts = 0
			windowStart = time.Now()
		}
		restarts++
		if restarts > s.opts.MaxRestarts {
			log.Warnf("decode worker for %s failed %d times within %v, degrading to procedural pattern",
				s.path, restarts, s.opts.RestartWindow)
			s.mu.Lock()
			s.degraded = true
			s.wk = nil
			s.mu.Unlock()
			return
		}

		log.Warnf("decode worker for %s died (%v), restarting (%d/%d)",
			s.path, err, restarts, s.opts.MaxRestarts)
		next, err := s.spawn(s.path, s.width, s.height, s.opts)
		if err != nil {
			log.Warnf("decode worker restart failed for %s: %v", s.path, err)
			s.mu.Lock()
			s.degraded = true
			s.wk = nil
			s.mu.Unlock()
			return
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			next.Kill()
			_ = next.Wait()
			return
		}
		s.wk = next
		s.mu.Unlock()
		wk = next
	}
}

// publish enqueues a frame, dropping the oldest buffered one when full.
// Frames may be dropped but never reordered.
func (s *Source) publish(frame []byte) {
	select {
	case s.frames <- frame:
		return
	default:
	}
	select {
	case <-s.frames:
	default:
	}
	select {
	case s.frames <- frame:
	default:
	}
}
