// Package engine is the central scheduler: it owns the output lifecycle,
// the video mapping, frame pacing and the pause policy. One goroutine runs
// the tick loop and is the only place GPU submission and mapping mutation
// happen; everything else (decode workers, the control channel, the pause
// poller) talks to it through channels.
package engine

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/kitsunet/livepaper/internal/config"
	"github.com/kitsunet/livepaper/internal/framesource"
	"github.com/kitsunet/livepaper/internal/monitor"
	"github.com/kitsunet/livepaper/internal/render"
	"github.com/kitsunet/livepaper/internal/videomap"
)

type CommandType string

const (
	CommandSet    CommandType = "set"
	CommandUnset  CommandType = "unset"
	CommandReload CommandType = "reload"
	CommandStop   CommandType = "stop"
	CommandStatus CommandType = "status"
)

// Command is one control-channel message. Commands apply in receipt order,
// one at a time, between ticks.
type Command struct {
	Type   CommandType
	Output string
	Path   string
	Reply  chan StatusReport
}

// OutputStatus describes one output in a status report.
type OutputStatus struct {
	ID       string `json:"name"`
	Video    string `json:"video"`
	State    string `json:"state"`
	Degraded bool   `json:"degraded"`
}

// StatusReport is the answer to a status query.
type StatusReport struct {
	Outputs      []OutputStatus `json:"monitors"`
	DefaultVideo string         `json:"default_video"`
	MapFile      string         `json:"map_file"`
	Quality      string         `json:"quality"`
	Width        int            `json:"width"`
	Height       int            `json:"height"`
	FPS          int            `json:"fps"`
	Speed        float64        `json:"speed"`
	HWAccel      string         `json:"hwaccel"`
	PauseEnabled bool           `json:"pause_enabled"`
	Paused       bool           `json:"paused"`
	Ticks        uint64         `json:"ticks"`
}

// outputPhase is the per-output lifecycle.
type outputPhase int

const (
	phaseUninitialized outputPhase = iota
	phaseActive
	phasePaused
	phaseTornDown
)

func (p outputPhase) String() string {
	switch p {
	case phaseActive:
		return "active"
	case phasePaused:
		return "paused"
	case phaseTornDown:
		return "torn_down"
	default:
		return "uninitialized"
	}
}

type outputState struct {
	output monitor.Output
	source *framesource.Source
	surf   render.Surface
	phase  outputPhase
}

// Engine drives the render loop. All fields are owned by the Run goroutine
// after Start; tests drive the unexported step methods directly instead.
type Engine struct {
	cfg      config.Settings
	registry monitor.Registry
	device   render.Device
	pauseCh  <-chan bool

	cmds    chan Command
	mapping videomap.Map
	outputs map[string]*outputState

	frameW, frameH int
	paused         bool
	ticks          uint64
}

// New builds an engine. pauseCh may be nil when the pause policy is
// disabled.
func New(cfg config.Settings, registry monitor.Registry, device render.Device, pauseCh <-chan bool) *Engine {
	frameW, frameH := cfg.Resolution(device.MaxTextureSize())
	return &Engine{
		cfg:      cfg,
		registry: registry,
		device:   device,
		pauseCh:  pauseCh,
		cmds:     make(chan Command, 16),
		mapping:  loadMapping(cfg),
		outputs:  make(map[string]*outputState),
		frameW:   frameW,
		frameH:   frameH,
	}
}

func loadMapping(cfg config.Settings) videomap.Map {
	mapFile := cfg.MapFile
	if mapFile == "" {
		mapFile = videomap.DefaultPath()
	}
	return videomap.Map{
		Entries: videomap.Merge(videomap.ParseInline(cfg.VideoMap), videomap.Load(mapFile)),
		Default: cfg.Video,
	}
}

// Enqueue delivers a command to the run loop. Never blocks the caller for
// long: the channel is buffered and drained every loop iteration.
func (e *Engine) Enqueue(cmd Command) {
	e.cmds <- cmd
}

// Status asks the run loop for a report. Safe from any goroutine.
func (e *Engine) Status() (StatusReport, error) {
	reply := make(chan StatusReport, 1)
	e.Enqueue(Command{Type: CommandStatus, Reply: reply})
	select {
	case report := <-reply:
		return report, nil
	case <-time.After(2 * time.Second):
		return StatusReport{}, fmt.Errorf("engine did not answer status query")
	}
}

// Stop asks the run loop to tear down and exit.
func (e *Engine) Stop() {
	e.Enqueue(Command{Type: CommandStop})
}

// Run provisions the initial outputs and drives the tick loop until stopped
// or until the debug frame cap is reached. It must own its goroutine.
func (e *Engine) Run() error {
	if err := e.bootstrap(); err != nil {
		return err
	}
	defer e.teardownAll()

	interval := time.Second / time.Duration(e.cfg.TickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Infof("engine running: tick=%v target=%dx%d fps=%d speed=%v quality=%s",
		interval, e.frameW, e.frameH, e.cfg.FPS, e.cfg.Speed, e.cfg.Quality)

	events := e.registry.Events()
	for {
		select {
		case cmd := <-e.cmds:
			if stop := e.handle(cmd); stop {
				log.Info("engine stopping on command")
				return nil
			}
		case ev, ok := <-events:
			if !ok {
				// Registry gone; keep rendering the outputs we have.
				log.Warn("output registry closed, hotplug watching stopped")
				events = nil
				continue
			}
			e.handleOutputEvent(ev)
		case active := <-e.pauseCh:
			e.setPaused(active)
		case <-ticker.C:
			e.tick()
			if e.cfg.MaxFrames > 0 && e.ticks >= e.cfg.MaxFrames {
				log.Infof("reached frame cap %d, exiting loop", e.cfg.MaxFrames)
				return nil
			}
		}
	}
}

// bootstrap provisions a frame source and render surface for every output
// present at startup.
func (e *Engine) bootstrap() error {
	outputs, err := e.registry.List()
	if err != nil {
		return fmt.Errorf("listing outputs: %w", err)
	}
	if len(outputs) == 0 {
		log.Warn("no outputs reported; engine will idle until one appears")
	}
	for _, out := range outputs {
		e.provision(out)
	}
	return nil
}

// provision creates the frame source and surface for one output. Failures
// are isolated: a broken output is skipped, the rest keep rendering.
func (e *Engine) provision(out monitor.Output) {
	if st, ok := e.outputs[out.ID]; ok && st.phase != phaseTornDown {
		log.Warnf("output %s already provisioned", out.ID)
		return
	}

	surf, err := e.device.Bind(out, e.frameW, e.frameH)
	if err != nil {
		log.Errorf("binding surface for %s failed, output skipped: %v", out.ID, err)
		return
	}
	src, err := e.openSource(out.ID)
	if err != nil {
		log.Errorf("frame source for %s failed, output skipped: %v", out.ID, err)
		surf.Release()
		return
	}

	phase := phaseActive
	if e.paused {
		phase = phasePaused
	}
	e.outputs[out.ID] = &outputState{output: out, source: src, surf: surf, phase: phase}
	log.Infof("output %s provisioned: %dx%d video=%s", out.ID, out.Width, out.Height, describe(src))
}

// openSource builds the frame source for an output from the current
// mapping, falling back to the configured fallback video when the mapped
// file is unreadable, and to the procedural pattern when nothing is usable.
func (e *Engine) openSource(outputID string) (*framesource.Source, error) {
	path := e.mapping.Resolve(outputID)
	if path != "" && !readable(path) && e.cfg.FallbackVideo != "" {
		log.Warnf("video for %s not readable (%s), using fallback %s", outputID, path, e.cfg.FallbackVideo)
		path = e.cfg.FallbackVideo
	}
	return framesource.Open(path, e.frameW, e.frameH, framesource.Options{
		FPS:     e.cfg.FPS,
		Speed:   e.cfg.Speed,
		HWAccel: e.cfg.HWAccel,
		Shader:  e.cfg.Shader,
	})
}

// tick is one scheduler iteration: pull one frame per active output and
// present it. Paused ticks do nothing but still count toward the frame cap.
func (e *Engine) tick() {
	e.ticks++
	if e.paused {
		return
	}
	for id, st := range e.outputs {
		if st.phase != phaseActive {
			continue
		}
		frame, _ := st.source.Next()
		if err := st.surf.UploadAndPresent(frame); err != nil {
			// Submission errors are isolated per output per tick.
			log.Errorf("present failed for %s, skipping this tick: %v", id, err)
		}
	}
}

// handle applies one control command. Returns true on stop.
func (e *Engine) handle(cmd Command) bool {
	switch cmd.Type {
	case CommandSet:
		e.applySet(cmd.Output, cmd.Path)
	case CommandUnset:
		e.applyUnset(cmd.Output)
	case CommandReload:
		e.applyReload()
	case CommandStatus:
		if cmd.Reply != nil {
			cmd.Reply <- e.statusReport()
		}
	case CommandStop:
		return true
	default:
		log.Errorf("unknown engine command %q", cmd.Type)
	}
	return false
}

// applySet swaps the frame source of one output. The swap happens here,
// between ticks, so it is atomic with respect to rendering, and no other
// output is touched.
func (e *Engine) applySet(outputID, path string) {
	e.mapping.Entries[outputID] = path
	e.rebuild(outputID)
}

func (e *Engine) applyUnset(outputID string) {
	if _, ok := e.mapping.Entries[outputID]; !ok {
		log.Infof("no mapping for %s", outputID)
		return
	}
	delete(e.mapping.Entries, outputID)
	e.rebuild(outputID)
}

// applyReload re-reads the mapping file and rebuilds only the outputs whose
// resolved video changed.
func (e *Engine) applyReload() {
	old := e.mapping
	e.mapping = loadMapping(e.cfg)
	for id := range e.outputs {
		if old.Resolve(id) != e.mapping.Resolve(id) {
			e.rebuild(id)
		}
	}
	log.Infof("mapping reloaded: %d entries", len(e.mapping.Entries))
}

// rebuild tears down and reopens the frame source for one output, keeping
// its render surface.
func (e *Engine) rebuild(outputID string) {
	st, ok := e.outputs[outputID]
	if !ok || st.phase == phaseTornDown {
		return
	}
	st.source.Close()
	src, err := e.openSource(outputID)
	if err != nil {
		log.Errorf("rebuilding frame source for %s failed: %v", outputID, err)
		// Keep the output alive on the pattern rather than tearing it down.
		src, err = framesource.Open("", e.frameW, e.frameH, framesource.Options{
			FPS: e.cfg.FPS, Speed: e.cfg.Speed, Shader: e.cfg.Shader,
		})
		if err != nil {
			log.Errorf("pattern source for %s failed: %v", outputID, err)
			e.teardownOutput(outputID)
			return
		}
	}
	st.source = src
	log.Infof("output %s now playing %s", outputID, describe(src))
}

// setPaused flips every output between Active and Paused together.
func (e *Engine) setPaused(active bool) {
	if e.paused == active {
		return
	}
	e.paused = active
	for _, st := range e.outputs {
		switch {
		case active && st.phase == phaseActive:
			st.phase = phasePaused
		case !active && st.phase == phasePaused:
			st.phase = phaseActive
		}
	}
	if active {
		log.Info("fullscreen application detected, rendering paused")
	} else {
		log.Info("fullscreen application gone, rendering resumed")
	}
}

func (e *Engine) handleOutputEvent(ev monitor.Event) {
	switch ev.Kind {
	case monitor.OutputAdded:
		log.Infof("output added: %s (%dx%d)", ev.Output.ID, ev.Output.Width, ev.Output.Height)
		e.provision(ev.Output)
	case monitor.OutputRemoved:
		log.Infof("output removed: %s", ev.Output.ID)
		e.teardownOutput(ev.Output.ID)
	}
}

// teardownOutput cancels the decode worker, waits for it, then releases the
// surface. Worker first: GPU resources must not be released under a live
// producer.
func (e *Engine) teardownOutput(outputID string) {
	st, ok := e.outputs[outputID]
	if !ok || st.phase == phaseTornDown {
		return
	}
	st.source.Close()
	st.surf.Release()
	st.phase = phaseTornDown
	delete(e.outputs, outputID)
}

func (e *Engine) teardownAll() {
	for id := range e.outputs {
		e.teardownOutput(id)
	}
}

func (e *Engine) statusReport() StatusReport {
	report := StatusReport{
		DefaultVideo: e.mapping.Default,
		MapFile:      e.cfg.MapFile,
		Quality:      string(e.cfg.Quality),
		Width:        e.frameW,
		Height:       e.frameH,
		FPS:          e.cfg.FPS,
		Speed:        e.cfg.Speed,
		HWAccel:      string(e.cfg.HWAccel),
		PauseEnabled: e.cfg.PauseEnabled,
		Paused:       e.paused,
		Ticks:        e.ticks,
	}
	for id, st := range e.outputs {
		report.Outputs = append(report.Outputs, OutputStatus{
			ID:       id,
			Video:    st.source.Path(),
			State:    st.phase.String(),
			Degraded: st.source.Degraded(),
		})
	}
	sort.Slice(report.Outputs, func(i, j int) bool {
		return report.Outputs[i].ID < report.Outputs[j].ID
	})
	return report
}

func describe(src *framesource.Source) string {
	if src.Path() == "" {
		return "<procedural>"
	}
	return src.Path()
}

func readable(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
