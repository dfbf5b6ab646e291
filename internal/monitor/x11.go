package monitor

import (
	"fmt"
	"sort"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/charmbracelet/log"
)

// X11Registry enumerates outputs over RandR and watches for screen changes.
type X11Registry struct {
	conn   *xgb.Conn
	root   xproto.Window
	events chan Event
	done   chan struct{}
	known  map[string]Output
}

// NewX11Registry connects to the X server named by DISPLAY. Returns
// ErrBackendUnavailable when no connection can be made.
func NewX11Registry() (*X11Registry, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if err := randr.Init(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: randr: %v", ErrBackendUnavailable, err)
	}

	root := xproto.Setup(conn).DefaultScreen(conn).Root
	r := &X11Registry{
		conn:   conn,
		root:   root,
		events: make(chan Event, 8),
		done:   make(chan struct{}),
		known:  make(map[string]Output),
	}

	outputs, err := r.List()
	if err != nil {
		conn.Close()
		return nil, err
	}
	for _, out := range outputs {
		r.known[out.ID] = out
	}

	if err := randr.SelectInputChecked(conn, root,
		randr.NotifyMaskScreenChange|randr.NotifyMaskOutputChange).Check(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: randr select input: %v", ErrBackendUnavailable, err)
	}
	go r.watch()
	return r, nil
}

// List queries RandR for connected outputs with an active CRTC.
func (r *X11Registry) List() ([]Output, error) {
	resources, err := randr.GetScreenResourcesCurrent(r.conn, r.root).Reply()
	if err != nil {
		return nil, fmt.Errorf("randr screen resources: %w", err)
	}

	var outputs []Output
	for _, id := range resources.Outputs {
		info, err := randr.GetOutputInfo(r.conn, id, 0).Reply()
		if err != nil {
			log.Warnf("randr output info failed: %v", err)
			continue
		}
		if info.Connection != randr.ConnectionConnected || info.Crtc == 0 {
			continue
		}
		crtc, err := randr.GetCrtcInfo(r.conn, info.Crtc, 0).Reply()
		if err != nil {
			log.Warnf("randr crtc info failed for %s: %v", info.Name, err)
			continue
		}
		outputs = append(outputs, Output{
			ID:     string(info.Name),
			Width:  int(crtc.Width),
			Height: int(crtc.Height),
			Scale:  1.0,
		})
	}
	sort.Slice(outputs, func(i, j int) bool { return outputs[i].ID < outputs[j].ID })
	return outputs, nil
}

func (r *X11Registry) Events() <-chan Event { return r.events }

func (r *X11Registry) Close() {
	close(r.done)
	r.conn.Close()
}

// watch blocks on X events and diffs the output set on every screen change.
func (r *X11Registry) watch() {
	for {
		ev, err := r.conn.WaitForEvent()
		select {
		case <-r.done:
			return
		default:
		}
		if err != nil {
			log.Warnf("x11 event error: %v", err)
			continue
		}
		if ev == nil {
			// Connection gone; the engine keeps its last known outputs.
			log.Warn("x11 connection closed, output watching stopped")
			return
		}
		switch ev.(type) {
		case randr.ScreenChangeNotifyEvent, randr.NotifyEvent:
			r.diff()
		}
	}
}

func (r *X11Registry) diff() {
	outputs, err := r.List()
	if err != nil {
		log.Warnf("output relist failed: %v", err)
		return
	}
	current := make(map[string]Output, len(outputs))
	for _, out := range outputs {
		current[out.ID] = out
		if _, ok := r.known[out.ID]; !ok {
			r.emit(Event{Kind: OutputAdded, Output: out})
		}
	}
	for id, out := range r.known {
		if _, ok := current[id]; !ok {
			r.emit(Event{Kind: OutputRemoved, Output: out})
		}
	}
	r.known = current
}

func (r *X11Registry) emit(ev Event) {
	select {
	case r.events <- ev:
	case <-r.done:
	}
}
