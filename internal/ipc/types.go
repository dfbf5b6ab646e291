package ipc

import (
	"github.com/kitsunet/livepaper/internal/engine"
)

// Controller is the engine-side surface the control channel needs: ordered
// command delivery plus a synchronous status query.
type Controller interface {
	Enqueue(engine.Command)
	Status() (engine.StatusReport, error)
}

// SetRequest maps one output to a video path.
type SetRequest struct {
	Monitor string `json:"monitor"`
	Video   string `json:"video"`
}

// UnsetRequest removes one output mapping.
type UnsetRequest struct {
	Monitor string `json:"monitor"`
}

// Response is the generic command acknowledgement.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
