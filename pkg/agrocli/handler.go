package agrocli

import (
	"encoding/json"

	"github.com/agroslabs/agros/common"
)

// Handler defines the interface for processing daemon updates.
// Implementations receive raw JSON messages and are responsible for
// unmarshaling and processing them appropriately.
type Handler interface {
	Handle(json.RawMessage) error
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(json.RawMessage) error

// Handle calls f(m).
func (f HandlerFunc) Handle(m json.RawMessage) error {
	return f(m)
}

// NewTickingHandler creates a new handler for run progress updates.
// The action parameter filters updates to only those matching the
// specified run action; pass an empty string to receive all actions.
// The callback is invoked for each matching update.
func NewTickingHandler(action common.RunAction, callback func(*common.TickingResponse) error) *TickingHandler {
	return &TickingHandler{
		Action:   action,
		Callback: callback,
	}
}

// TickingHandler processes run progress updates from the daemon. It
// filters updates by action type and invokes a callback for matching
// updates.
type TickingHandler struct {
	Action   common.RunAction
	Callback func(*common.TickingResponse) error
}

// Handle processes a raw JSON ticking message. It unmarshals the
// message, checks if it matches the configured action filter, and
// invokes the callback if applicable.
func (h *TickingHandler) Handle(m json.RawMessage) error {
	var v common.TickingResponse
	err := json.Unmarshal(m, &v)
	if err != nil {
		return err
	}
	if h.Action != "" && v.Action != h.Action {
		return nil
	}
	return h.Callback(&v)
}
