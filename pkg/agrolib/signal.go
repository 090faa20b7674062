package agrolib

import "time"

// Signal identifies one kind of broadcast on the Bus. The set is closed:
// agromanagement documents may only reference signals declared here, and
// unknown names fail with a ValidationError when dispatchers are built.
type Signal string

const (
	SigCropStart  Signal = "crop_start"
	SigCropFinish Signal = "crop_finish"
	SigTerminate  Signal = "terminate"
	SigOutput     Signal = "output"
	SigIrrigate   Signal = "irrigate"
	SigApplyNPK   Signal = "apply_npk"
	SigApplyN     Signal = "apply_n"
	SigApplyP     Signal = "apply_p"
	SigApplyK     Signal = "apply_k"
)

// ActionSignals are the farm-action signals event tables usually fire.
// Lifecycle signals (crop_start, crop_finish, terminate) are not listed
// here but remain valid table targets.
var ActionSignals = []Signal{
	SigOutput, SigIrrigate, SigApplyNPK, SigApplyN, SigApplyP, SigApplyK,
}

var knownSignals = map[Signal]bool{
	SigCropStart:  true,
	SigCropFinish: true,
	SigTerminate:  true,
	SigOutput:     true,
	SigIrrigate:   true,
	SigApplyNPK:   true,
	SigApplyN:     true,
	SigApplyP:     true,
	SigApplyK:     true,
}

// ParseSignal resolves a configured signal name against the closed signal
// set.
func ParseSignal(name string) (Signal, error) {
	s := Signal(name)
	if !knownSignals[s] {
		return "", newValidationError("signal %q is not defined", name)
	}
	return s, nil
}

// CropStartInfo is attached to crop_start events.
type CropStartInfo struct {
	CropID    string        `json:"crop_id"`
	StartType CropStartType `json:"start_type"`
	EndType   CropEndType   `json:"end_type"`
}

// CropFinishInfo is attached to crop_finish events.
type CropFinishInfo struct {
	Reason FinishReason `json:"reason"`
	Delete bool         `json:"delete"`
}

// Event is one broadcast delivered synchronously to Bus subscribers.
// Params carries the payload of table-fired events; Crop and Finish are
// set only on the corresponding lifecycle signals.
type Event struct {
	Signal Signal          `json:"signal"`
	Day    time.Time       `json:"day"`
	Params map[string]any  `json:"params,omitempty"`
	Crop   *CropStartInfo  `json:"crop,omitempty"`
	Finish *CropFinishInfo `json:"finish,omitempty"`
}

// HandlerFunc receives events fired on the Bus.
type HandlerFunc func(e Event)

// Bus is a synchronous publish/subscribe channel. Emit runs every
// subscriber on the caller's goroutine and returns only after all of
// them completed, which keeps event ordering within one tick
// deterministic: crop calendar first, then timed dispatchers, then state
// dispatchers, each in list order.
type Bus struct {
	subs map[Signal][]HandlerFunc
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Signal][]HandlerFunc)}
}

// Subscribe registers h for s. Handlers run in registration order.
func (b *Bus) Subscribe(s Signal, h HandlerFunc) {
	b.subs[s] = append(b.subs[s], h)
}

// Emit broadcasts e to all subscribers of e.Signal.
func (b *Bus) Emit(e Event) {
	for _, h := range b.subs[e.Signal] {
		h(e)
	}
}
