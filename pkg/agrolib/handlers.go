package agrolib

import "time"

type (
	// CropStartHandlerFunc runs when a crop cycle starts.
	CropStartHandlerFunc func(day time.Time, crop CropStartInfo)
	// CropFinishHandlerFunc runs when a crop cycle finishes.
	CropFinishHandlerFunc func(day time.Time, finish CropFinishInfo)
	// ActionHandlerFunc runs for every farm-action signal fired by an
	// event table, with the table entry's payload.
	ActionHandlerFunc func(sig Signal, day time.Time, params map[string]any)
	// TerminateHandlerFunc runs once when the campaign queue is
	// exhausted.
	TerminateHandlerFunc func(day time.Time)
	// TickHandlerFunc runs after every completed tick with a snapshot
	// of the kiosk.
	TickHandlerFunc func(day time.Time, vars map[string]float64)
)

// Handlers bundles the callbacks an engine consumer can attach to a run.
// All fields are optional; nil fields are replaced with no-ops.
type Handlers struct {
	CropStartHandler  CropStartHandlerFunc
	CropFinishHandler CropFinishHandlerFunc
	ActionHandler     ActionHandlerFunc
	TerminateHandler  TerminateHandlerFunc
	TickHandler       TickHandlerFunc
}

func (h *Handlers) setDefault() {
	if h.CropStartHandler == nil {
		h.CropStartHandler = func(day time.Time, crop CropStartInfo) {}
	}
	if h.CropFinishHandler == nil {
		h.CropFinishHandler = func(day time.Time, finish CropFinishInfo) {}
	}
	if h.ActionHandler == nil {
		h.ActionHandler = func(sig Signal, day time.Time, params map[string]any) {}
	}
	if h.TerminateHandler == nil {
		h.TerminateHandler = func(day time.Time) {}
	}
	if h.TickHandler == nil {
		h.TickHandler = func(day time.Time, vars map[string]float64) {}
	}
}
