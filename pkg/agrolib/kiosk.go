package agrolib

import "sync"

// Kiosk is the shared variable registry state-event dispatchers read
// from. During a run the engine goroutine is the only writer; the mutex
// exists so the daemon can snapshot values for status reporting while a
// run is in progress.
type Kiosk struct {
	mu   sync.RWMutex
	vars map[string]float64
}

// NewKiosk creates an empty registry.
func NewKiosk() *Kiosk {
	return &Kiosk{vars: make(map[string]float64)}
}

// Set stores value under name.
func (k *Kiosk) Set(name string, value float64) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.vars[name] = value
}

// Get returns the value stored under name.
func (k *Kiosk) Get(name string) (float64, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	v, ok := k.vars[name]
	return v, ok
}

// Contains reports whether name is present.
func (k *Kiosk) Contains(name string) bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	_, ok := k.vars[name]
	return ok
}

// Delete removes name. Removing an absent name is a no-op.
func (k *Kiosk) Delete(name string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.vars, name)
}

// Snapshot returns a copy of all variables.
func (k *Kiosk) Snapshot() map[string]float64 {
	k.mu.RLock()
	defer k.mu.RUnlock()
	vars := make(map[string]float64, len(k.vars))
	for name, v := range k.vars {
		vars[name] = v
	}
	return vars
}
