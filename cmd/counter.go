package cmd

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/vbauerster/mpb/v8"
)

type TickCounter struct {
	ticker *time.Ticker
	mu     *sync.RWMutex
	// ticks per cycle
	tpc int64
	// refresh rate
	refreshRate time.Duration
	// Bar
	bar *mpb.Bar
}

func NewTickCounter(refreshRate time.Duration) *TickCounter {
	tc := TickCounter{
		ticker:      time.NewTicker(refreshRate),
		mu:          &sync.RWMutex{},
		refreshRate: refreshRate,
	}
	return &tc
}

func (t *TickCounter) SetBar(bar *mpb.Bar) {
	t.mu.Lock()
	t.bar = bar
	t.mu.Unlock()
}

func (t *TickCounter) Start() {
	go t.worker()
}

func (t *TickCounter) IncrBy(n int) {
	atomic.AddInt64(&t.tpc, int64(n))
}

func (t *TickCounter) Stop() {
	t.ticker.Stop()
}

func (t *TickCounter) worker() {
	for range t.ticker.C {
		t.mu.RLock()
		bar := t.bar
		t.mu.RUnlock()
		// Ticks keep accumulating until a bar is attached.
		if bar == nil {
			continue
		}
		n := atomic.SwapInt64(&t.tpc, 0)
		if n == 0 {
			continue
		}
		bar.EwmaIncrInt64(n, t.refreshRate)
	}
}
