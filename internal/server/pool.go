package server

import (
	"log"
	"sync"
)

// Pool tracks which client connections are attached to which run, and
// keeps the last error of each run so late attachers still see it.
// Broadcast writes happen outside the pool lock; per-connection ordering
// is guaranteed by the SyncConn write lock instead.
type Pool struct {
	mu sync.RWMutex
	m  map[string][]*SyncConn
	e  map[string]*Error
	l  *log.Logger
}

func NewPool(l *log.Logger) *Pool {
	return &Pool{
		m: make(map[string][]*SyncConn),
		e: make(map[string]*Error),
		l: l,
	}
}

// AddRun registers a run with the pool. A nil conn registers the run
// with no attached connections, which is how scheduled and rpc-started
// runs begin.
func (p *Pool) AddRun(uid string, conn *SyncConn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if conn == nil {
		p.m[uid] = []*SyncConn{}
		return
	}
	p.m[uid] = []*SyncConn{conn}
}

// AddConnection attaches another connection to an already registered
// run.
func (p *Pool) AddConnection(uid string, conn *SyncConn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.m[uid] = append(p.m[uid], conn)
}

// HasRun reports whether the run is registered, attached or not.
func (p *Pool) HasRun(uid string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.m[uid]
	return ok
}

// Connections returns the number of connections attached to the run.
func (p *Pool) Connections(uid string) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.m[uid])
}

// Broadcast sends data to every connection attached to the run.
// Connections that fail to take the write are closed and dropped.
func (p *Pool) Broadcast(uid string, data []byte) {
	p.mu.RLock()
	conns := make([]*SyncConn, len(p.m[uid]))
	copy(conns, p.m[uid])
	p.mu.RUnlock()

	var failed []*SyncConn
	for _, conn := range conns {
		if err := conn.Write(data); err != nil {
			if p.l != nil {
				p.l.Printf("broadcast to %s failed: %v", uid, err)
			}
			failed = append(failed, conn)
		}
	}
	for _, conn := range failed {
		p.removeConn(uid, conn)
	}
}

// RemoveRun closes every attached connection and forgets the run and
// its error.
func (p *Pool) RemoveRun(uid string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, conn := range p.m[uid] {
		_ = conn.Conn.Close()
	}
	delete(p.m, uid)
	delete(p.e, uid)
}

// DetachConnections drops the run's connections without closing them,
// used when a run ends but the clients keep their control connection.
func (p *Pool) DetachConnections(uid string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.m[uid] = nil
}

// WriteError records an error for the run. Critical errors are sticky:
// a later warning does not overwrite one.
func (p *Pool) WriteError(uid string, errType ErrorType, errMessage string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	err, ok := p.e[uid]
	if ok && err.Type == ErrorTypeCritical && errType != ErrorTypeCritical {
		return
	}
	p.e[uid] = &Error{errType, errMessage}
}

// ForceWriteError records an error regardless of what is already there.
func (p *Pool) ForceWriteError(uid string, errType ErrorType, errMessage string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.e[uid] = &Error{errType, errMessage}
}

// GetError returns the recorded error of the run, or nil.
func (p *Pool) GetError(uid string) *Error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.e[uid]
}

func (p *Pool) removeConn(uid string, conn *SyncConn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	conns := p.m[uid]
	for i, c := range conns {
		if c != conn {
			continue
		}
		_ = c.Conn.Close()
		// shift the last connection to the freed slot
		conns[i] = conns[len(conns)-1]
		p.m[uid] = conns[:len(conns)-1]
		return
	}
}
