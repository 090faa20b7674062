package server

import (
	"net"
	"sync"
)

// SyncConn wraps a net.Conn with independent read and write locks so the
// request loop and ticking broadcasts can share one client connection.
type SyncConn struct {
	Conn     net.Conn
	rmu, wmu sync.Mutex
}

func NewSyncConn(conn net.Conn) *SyncConn {
	return &SyncConn{
		Conn: conn,
	}
}

// Write frames b and sends it.
func (s *SyncConn) Write(b []byte) error {
	return write(&s.wmu, s.Conn, b)
}

// Read receives one framed message.
func (s *SyncConn) Read() ([]byte, error) {
	return read(&s.rmu, s.Conn)
}
