//go:build windows

package agrocli

import (
	"net"

	"github.com/agroslabs/agros/common"
)

// pipePath returns the Windows named pipe path, honouring the same
// environment override the daemon uses.
func pipePath() string {
	return common.PipePath()
}

// getConnectionPath returns the address probed before spawning a
// daemon: the named pipe, or the TCP address when TCP is forced.
func getConnectionPath() string {
	if forceTCP() {
		return tcpAddress()
	}
	return pipePath()
}

// isDaemonRunning reports whether something accepts connections at
// path. The pipe probe falls back to TCP so a daemon that listens on
// TCP only is still found.
func isDaemonRunning(path string) bool {
	if forceTCP() {
		conn, err := net.DialTimeout("tcp", path, socketDialTimeout)
		if err != nil {
			return false
		}
		conn.Close()
		return true
	}
	timeout := socketDialTimeout
	conn, err := dialPipeFunc(path, &timeout)
	if err != nil {
		conn, err = net.DialTimeout("tcp", tcpAddress(), socketDialTimeout)
	}
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
