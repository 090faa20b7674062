//go:build !windows

package agrocli

import (
	"net"
	"os"
	"path/filepath"

	"github.com/agroslabs/agros/common"
)

// socketPath returns the unix socket the daemon listens on, honouring
// the same environment override the daemon uses.
func socketPath() string {
	if path := os.Getenv(common.SocketPathEnv); path != "" {
		return path
	}
	return filepath.Join(os.TempDir(), "agros.sock")
}

// getConnectionPath returns the address probed before spawning a
// daemon: the unix socket, or the TCP address when TCP is forced.
func getConnectionPath() string {
	if forceTCP() {
		return tcpAddress()
	}
	return socketPath()
}

// isDaemonRunning reports whether something accepts connections at
// path. The unix probe falls back to TCP so a daemon that listens on
// TCP only is still found.
func isDaemonRunning(path string) bool {
	network := "unix"
	if forceTCP() {
		network = "tcp"
	}
	conn, err := net.DialTimeout(network, path, socketDialTimeout)
	if err != nil && network == "unix" {
		conn, err = net.DialTimeout("tcp", tcpAddress(), socketDialTimeout)
	}
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
