//go:build !windows

package agrocli

import (
	"net"
	"path/filepath"
	"testing"

	"github.com/agroslabs/agros/common"
)

func TestSocketPathEnvOverride(t *testing.T) {
	custom := filepath.Join(t.TempDir(), "custom.sock")
	t.Setenv(common.SocketPathEnv, custom)
	if got := socketPath(); got != custom {
		t.Errorf("socketPath() = %q, want %q", got, custom)
	}
}

func TestGetConnectionPathForceTCP(t *testing.T) {
	t.Setenv(common.ForceTCPEnv, "1")
	t.Setenv(common.TCPPortEnv, "4999")
	if got := getConnectionPath(); got != "127.0.0.1:4999" {
		t.Errorf("getConnectionPath() = %q, want 127.0.0.1:4999", got)
	}
}

func TestTCPPortValidation(t *testing.T) {
	tests := []struct {
		env  string
		want int
	}{
		{"", common.DefaultPort},
		{"4999", 4999},
		{"0", common.DefaultPort},
		{"70000", common.DefaultPort},
		{"nope", common.DefaultPort},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv(common.TCPPortEnv, tt.env)
			if got := tcpPort(); got != tt.want {
				t.Errorf("tcpPort() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIsDaemonRunning(t *testing.T) {
	sock := filepath.Join(t.TempDir(), "agros.sock")
	t.Setenv(common.SocketPathEnv, sock)
	// Point the TCP fallback probe at a port nothing listens on.
	t.Setenv(common.TCPPortEnv, "1")

	if isDaemonRunning(sock) {
		t.Fatal("isDaemonRunning = true with no listener")
	}

	ln, err := net.Listen("unix", sock)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	if !isDaemonRunning(sock) {
		t.Fatal("isDaemonRunning = false with live listener")
	}
}
