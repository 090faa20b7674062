package server

import (
	"os"
	"path/filepath"

	"github.com/agroslabs/agros/common"
)

func socketPath() string {
	if path := os.Getenv(common.SocketPathEnv); path != "" {
		return path
	}
	return filepath.Join(os.TempDir(), "agros.sock")
}

// forceTCP reports whether the daemon should skip unix sockets or named
// pipes and listen on TCP directly.
func forceTCP() bool {
	switch os.Getenv(common.ForceTCPEnv) {
	case "1", "true", "TRUE", "True":
		return true
	}
	return false
}
