package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/agroslabs/agros/pkg/agrolib"
)

const pidFileName = "daemon.pid"

// ErrDaemonAlreadyRunning indicates a live daemon owns the PID file.
var ErrDaemonAlreadyRunning = errors.New("daemon is already running")

// getPidFilePath returns the path to the daemon PID file.
func getPidFilePath() string {
	return filepath.Join(agrolib.DataDir, pidFileName)
}

// WritePidFile writes the current process ID to the PID file.
func WritePidFile() error {
	pid := os.Getpid()
	return os.WriteFile(getPidFilePath(), []byte(strconv.Itoa(pid)), 0644)
}

// ReadPidFile reads and returns the PID from the PID file.
func ReadPidFile() (int, error) {
	data, err := os.ReadFile(getPidFilePath())
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID in file: %w", err)
	}
	if pid <= 0 {
		return 0, fmt.Errorf("invalid PID: %d", pid)
	}
	return pid, nil
}

// RemovePidFile removes the PID file.
func RemovePidFile() error {
	err := os.Remove(getPidFilePath())
	if os.IsNotExist(err) {
		return nil // Already removed, not an error
	}
	return err
}

// CleanupStalePidFile removes a PID file left behind by a crashed daemon.
// It returns ErrDaemonAlreadyRunning when the recorded process is still
// alive, and nil when no PID file exists or a stale one was removed.
func CleanupStalePidFile() error {
	pid, err := ReadPidFile()
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		// Unreadable content is treated as stale.
		return RemovePidFile()
	}
	if isProcessRunning(pid) {
		return fmt.Errorf("%w (PID %d)", ErrDaemonAlreadyRunning, pid)
	}
	return RemovePidFile()
}
