//go:build !windows

package server

import "os"

// cleanupSocket removes the unix socket file. Returns an error if
// removal fails, unless the file does not exist.
func cleanupSocket() error {
	if err := os.Remove(socketPath()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
