//go:build windows

package server

// setSocketPermissions is a no-op on Windows. Named pipe access is
// managed through the pipe security descriptor instead of file modes.
func setSocketPermissions(path string) error {
	return nil
}
