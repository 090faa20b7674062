//go:build windows

package common

import (
	"fmt"
	"os"
)

const defaultPipeName = "agros"

// PipePath returns the full named pipe path used on Windows,
// honouring PipeNameEnv.
func PipePath() string {
	name := os.Getenv(PipeNameEnv)
	if name == "" {
		name = defaultPipeName
	}
	return fmt.Sprintf(`\\.\pipe\%s`, name)
}

// DefaultPipePath ignores the environment and returns the built-in
// pipe path.
func DefaultPipePath() string {
	return fmt.Sprintf(`\\.\pipe\%s`, defaultPipeName)
}
