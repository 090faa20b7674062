package agrolib

import (
	"errors"
	"os"
	"path/filepath"
)

// DataDirEnv overrides the default agros data directory.
const DataDirEnv = "AGROS_DATA_DIR"

var (
	// DataDir is the absolute path of the agros data directory.
	DataDir string

	runsFileName    string
	journalFileName string
)

func init() {
	dir := os.Getenv(DataDirEnv)
	if dir == "" {
		dir = defaultDataDir()
	}
	if err := setDataDir(dir); err != nil {
		panic(err)
	}
}

func defaultDataDir() string {
	cdr, err := os.UserConfigDir()
	if err != nil {
		panic(err)
	}
	return filepath.Join(cdr, "agros")
}

func setDataDir(dir string) error {
	if dir == "" {
		return errors.New("data dir is empty")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return err
	}
	DataDir = abs
	runsFileName = filepath.Join(abs, "runs.gob")
	journalFileName = filepath.Join(abs, "journal.db")
	return nil
}

// SetDataDir points the data directory somewhere else, creating it when
// missing. Mostly used by tests.
func SetDataDir(dir string) error {
	return setDataDir(dir)
}

// JournalPath returns the path of the event journal database.
func JournalPath() string {
	return journalFileName
}

// DocumentsDir returns the directory where the daemon stores documents
// submitted over the web bridge, creating it when missing.
func DocumentsDir() (string, error) {
	dir := filepath.Join(DataDir, "documents")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}
