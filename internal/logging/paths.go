package logging

import (
	"os"
	"path/filepath"
)

// DefaultDataDir returns the default VisuaLoom data directory (~/.visualoom).
// Falls back to temp directory if home directory is unavailable.
func DefaultDataDir() string {
	if dir := os.Getenv("VISUALOOM_DATA_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".visualoom")
	}
	return filepath.Join(home, ".visualoom")
}

// DefaultLogDir returns the default log directory (~/.visualoom/logs/).
func DefaultLogDir() string {
	return filepath.Join(DefaultDataDir(), "logs")
}

// DefaultLogPath returns the default log path.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), "visualoom.log")
}
