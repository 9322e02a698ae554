/* pkg/logger/paths.go */

package logger

import (
	"os"
	"path/filepath"
	"runtime"
)

// PlatformLogPaths returns candidate log paths in order of priority.
func PlatformLogPaths() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{
			filepath.Join(os.Getenv("ProgramData"), "argus", "argus.log"),
			filepath.Join(os.Getenv("LOCALAPPDATA"), "argus", "argus.log"),
		}
	case "darwin":
		return []string{
			xdgStatePath("argus.log"),
			filepath.Join(os.TempDir(), "argus", "argus.log"),
		}
	default:
		return []string{
			"/var/log/argus/argus.log", // best if writable
			xdgStatePath("argus.log"),  // e.g. ~/.local/state/argus/argus.log
			filepath.Join(os.TempDir(), "argus", "argus.log"),
		}
	}
}

func xdgStatePath(name string) string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "argus", name)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "argus", name)
	}
	return filepath.Join(home, ".local", "state", "argus", name)
}
