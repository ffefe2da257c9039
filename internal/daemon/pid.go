package daemon

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fumishiki/polyscript/internal/paths"
)

// Writes pid as decimal text to path, creating parent directories.
func writePID(path string, pid int) error {
	if err := os.MkdirAll(filepath.Dir(path), paths.DefaultDirMode); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(pid)), paths.DefaultFileMode)
}

// Reads the PID recorded at path.
func readPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

// Records the current process as the daemon unless path already names it.
func RecordPID(path string) error {
	if pid, err := readPID(path); err == nil && pid == os.Getpid() {
		return nil
	}
	return writePID(path, os.Getpid())
}

// Removes the PID record at path if it names the current process.
func ClearPID(path string) {
	if pid, err := readPID(path); err == nil && pid == os.Getpid() {
		os.Remove(path)
	}
}
