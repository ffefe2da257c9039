package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (

	// Name used for directory and file naming.
	appName = "polyscript"

	// Environment variable carrying the IPC directory hint to child processes.
	EnvIPCDir = "POLYSCRIPT_IPC_DIR"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644
)

// Path to the directory for runtime files (sockets, PIDs).
//
//	Linux:   $XDG_RUNTIME_DIR/polyscript or /run/user/<uid>/polyscript
//	macOS:   ~/Library/Caches/polyscript/run
func Runtime() string {
	if xdg.RuntimeDir != "" {
		return filepath.Join(xdg.RuntimeDir, appName)
	}
	return filepath.Join(xdg.CacheHome, appName, "run")
}

// Default path to the Unix domain socket of the daemon.
func Socket() string {
	return filepath.Join(Runtime(), appName+".sock")
}

// Default path to the daemon PID file.
func PIDFile() string {
	return filepath.Join(Runtime(), appName+".pid")
}

// Default path to the daemon log file.
//
//	Linux:   $XDG_STATE_HOME/polyscript/daemon.log
func LogFile() string {
	return filepath.Join(xdg.StateHome, appName, "daemon.log")
}

// Default directory for compiled artifacts.
//
//	Linux:   $XDG_CACHE_HOME/polyscript/build
func BuildCache() string {
	return filepath.Join(xdg.CacheHome, appName, "build")
}

// Directory advertised to bridges through [EnvIPCDir].
func IPC() string {
	return filepath.Join(Runtime(), "ipc")
}

// Locates the user configuration file.
//
// Searches config.toml, config.yaml and config.yml under each XDG config
// directory. Returns an empty string if none exists.
func ConfigFile() string {
	for _, name := range []string{"config.toml", "config.yaml", "config.yml"} {
		if p, err := xdg.SearchConfigFile(filepath.Join(appName, name)); err == nil {
			return p
		}
	}
	return ""
}

// Publishes the IPC directory hint to the environment.
//
// Called once at top-level invocation. An existing value is kept so that a
// daemon and the jobs it re-executes share the hint computed by the outermost
// process. Returns the effective value.
func ExportIPCHint() string {
	if v, ok := os.LookupEnv(EnvIPCDir); ok && v != "" {
		return v
	}
	dir := IPC()
	os.Setenv(EnvIPCDir, dir)
	return dir
}
