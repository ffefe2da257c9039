package main

import (
	"log/slog"
	"os"

	"github.com/fumishiki/polyscript/internal"
	"github.com/fumishiki/polyscript/internal/cli"
	"github.com/fumishiki/polyscript/internal/logging"
)

// The entry point for polyscript.
//
// Initializes logging, executes the root command, and exits with the code
// derived from the command's error. A job's own non-zero exit is mirrored
// without an extra log line.
func main() {
	slog.SetDefault(logger())

	slog.Debug("build", "version", internal.Build().String())

	slog.Debug("polyscript is running",
		"pid", os.Getpid(),
		"cwd", cwd(),
		"args", os.Args,
	)

	if err := cli.Execute(); err != nil {
		if cli.Reportable(err) {
			slog.Error(err.Error())
		}
		os.Exit(cli.ExitCode(err))
	}
}

// Creates a logger seeded from build-time linker flags.
//
// The logger is reconfigured after flag parsing via cli.Execute.
func logger() *slog.Logger {
	handler := logging.NewHandler()
	handler.SetLevel(logLevel())
	return slog.New(handler)
}

// Returns the log level derived from build-time linker flags.
func logLevel() slog.Level {
	modes := internal.DefaultModes()
	if modes.Debug {
		return slog.LevelDebug
	}
	if modes.Quiet {
		return slog.LevelWarn
	}
	return slog.LevelInfo
}

// Returns the current working directory or "(unknown)".
func cwd() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "(unknown)"
	}
	return cwd
}
