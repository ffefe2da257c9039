package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"

	"github.com/fumishiki/polyscript/internal/build"
	"github.com/fumishiki/polyscript/internal/fault"
)

// Runs argv as a child process attached to stdio and returns its exit code.
func runProcess(ctx context.Context, argv []string, stdio Stdio) (int, error) {
	slog.Debug("spawning", "argv", argv)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = stdio.Stdin
	cmd.Stdout = stdio.Stdout
	cmd.Stderr = stdio.Stderr

	return exitStatus(argv[0], cmd.Run())
}

// Converts the error of a finished command into an exit code.
//
// A non-zero exit is returned as a code with a nil error. Anything else means
// the process never ran and is reported as [ErrSpawn].
func exitStatus(name string, err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return 0, fault.Wrapf(ErrSpawn, "%s: %w", name, err)
}

// Compiles the script through the build cache and runs the artifact.
//
// Compiler output goes to the job's streams. A compiler failure becomes the
// job's exit code.
func (t *Table) compileAndRun(ctx context.Context, e Entry, script string, args []string, stdio Stdio) (int, error) {
	res, err := t.cache.Run(ctx, build.Options{
		Source:  script,
		Command: e.Build,
		Ext:     e.Ext,
		Stdout:  stdio.Stdout,
		Stderr:  stdio.Stderr,
	})
	if err != nil {
		return 0, fault.Wrap(ErrSpawn, err)
	}
	if res.Exit != 0 {
		return res.Exit, nil
	}

	argv := append(build.Expand(e.Run, script, res.Output), args...)
	return runProcess(ctx, argv, stdio)
}
