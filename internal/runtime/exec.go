package runtime

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"slices"
	"strings"

	"github.com/fumishiki/polyscript/internal/dispatch"
	"github.com/fumishiki/polyscript/internal/fault"
)

// Starts a job with the given streams and returns its exit code.
//
// A non-zero exit code is not an error; the caller decides. Errors mean the
// job never ran.
type Launcher interface {
	Launch(ctx context.Context, job Job, stdio dispatch.Stdio) (int, error)
}

// Launches jobs by re-executing a polyscript binary.
//
// The child is invoked as "path args... exec -- lang script jobargs...", so
// job arguments that look like flags reach the script unchanged. Env entries
// override the inherited environment for the child only.
type SelfExec struct {
	Path string   // Binary to run. Empty means the current executable.
	Args []string // Global flags placed before the job.
	Env  []string // KEY=VALUE overrides.
}

func (s SelfExec) Launch(ctx context.Context, job Job, stdio dispatch.Stdio) (int, error) {
	path := s.Path
	if path == "" {
		exe, err := os.Executable()
		if err != nil {
			return 0, fault.Wrap(dispatch.ErrSpawn, err)
		}
		path = exe
	}

	cmd := exec.CommandContext(ctx, path, s.Argv(job)...)
	cmd.Env = mergeEnv(os.Environ(), s.Env)
	cmd.Stdin = stdio.Stdin
	cmd.Stdout = stdio.Stdout
	cmd.Stderr = stdio.Stderr

	slog.Debug("re-executing", "path", path, "lang", job.Lang, "script", job.Script)

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return 0, fault.Wrap(dispatch.ErrSpawn, err)
}

// Returns the child's arguments for job, excluding the binary itself.
func (s SelfExec) Argv(job Job) []string {
	argv := append(slices.Clone(s.Args), "exec", "--", job.Lang, job.Script)
	return append(argv, job.Args...)
}

// Launches jobs through a dispatch table in the current process.
type TableLauncher struct {
	Table *dispatch.Table
}

func (l TableLauncher) Launch(ctx context.Context, job Job, stdio dispatch.Stdio) (int, error) {
	return l.Table.Dispatch(ctx, job.Lang, job.Script, job.Args, stdio)
}

// Merges override env vars on top of a base env slice.
func mergeEnv(base, overrides []string) []string {
	merged := make(map[string]string, len(base)+len(overrides))
	for _, entry := range base {
		if k, v, ok := strings.Cut(entry, "="); ok {
			merged[k] = v
		}
	}
	for _, entry := range overrides {
		if k, v, ok := strings.Cut(entry, "="); ok {
			merged[k] = v
		}
	}

	result := make([]string, 0, len(merged))
	for k, v := range merged {
		result = append(result, k+"="+v)
	}
	return result
}
