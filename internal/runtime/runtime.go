package runtime

import (
	"bytes"
	"context"
	"strings"

	"github.com/fumishiki/polyscript/internal/dispatch"
)

// One execution request.
type Job struct {
	Lang   string   // Language tag.
	Script string   // Path to the script.
	Args   []string // Arguments passed to the script.
}

// Captured outcome of a job that ran.
type Result struct {
	Exit   int    // Exit code; -1 when terminated by a signal.
	Stdout string // Standard output, decoded as UTF-8.
	Stderr string // Standard error, decoded as UTF-8.
}

// Returns an [ExitError] when the job exited non-zero, nil otherwise.
func (r *Result) Err() error {
	if r.Exit == 0 {
		return nil
	}
	return &ExitError{Code: r.Exit}
}

// Runs jobs to completion and captures their output.
//
// A Runner holds no per-job state and is safe for concurrent use.
type Runner struct {
	table    *dispatch.Table
	launcher Launcher
}

// Creates a runner that validates jobs against table and starts them with
// launcher.
func NewRunner(table *dispatch.Table, launcher Launcher) *Runner {
	return &Runner{table: table, launcher: launcher}
}

// Runs the job and returns its captured result.
//
// The language and the script are checked before anything is launched, so
// [dispatch.ErrUnknownLanguage] and [dispatch.ErrScriptUnreadable] never cost a
// process. Launch failures are returned as [dispatch.ErrSpawn]. Failures are
// not retried.
func (r *Runner) Run(ctx context.Context, job Job) (*Result, error) {
	if _, err := r.table.Lookup(job.Lang); err != nil {
		return nil, err
	}
	if err := dispatch.CheckScript(job.Script); err != nil {
		return nil, err
	}

	var stdout, stderr bytes.Buffer
	code, err := r.launcher.Launch(ctx, job, dispatch.Stdio{Stdout: &stdout, Stderr: &stderr})
	if err != nil {
		return nil, err
	}

	return &Result{
		Exit:   code,
		Stdout: decode(stdout.Bytes()),
		Stderr: decode(stderr.Bytes()),
	}, nil
}

// Decodes captured bytes as UTF-8, replacing invalid sequences with U+FFFD.
func decode(b []byte) string {
	return strings.ToValidUTF8(string(b), "\uFFFD")
}
