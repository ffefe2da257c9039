package cli

import (
	"context"

	"github.com/fumishiki/polyscript/internal/config"
	"github.com/fumishiki/polyscript/internal/dispatch"
	"github.com/fumishiki/polyscript/internal/fault"
	"github.com/fumishiki/polyscript/internal/runtime"
)

// Represents 'polyscript [exec] <lang> <script> [args...]'.
//
// Everything after the command is taken verbatim. Global flags must come
// before the language tag.
type ExecCmd struct {
	Argv []string `arg:"" name:"job" help:"Language tag (see 'polyscript languages'), script, and arguments passed to the script."`
}

// Executes the exec command.
//
// The script inherits the terminal's streams. A non-zero exit becomes the
// process's own exit code.
func (c *ExecCmd) Run(ctx context.Context, cfg *config.Config) error {
	job, err := parseJob(c.Argv)
	if err != nil {
		return err
	}

	table, err := cfg.Table()
	if err != nil {
		return err
	}

	code, err := table.Dispatch(ctx, job.Lang, job.Script, job.Args, dispatch.Inherit())
	if err != nil {
		return err
	}
	if code != 0 {
		return &runtime.ExitError{Code: code}
	}
	return nil
}

// Splits "<lang> <script> [args...]" into a job.
//
// A single leading "--" is dropped; later ones belong to the script.
func parseJob(argv []string) (runtime.Job, error) {
	if len(argv) > 0 && argv[0] == "--" {
		argv = argv[1:]
	}
	if len(argv) < 2 {
		return runtime.Job{}, fault.Wrapf(ErrUsage, "expected <lang> <script> [args...], got %q", argv)
	}
	return runtime.Job{Lang: argv[0], Script: argv[1], Args: argv[2:]}, nil
}
