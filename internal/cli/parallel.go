package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/fumishiki/polyscript/internal/config"
	"github.com/fumishiki/polyscript/internal/fault"
	"github.com/fumishiki/polyscript/internal/parallel"
	"github.com/fumishiki/polyscript/internal/runtime"
)

// Represents 'polyscript parallel <spec>...'.
type ParallelCmd struct {
	Specs []string `arg:"" name:"spec" help:"Job as \"<lang> <script> [args...]\"."`
}

// Executes the parallel command.
//
// Every spec runs concurrently with in-process bridges replaced by their
// subprocess fallbacks. Captured output is printed per job in batch order
// once all jobs are done.
func (c *ParallelCmd) Run(ctx context.Context, cfg *config.Config) error {
	table, err := cfg.Table()
	if err != nil {
		return err
	}
	isolated := table.Isolated()

	exec := parallel.New(runtime.NewRunner(isolated, runtime.TableLauncher{Table: isolated}))
	outcomes, err := exec.Execute(ctx, c.Specs)

	failed := 0
	for _, o := range outcomes {
		if o.Result != nil {
			io.WriteString(stdout, o.Result.Stdout)
			io.WriteString(stderr, o.Result.Stderr)
		}
		if o.Err != nil {
			failed++
			slog.Warn("job failed", "job", o.Spec, "error", o.Err)
		}
	}

	if err != nil {
		return fault.Wrapf(ErrBatchFailed, "%d of %d jobs failed: %w", failed, len(outcomes), err)
	}
	return nil
}
