package parallel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fumishiki/polyscript/internal/fault"
	"github.com/fumishiki/polyscript/internal/runtime"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Runs one job to completion.
type Runner interface {
	Run(ctx context.Context, job runtime.Job) (*runtime.Result, error)
}

// Result of one spec in a batch.
type Outcome struct {
	Spec   string          // Spec as given.
	Job    runtime.Job     // Parsed job; zero if the spec was malformed.
	Result *runtime.Result // Captured result; nil if the job never ran.
	Err    error           // Failure of this job, nil on success.
}

// Runs batches of specs concurrently.
type Executor struct {
	runner Runner
}

// Creates an executor that runs each job with runner.
func New(runner Runner) *Executor {
	return &Executor{runner: runner}
}

// Runs every spec concurrently and waits for all of them.
//
// The returned outcomes are in the order of specs. The error is nil only if
// every job ran and exited zero; otherwise it joins the failures in batch
// order. A malformed spec, a job that could not be started, a non-zero exit
// ([*runtime.ExitError]) and a panic ([ErrJobPanicked]) all count as failures.
func (e *Executor) Execute(ctx context.Context, specs []string) ([]Outcome, error) {
	batch := uuid.NewString()
	outcomes := make([]Outcome, len(specs))

	var g errgroup.Group
	for i, spec := range specs {
		g.Go(func() error {
			outcomes[i] = e.run(ctx, batch, spec)
			return outcomes[i].Err
		})
	}

	// Wait reports only the first failure; all of them are joined below.
	g.Wait()

	var errs []error
	for i, o := range outcomes {
		if o.Err != nil {
			errs = append(errs, fmt.Errorf("job %d (%s): %w", i+1, o.Spec, o.Err))
		}
	}
	return outcomes, errors.Join(errs...)
}

// Runs one spec, converting a panic into a failed outcome.
func (e *Executor) run(ctx context.Context, batch, spec string) (o Outcome) {
	o.Spec = spec
	logger := slog.With("batch", batch, "job", spec)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("job panicked", "panic", r)
			o.Result = nil
			o.Err = fault.Wrapf(ErrJobPanicked, "%v", r)
		}
	}()

	job, err := ParseSpec(spec)
	if err != nil {
		o.Err = err
		return o
	}
	o.Job = job

	res, err := e.runner.Run(ctx, job)
	if err != nil {
		logger.Debug("job not started", "error", err)
		o.Err = err
		return o
	}

	logger.Debug("job finished", "exit", res.Exit)
	o.Result = res
	o.Err = res.Err()
	return o
}
