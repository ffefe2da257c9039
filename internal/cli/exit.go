package cli

import (
	"errors"

	"github.com/containerd/errdefs"
	"github.com/fumishiki/polyscript/internal/dispatch"
	"github.com/fumishiki/polyscript/internal/fault"
	"github.com/fumishiki/polyscript/internal/runtime"
)

var (
	ErrBatchFailed = errors.New("parallel batch failed")
	ErrUsage       = fault.Kind("usage error", errdefs.ErrInvalidArgument)
)

// Maps the error returned by [Execute] to a process exit code.
//
// A job's non-zero exit is mirrored; a job killed by a signal gives 1.
// Unknown languages and unreadable scripts give 127, spawn failures 126, and
// anything else 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, ErrBatchFailed) {
		return 1
	}

	var exitErr *runtime.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Code > 0 {
			return exitErr.Code
		}
		return 1
	}

	switch {
	case errors.Is(err, dispatch.ErrUnknownLanguage), errors.Is(err, dispatch.ErrScriptUnreadable):
		return runtime.CodeNotFound
	case errors.Is(err, dispatch.ErrSpawn):
		return runtime.CodeCannotExecute
	}
	return 1
}

// Whether the error should be logged before exiting.
//
// A job's own non-zero exit is not: its stderr already told the story.
func Reportable(err error) bool {
	if err == nil {
		return false
	}
	var exitErr *runtime.ExitError
	return errors.Is(err, ErrBatchFailed) || !errors.As(err, &exitErr)
}
