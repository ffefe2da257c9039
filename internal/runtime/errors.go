package runtime

import (
	"fmt"

	"github.com/containerd/errdefs"
)

// Exit codes reported for jobs that never ran, following shell conventions.
const (
	CodeNotFound      = 127 // Unknown language or missing script.
	CodeCannotExecute = 126 // The process could not be spawned.
)

// Non-zero exit of a job that ran.
//
// Carries the code so command-line callers can mirror it as their own exit
// status.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	if e.Code < 0 {
		return "terminated by signal"
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Returns the exit code reported for a job that failed to start.
func FailureCode(err error) int {
	if errdefs.IsNotFound(err) {
		return CodeNotFound
	}
	return CodeCannotExecute
}
