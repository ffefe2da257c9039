package parallel

import (
	"strings"

	"github.com/fumishiki/polyscript/internal/fault"
	"github.com/fumishiki/polyscript/internal/runtime"
)

// Parses "<lang> <script> [args...]" into a job.
//
// Tokens are separated by whitespace; there is no quoting.
func ParseSpec(spec string) (runtime.Job, error) {
	fields := strings.Fields(spec)
	if len(fields) < 2 {
		return runtime.Job{}, fault.Wrapf(ErrMalformedSpec, "%q: want \"<lang> <script> [args...]\"", spec)
	}
	return runtime.Job{Lang: fields[0], Script: fields[1], Args: fields[2:]}, nil
}
