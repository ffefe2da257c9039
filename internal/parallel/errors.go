package parallel

import (
	"github.com/containerd/errdefs"
	"github.com/fumishiki/polyscript/internal/fault"
)

var (
	ErrMalformedSpec = fault.Kind("malformed spec", errdefs.ErrInvalidArgument)
	ErrJobPanicked   = fault.Kind("job panicked", errdefs.ErrInternal)
)
