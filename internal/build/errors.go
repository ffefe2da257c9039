package build

import (
	"github.com/containerd/errdefs"
	"github.com/fumishiki/polyscript/internal/fault"
)

var (
	ErrBuild               = fault.Kind("build failed", errdefs.ErrFailedPrecondition)
	ErrFileSystemOperation = fault.Kind("file system operation failed", errdefs.ErrUnavailable)
)
