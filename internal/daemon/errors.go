package daemon

import (
	"errors"

	"github.com/containerd/errdefs"
	"github.com/fumishiki/polyscript/internal/fault"
)

var (
	ErrDaemon           = errors.New("daemon error")
	ErrDaemonNotRunning = fault.Kind("daemon not running", errdefs.ErrUnavailable)
	ErrAlreadyRunning   = fault.Kind("daemon already running", errdefs.ErrAlreadyExists)
)
