package protocol

import (
	"github.com/containerd/errdefs"
	"github.com/fumishiki/polyscript/internal/fault"
)

var (
	ErrProtocol = fault.Kind("protocol error", errdefs.ErrInvalidArgument)
)
