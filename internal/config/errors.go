package config

import (
	"github.com/containerd/errdefs"
	"github.com/fumishiki/polyscript/internal/fault"
)

var (
	ErrConfig = fault.Kind("invalid configuration", errdefs.ErrInvalidArgument)
)
