package dispatch

import (
	"github.com/containerd/errdefs"
	"github.com/fumishiki/polyscript/internal/fault"
)

var (
	ErrUnknownLanguage  = fault.Kind("unknown language", errdefs.ErrNotFound)
	ErrScriptUnreadable = fault.Kind("script unreadable", errdefs.ErrNotFound)
	ErrSpawn            = fault.Kind("spawn failed", errdefs.ErrUnavailable)
	ErrInvalidEntry     = fault.Kind("invalid dispatch entry", errdefs.ErrInvalidArgument)
)
