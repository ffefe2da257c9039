//go:build !linux && !darwin

package dispatch

import (
	"context"
	"runtime"

	"github.com/fumishiki/polyscript/internal/fault"
)

// Shared-library bridge. Not available on this platform.
type FFIBridge struct{}

func (FFIBridge) Run(_ context.Context, lib string, _ []string, _ Stdio) (int, error) {
	return 0, fault.Wrapf(ErrSpawn, "%s: shared-library bridge not supported on %s", lib, runtime.GOOS)
}
