//go:build linux || darwin

package dispatch

import (
	"context"
	"runtime"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/fumishiki/polyscript/internal/fault"
)

// C library providing fflush.
var libcPath = map[string]string{
	"linux":  "libc.so.6",
	"darwin": "/usr/lib/libSystem.B.dylib",
}

// Shared-library bridge.
//
// Loads the library named by the script path and calls the exported symbol
// given as the first argument with the C signature
//
//	int symbol(int argc, const char **argv);
//
// The remaining arguments form argv. The symbol's return value is the exit
// code. The library writes straight to file descriptors 1 and 2, so the
// bridge refuses streams other than the process's own.
type FFIBridge struct{}

func (FFIBridge) Run(_ context.Context, lib string, args []string, stdio Stdio) (int, error) {
	if len(args) == 0 {
		return 0, fault.Wrapf(ErrSpawn, "%s: missing symbol name", lib)
	}
	if !stdio.inherited() {
		return 0, fault.Wrapf(ErrSpawn, "%s: in-process bridge cannot redirect output", lib)
	}

	handle, err := purego.Dlopen(lib, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		return 0, fault.Wrap(ErrSpawn, err)
	}
	defer purego.Dlclose(handle)

	sym, err := purego.Dlsym(handle, args[0])
	if err != nil {
		return 0, fault.Wrap(ErrSpawn, err)
	}

	argv := args[1:]
	bufs := make([][]byte, len(argv))
	ptrs := make([]*byte, len(argv)+1)

	var pinner runtime.Pinner
	defer pinner.Unpin()
	for i, a := range argv {
		bufs[i] = append([]byte(a), 0)
		ptrs[i] = &bufs[i][0]
		pinner.Pin(ptrs[i])
	}
	pinner.Pin(&ptrs[0])

	ret, _, _ := purego.SyscallN(sym, uintptr(len(argv)), uintptr(unsafe.Pointer(&ptrs[0])))
	flushC()

	return int(int32(ret)), nil
}

// Flushes C stdio buffers so library output is not lost when Go exits.
func flushC() {
	path, ok := libcPath[runtime.GOOS]
	if !ok {
		return
	}
	libc, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return
	}
	if fflush, err := purego.Dlsym(libc, "fflush"); err == nil {
		purego.SyscallN(fflush, 0)
	}
}
