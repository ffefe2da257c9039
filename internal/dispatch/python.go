package dispatch

import (
	"context"
	"sync"
)

// Program that makes the hosted interpreter behave like an embedded one:
// argv becomes [script, args...] and the file runs as __main__.
const pythonBootstrap = `import runpy, sys
sys.argv = sys.argv[1:]
runpy.run_path(sys.argv[0], run_name="__main__")
`

// Serializes use of the interpreter. Its global state is not reentrant.
var pythonMu sync.Mutex

// Python bridge.
//
// Hands the script to a hosted python3 that runs it as __main__ with sys.argv
// set to the script path followed by its arguments. Calls are serialized
// process-wide, so the bridge must not be used from concurrent jobs; isolated
// tables route around it.
type PythonBridge struct {
	interpreter string
}

// Creates a bridge hosted by the given interpreter binary (e.g. "python3").
func NewPythonBridge(interpreter string) *PythonBridge {
	return &PythonBridge{interpreter: interpreter}
}

func (b *PythonBridge) Run(ctx context.Context, script string, args []string, stdio Stdio) (int, error) {
	pythonMu.Lock()
	defer pythonMu.Unlock()

	argv := append([]string{b.interpreter, "-c", pythonBootstrap, script}, args...)
	return runProcess(ctx, argv, stdio)
}
