package dispatch

import (
	"io"
	"os"
)

// Standard streams handed to a job.
//
// Nil fields are connected to the null device.
type Stdio struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Streams of the current process.
func Inherit() Stdio {
	return Stdio{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Whether the streams are exactly the process's own, which in-process bridges
// writing to file descriptors 1 and 2 require.
func (s Stdio) inherited() bool {
	return s.Stdout == os.Stdout && s.Stderr == os.Stderr
}
