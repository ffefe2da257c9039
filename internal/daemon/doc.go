// Package daemon manages the lifecycle of the polyscript daemon from the
// client side.
//
// A [Manager] starts the daemon as a detached child process, stops it through
// the socket protocol, submits single jobs to it and reports its status.
// Liveness is decided by whether the socket accepts a connection; the PID file
// is advisory and only shown to the user.
//
// Example usage:
//
//	m := daemon.New(daemon.Config{})
//
//	pid, err := m.Start(ctx)
//	if err != nil {
//	    return err
//	}
//
//	err = m.Run(ctx, runtime.Job{Lang: "py", Script: "a.py"}, os.Stdout, os.Stderr)
package daemon
