// Package server implements the polyscript daemon.
//
// The daemon listens on a Unix domain socket. Every accepted connection
// becomes a session running in its own goroutine: the session reads
// newline-delimited JSON requests, runs each one to completion through a
// [Runner] and writes exactly one response line before reading the next
// request. Requests on one connection are therefore served strictly in order,
// while separate connections run concurrently.
//
// A request with the stop flag is acknowledged immediately; the server then
// stops after a short grace delay so the acknowledgment can reach the client.
// Sessions still in flight at that point are cut off, not drained.
//
// Example usage:
//
//	srv, err := server.New(server.Config{
//	    SocketPath: "/run/user/1000/polyscript/polyscript.sock",
//	    Runner:     runtime.NewRunner(table, runtime.SelfExec{}),
//	})
//	if err != nil {
//	    return err
//	}
//
//	if err := srv.Start(); err != nil {
//	    return err
//	}
//	defer srv.Stop()
//
//	srv.Wait()
package server
