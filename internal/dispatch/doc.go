// Package dispatch maps language tags to invocation strategies.
//
// A [Table] is built once at startup and never mutated. Each [Entry] names a
// language tag and one of three strategies:
//
//   - subprocess: run an interpreter as "command... script args...".
//   - compile: compile the script through the build cache, then run the
//     artifact with the script arguments.
//   - embedded: call a [Bridge] inside the current process (the hosted Python
//     interpreter, the C shared-library FFI bridge). Embedded entries carry a
//     subprocess fallback used whenever the caller needs isolation.
//
// Dispatch writes the job's output to the supplied [Stdio] and returns the
// exit code. A non-zero exit is data, not an error; errors are reserved for
// unknown languages, unreadable scripts and processes that could not start.
//
// Example usage:
//
//	table, err := dispatch.New(build.NewCache(paths.BuildCache()), dispatch.Defaults()...)
//	if err != nil {
//	    return err
//	}
//
//	code, err := table.Dispatch(ctx, "py", "hello.py", []string{"x"}, dispatch.Inherit())
package dispatch
