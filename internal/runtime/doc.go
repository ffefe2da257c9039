// Package runtime runs one job to completion and captures its result.
//
// A [Job] names a language, a script and its arguments. A [Runner] checks the
// job against the dispatch table, hands it to a [Launcher] and collects the
// exit code and both output streams into a [Result]. A non-zero exit code is
// data, not an error; errors are reserved for jobs that could not be started.
//
// Two launchers exist. [SelfExec] re-executes the current binary with the
// job's language and script, so every job gets a fresh process and no
// interpreter state is shared between jobs. The daemon uses it. [TableLauncher]
// dispatches through a table directly and is used by the parallel path with an
// isolated table.
//
// Example usage:
//
//	runner := runtime.NewRunner(table, runtime.SelfExec{})
//	res, err := runner.Run(ctx, runtime.Job{Lang: "py", Script: "/tmp/a.py"})
//	if err != nil {
//	    return err
//	}
//	fmt.Print(res.Stdout)
package runtime
