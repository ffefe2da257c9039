// Package build compiles sources for compile-then-run languages.
//
// Compiled artifacts are content-addressed: the cache key is a digest over
// the compiler command line and the source bytes, so a script is compiled
// once per distinct content and toolchain invocation. Concurrent builds of the
// same key are safe; each compiles into a private temporary path and the first
// to finish renames its artifact into place.
//
// Command lines are templates. The placeholders {src} and {out} expand to the
// source path and the artifact path.
//
// Example usage:
//
//	cache := build.NewCache(paths.BuildCache())
//	result, err := cache.Run(ctx, build.Options{
//	    Source:  "hello.f90",
//	    Command: []string{"gfortran", "{src}", "-o", "{out}"},
//	    Stdout:  os.Stdout,
//	    Stderr:  os.Stderr,
//	})
//	if err != nil {
//	    return err
//	}
//	if result.Exit != 0 {
//	    return fmt.Errorf("compilation failed with exit code %d", result.Exit)
//	}
//	run(result.Output)
package build
