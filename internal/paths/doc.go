// Provides platform-appropriate paths for polyscript.
//
// Runtime files (the daemon socket and PID file) live under the XDG runtime
// directory, the daemon log under the XDG state directory, and compiled
// artifacts under the XDG cache directory. The name "polyscript" is used as
// the subdirectory under each base path.
package paths
