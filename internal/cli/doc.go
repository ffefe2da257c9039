// Parses flags and runs the polyscript commands.
//
// Without a subcommand the first two positional arguments are a language tag
// and a script path, and the script runs directly with the terminal's
// streams:
//
//	polyscript py script.py arg1 arg2
//
// Global flags:
//
//	-q, --quiet        Suppress informational output.
//	-v, --verbose      Enable verbose output.
//	-d, --debug        Enable debug output.
//	-s, --socket       Daemon socket path.
//	    --pid-file     Daemon PID file.
//	-c, --config       Configuration file.
//	    --log-format   Log format, pretty or json.
//
// Flags override the configuration file, which overrides built-in defaults
// and the ones set via linker flags. After parsing, the global logger is
// reconfigured to reflect the final level and format before a command runs.
package cli
