// Package logging provides the slog handler used by polyscript.
//
// A single [Handler] is installed as the default logger at startup with a
// level seeded from build-time flags. Once command-line flags are parsed the
// CLI reconfigures it in place (level, formatter, output stream); loggers
// derived earlier through With or WithGroup observe the new settings because
// every derived handler shares the same configuration.
//
// Two formatters are available. [PrettyFormatter] renders one human-readable
// line per record and colors the level when the stream is a terminal.
// [JSONFormatter] renders one JSON object per line and is used for the daemon
// log file.
package logging
