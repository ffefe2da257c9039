// Package config loads the optional polyscript configuration file.
//
// The file is TOML (.toml) or YAML (.yaml, .yml). It can relocate the
// daemon's socket, PID file and log, tune its timing, set the default log
// level, and override or add dispatch table entries:
//
//	socket = "/tmp/polyscript.sock"
//	grace_delay = "250ms"
//	log_level = "debug"
//
//	[languages.rb]
//	kind = "subprocess"
//	command = ["ruby"]
//
//	[languages.c]
//	kind = "compile"
//	build = ["cc", "-O2", "-o", "{out}", "{src}"]
//	run = ["{out}"]
//
// Values missing from the file keep their defaults. Command-line flags take
// precedence over both.
package config
