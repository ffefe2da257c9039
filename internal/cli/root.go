package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fumishiki/polyscript/internal"
	"github.com/fumishiki/polyscript/internal/config"
	"github.com/fumishiki/polyscript/internal/logging"
	"github.com/fumishiki/polyscript/internal/paths"
)

// Output streams of commands that print.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// Flags accepted by every command.
type Globals struct {
	Quiet     bool   `short:"q" help:"Suppress informational output."`
	Verbose   bool   `short:"v" help:"Enable verbose output."`
	Debug     bool   `short:"d" help:"Enable debug output."`
	Socket    string `short:"s" help:"Override the daemon socket path." placeholder:"PATH"`
	PIDFile   string `name:"pid-file" help:"Override the daemon PID file." placeholder:"PATH"`
	Config    string `short:"c" help:"Configuration file (TOML or YAML)." placeholder:"PATH"`
	LogFormat string `name:"log-format" help:"Log output format." enum:"pretty,json" default:"pretty"`
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error). Overrides -q and -d." placeholder:"LEVEL"`
}

// Applies flag overrides on top of the loaded configuration.
func (g *Globals) apply(cfg *config.Config) error {
	if g.Socket != "" {
		cfg.Socket = g.Socket
	}
	if g.PIDFile != "" {
		cfg.PIDFile = g.PIDFile
	}
	if g.LogLevel != "" {
		if _, err := config.ParseLevel(g.LogLevel); err != nil {
			return err
		}
		cfg.LogLevel = g.LogLevel
	}
	return nil
}

// Represents the root command.
var RootCmd struct {
	Globals

	Exec      ExecCmd      `cmd:"" default:"withargs" passthrough:"" help:"Run a script directly (default command)."`
	Parallel  ParallelCmd  `cmd:"" help:"Run several scripts concurrently."`
	Daemon    DaemonCmd    `cmd:"" help:"Manage the resident daemon."`
	Languages LanguagesCmd `cmd:"" help:"List supported languages."`
	Version   VersionCmd   `cmd:"" help:"Show version information."`
}

// Parses arguments, loads configuration, configures logging, and runs the
// selected command.
func Execute() error {

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kongCtx := kong.Parse(&RootCmd,
		kong.Name(internal.Name),
		kong.Description("Polyglot script dispatcher.\n\nRuns a script with the interpreter, compiler or bridge registered for its language, directly, in parallel batches, or through a resident daemon."),
		kong.UsageOnError(),
		kong.Vars{
			"version": internal.Build().String(),
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	cfg, err := config.Load(RootCmd.Config)
	if err != nil {
		return err
	}
	if err := RootCmd.apply(cfg); err != nil {
		return err
	}

	configureLogger(&RootCmd.Globals, cfg)

	for _, key := range cfg.UnknownKeys() {
		slog.Warn("unknown configuration key", "file", cfg.Path(), "key", key)
	}

	slog.Debug("ipc hint", "dir", paths.ExportIPCHint())

	kongCtx.Bind(cfg, &RootCmd.Globals)
	return kongCtx.Run()
}

// Configures the global logger based on CLI flags and configuration.
func configureLogger(g *Globals, cfg *config.Config) {
	handler, ok := slog.Default().Handler().(*logging.Handler)
	if !ok {
		return // Not a logging.Handler, nothing to configure
	}

	modes := internal.DefaultModes()
	debug := g.Debug || modes.Debug
	quiet := g.Quiet || modes.Quiet
	verbose := g.Verbose || modes.Verbose

	// Configure formatter
	var formatter logging.Formatter = logging.JSONFormatter{}
	if g.LogFormat != "json" {
		pretty := logging.NewPrettyFormatter(os.Stderr)
		pretty.SetVerbose(verbose)
		formatter = pretty
	}

	// Configure handler
	switch {
	case g.LogLevel != "":
		handler.SetLevel(cfg.Level())
	case debug:
		handler.SetLevel(slog.LevelDebug)
	case quiet:
		handler.SetLevel(slog.LevelWarn)
	default:
		handler.SetLevel(cfg.Level())
	}

	// Commit
	handler.SetFormatter(formatter)
	handler.SetStream(os.Stderr)
}
