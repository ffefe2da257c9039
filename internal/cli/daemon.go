package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fumishiki/polyscript/internal/config"
	"github.com/fumishiki/polyscript/internal/daemon"
	"github.com/fumishiki/polyscript/internal/dispatch"
	"github.com/fumishiki/polyscript/internal/runtime"
	"github.com/fumishiki/polyscript/internal/server"
)

// Represents 'polyscript daemon'.
type DaemonCmd struct {
	Start  DaemonStartCmd  `cmd:"" help:"Start the daemon in the background."`
	Stop   DaemonStopCmd   `cmd:"" help:"Stop the running daemon."`
	Status DaemonStatusCmd `cmd:"" help:"Show whether the daemon is running."`
	Exec   DaemonRunCmd    `cmd:"" name:"run" passthrough:"" help:"Run a script through the daemon."`
	Serve  DaemonServeCmd  `cmd:"" hidden:"" help:"Serve requests in the foreground."`
}

// Represents 'polyscript daemon start'.
type DaemonStartCmd struct{}

// Executes the start command.
func (c *DaemonStartCmd) Run(ctx context.Context, g *Globals, cfg *config.Config) error {
	pid, err := manager(g, cfg).Start(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "polyscript daemon started (PID %d)\n", pid)
	return nil
}

// Represents 'polyscript daemon stop'.
type DaemonStopCmd struct{}

// Executes the stop command.
func (c *DaemonStopCmd) Run(ctx context.Context, g *Globals, cfg *config.Config) error {
	if err := manager(g, cfg).Stop(ctx); err != nil {
		return err
	}
	fmt.Fprintln(stdout, "daemon stopped")
	return nil
}

// Represents 'polyscript daemon status'.
type DaemonStatusCmd struct{}

// Executes the status command.
//
// Liveness is a connection probe; the PID comes from the advisory record.
func (c *DaemonStatusCmd) Run(ctx context.Context, g *Globals, cfg *config.Config) error {
	st := manager(g, cfg).Status(ctx)

	switch {
	case !st.Running:
		fmt.Fprintln(stdout, "daemon not running")
	case st.PID > 0:
		fmt.Fprintf(stdout, "daemon running (PID %d)\n", st.PID)
	default:
		fmt.Fprintln(stdout, "daemon running")
	}
	fmt.Fprintf(stdout, "socket: %s\n", st.SocketPath)
	return nil
}

// Represents 'polyscript daemon run <lang> <script> [args...]'.
type DaemonRunCmd struct {
	Argv []string `arg:"" name:"job" help:"Language tag, script, and arguments passed to the script."`
}

// Executes the run command.
func (c *DaemonRunCmd) Run(ctx context.Context, g *Globals, cfg *config.Config) error {
	job, err := parseJob(c.Argv)
	if err != nil {
		return err
	}
	return manager(g, cfg).Run(ctx, job, stdout, stderr)
}

// Represents 'polyscript daemon serve'.
type DaemonServeCmd struct{}

// Executes the serve command.
//
// Serves until a client sends the stop request or the process receives
// SIGINT or SIGTERM. Every job is run by re-executing this binary, so no
// interpreter state survives between requests.
func (c *DaemonServeCmd) Run(ctx context.Context, g *Globals, cfg *config.Config) error {
	table, err := cfg.Table()
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		SocketPath: cfg.Socket,
		GraceDelay: cfg.GraceDelay.Duration,
		Runner:     jobRunner(cfg, table),
	})
	if err != nil {
		return err
	}

	if err := srv.Start(); err != nil {
		return err
	}
	if err := daemon.RecordPID(cfg.PIDFile); err != nil {
		slog.Warn("failed to write PID file", "path", cfg.PIDFile, "error", err)
	}
	defer daemon.ClearPID(cfg.PIDFile)

	stopped := make(chan struct{})
	go func() {
		srv.Wait()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-ctx.Done():
		slog.Info("shutting down")
		srv.Stop()
	}
	return nil
}

// Creates a lifecycle manager for the configured daemon.
func manager(g *Globals, cfg *config.Config) *daemon.Manager {
	return daemon.New(daemon.Config{
		SocketPath:   cfg.Socket,
		PIDFile:      cfg.PIDFile,
		LogFile:      cfg.LogFile,
		ServeArgs:    serveArgs(g, cfg),
		StartTimeout: cfg.StartTimeout.Duration,
	})
}

// Arguments that make this binary serve with the current configuration.
func serveArgs(g *Globals, cfg *config.Config) []string {
	var args []string
	if cfg.Path() != "" {
		args = append(args, "--config", cfg.Path())
	}
	args = append(args, "--socket", cfg.Socket, "--pid-file", cfg.PIDFile)
	if g.Debug {
		args = append(args, "--debug")
	}
	return append(args, "--log-format", "json", "daemon", "serve")
}

// Creates the runner that re-executes this binary for every served job.
func jobRunner(cfg *config.Config, table *dispatch.Table) *runtime.Runner {
	return runtime.NewRunner(table, runtime.SelfExec{Args: jobArgs(cfg)})
}

// Global flags placed before each re-executed job.
//
// Only errors are logged so the job's captured stderr holds what the script
// wrote.
func jobArgs(cfg *config.Config) []string {
	args := []string{"--log-level", "error"}
	if cfg.Path() != "" {
		args = append(args, "--config", cfg.Path())
	}
	return args
}
