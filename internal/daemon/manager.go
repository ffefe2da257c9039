package daemon

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/fumishiki/polyscript/internal/fault"
	"github.com/fumishiki/polyscript/internal/paths"
	"github.com/fumishiki/polyscript/internal/protocol"
	"github.com/fumishiki/polyscript/internal/runtime"
)

const (

	// Time allowed for a started daemon to accept connections, and for a
	// stopped one to release its socket.
	DefaultStartTimeout = 5 * time.Second

	// Time allowed for a single connection attempt.
	DefaultDialTimeout = time.Second

	// Interval between socket probes while waiting.
	pollInterval = 20 * time.Millisecond
)

// Holds lifecycle manager configuration. Empty fields use defaults.
type Config struct {
	SocketPath   string        // Unix socket of the daemon.
	PIDFile      string        // Advisory PID record.
	LogFile      string        // Receives the daemon's stdout and stderr.
	Executable   string        // Binary started as the daemon. Empty means the current executable.
	ServeArgs    []string      // Arguments that make Executable serve. Defaults to "daemon serve".
	StartTimeout time.Duration // Bound on readiness and shutdown waits.
	DialTimeout  time.Duration // Bound on one connection attempt.
}

// Observed daemon state.
type Status struct {
	Running    bool   // Whether the socket accepts connections.
	PID        int    // PID from the advisory record, 0 if absent.
	SocketPath string // Socket that was probed.
	PIDFile    string // PID record that was read.
}

// Starts, stops and talks to the daemon.
type Manager struct {
	cfg Config
}

// Creates a manager, filling unset configuration with defaults.
func New(cfg Config) *Manager {
	if cfg.SocketPath == "" {
		cfg.SocketPath = paths.Socket()
	}
	if cfg.PIDFile == "" {
		cfg.PIDFile = paths.PIDFile()
	}
	if cfg.LogFile == "" {
		cfg.LogFile = paths.LogFile()
	}
	if len(cfg.ServeArgs) == 0 {
		cfg.ServeArgs = []string{"daemon", "serve"}
	}
	if cfg.StartTimeout <= 0 {
		cfg.StartTimeout = DefaultStartTimeout
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = DefaultDialTimeout
	}
	return &Manager{cfg: cfg}
}

// Starts the daemon as a detached process and waits until it is ready.
//
// Fails with [ErrAlreadyRunning] if the socket already accepts connections.
// The child runs in its own session with stdin closed and its output appended
// to the log file. Its PID is recorded before readiness is awaited. If the
// child exits before the socket becomes ready, or the start timeout elapses,
// Start fails with [ErrDaemon].
func (m *Manager) Start(ctx context.Context) (int, error) {
	if m.alive(ctx) {
		return 0, fault.Wrapf(ErrAlreadyRunning, "listening on %s", m.cfg.SocketPath)
	}

	exe := m.cfg.Executable
	if exe == "" {
		var err error
		if exe, err = os.Executable(); err != nil {
			return 0, fault.Wrap(ErrDaemon, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(m.cfg.LogFile), paths.DefaultDirMode); err != nil {
		return 0, fault.Wrap(ErrDaemon, err)
	}
	logFile, err := os.OpenFile(m.cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, paths.DefaultFileMode)
	if err != nil {
		return 0, fault.Wrap(ErrDaemon, err)
	}
	defer logFile.Close()

	cmd := exec.Command(exe, m.cfg.ServeArgs...)
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	detach(cmd)

	if err := cmd.Start(); err != nil {
		return 0, fault.Wrap(ErrDaemon, err)
	}
	pid := cmd.Process.Pid

	if err := writePID(m.cfg.PIDFile, pid); err != nil {
		slog.Warn("failed to write PID file", "path", m.cfg.PIDFile, "error", err)
	}

	slog.Debug("daemon spawned", "pid", pid, "log", m.cfg.LogFile)

	exited := make(chan error, 1)
	go func() {
		exited <- cmd.Wait()
	}()

	return pid, m.awaitReady(ctx, exited)
}

// Polls the socket until it accepts a connection.
func (m *Manager) awaitReady(ctx context.Context, exited <-chan error) error {
	deadline := time.NewTimer(m.cfg.StartTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case err := <-exited:
			os.Remove(m.cfg.PIDFile)
			if err == nil {
				err = errors.New("exit status 0")
			}
			return fault.Wrapf(ErrDaemon, "daemon exited during startup (%v), see %s", err, m.cfg.LogFile)
		case <-deadline.C:
			return fault.Wrapf(ErrDaemon, "daemon not ready after %s, see %s", m.cfg.StartTimeout, m.cfg.LogFile)
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if m.alive(ctx) {
				return nil
			}
		}
	}
}

// Asks the daemon to stop and waits until its socket is gone.
//
// Fails with [ErrDaemonNotRunning] when nothing listens on the socket.
func (m *Manager) Stop(ctx context.Context) error {
	conn, err := m.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := protocol.NewEncoder(conn).Encode(protocol.StopRequest()); err != nil {
		return fault.Wrap(ErrDaemon, err)
	}

	var resp protocol.Response
	if err := protocol.NewDecoder(conn, protocol.MaxResponseSize).Decode(&resp); err != nil {
		return fault.Wrap(ErrDaemon, err)
	}
	if !resp.IsStopped() {
		return fault.Wrapf(protocol.ErrProtocol, "unexpected stop acknowledgment %+v", resp)
	}

	os.Remove(m.cfg.PIDFile)
	return m.awaitGone(ctx)
}

// Polls the socket until it refuses connections.
func (m *Manager) awaitGone(ctx context.Context) error {
	deadline := time.Now().Add(m.cfg.StartTimeout)
	for m.alive(ctx) {
		if time.Now().After(deadline) {
			return fault.Wrapf(ErrDaemon, "daemon still listening after %s", m.cfg.StartTimeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
	return nil
}

// Submits one job to the daemon and copies its output to stdout and stderr.
//
// The script path is made absolute first since the daemon does not share the
// caller's working directory. A non-zero exit is returned as a
// [*runtime.ExitError]. When no daemon is listening the call fails with
// [ErrDaemonNotRunning] and writes nothing.
func (m *Manager) Run(ctx context.Context, job runtime.Job, stdout, stderr io.Writer) error {
	script, err := filepath.Abs(job.Script)
	if err != nil {
		return err
	}

	conn, err := m.dial(ctx)
	if err != nil {
		return fault.Wrapf(err, "start it with `polyscript daemon start`")
	}
	defer conn.Close()

	req := protocol.Request{Lang: job.Lang, Script: script, Args: job.Args}
	if err := protocol.NewEncoder(conn).Encode(req); err != nil {
		return fault.Wrap(ErrDaemon, err)
	}
	if uc, ok := conn.(*net.UnixConn); ok {
		uc.CloseWrite()
	}

	var resp protocol.Response
	if err := protocol.NewDecoder(conn, protocol.MaxResponseSize).Decode(&resp); err != nil {
		if errors.Is(err, io.EOF) {
			return fault.Wrapf(ErrDaemon, "connection closed before a response arrived")
		}
		return fault.Wrap(ErrDaemon, err)
	}

	io.WriteString(stdout, resp.Stdout)
	io.WriteString(stderr, resp.Stderr)

	if resp.Exit != 0 {
		return &runtime.ExitError{Code: resp.Exit}
	}
	return nil
}

// Reports whether the daemon answers and what the PID record says.
func (m *Manager) Status(ctx context.Context) Status {
	st := Status{
		Running:    m.alive(ctx),
		SocketPath: m.cfg.SocketPath,
		PIDFile:    m.cfg.PIDFile,
	}
	if pid, err := readPID(m.cfg.PIDFile); err == nil {
		st.PID = pid
	}
	return st
}

// Connects to the daemon socket.
func (m *Manager) dial(ctx context.Context) (net.Conn, error) {
	d := net.Dialer{Timeout: m.cfg.DialTimeout}
	conn, err := d.DialContext(ctx, "unix", m.cfg.SocketPath)
	if err != nil {
		slog.Debug("dial failed", "path", m.cfg.SocketPath, "error", err)
		return nil, fault.Wrapf(ErrDaemonNotRunning, "no listener on %s", m.cfg.SocketPath)
	}
	return conn, nil
}

// Whether the daemon socket accepts connections.
func (m *Manager) alive(ctx context.Context) bool {
	conn, err := m.dial(ctx)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
