package server

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fumishiki/polyscript/internal/fault"
	"github.com/fumishiki/polyscript/internal/paths"
	"github.com/fumishiki/polyscript/internal/runtime"
)

const (

	// Delay between acknowledging a stop request and shutting down.
	DefaultGraceDelay = 100 * time.Millisecond

	// File mode applied to the Unix socket. Only the owner may connect.
	socketMode = 0600
)

// Runs one job to completion.
type Runner interface {
	Run(ctx context.Context, job runtime.Job) (*runtime.Result, error)
}

// Holds server configuration.
type Config struct {
	SocketPath string        // Override for the Unix socket path. Empty uses the default.
	GraceDelay time.Duration // Delay before stopping after a stop request. Zero uses [DefaultGraceDelay].
	Runner     Runner        // Executes requests. Required.
}

// Listens on a Unix domain socket and serves sessions.
type Server struct {
	socketPath string                // Path to the Unix socket file.
	graceDelay time.Duration         // Delay between stop acknowledgment and shutdown.
	runner     Runner                // Executes job requests.
	listener   net.Listener          // Listener for incoming connections.
	startedAt  time.Time             // Timestamp when the server started.
	conns      map[net.Conn]struct{} // Open sessions, closed on stop.
	done       chan struct{}         // Closed when the server stops.
	stopOnce   sync.Once             // Guards shutdown.
	mu         sync.Mutex            // Protects conns.
}

// Creates a new server instance.
//
// The socket is not opened until [Server.Start] is called.
func New(cfg Config) (*Server, error) {
	if cfg.Runner == nil {
		return nil, fault.Wrapf(ErrServer, "no runner configured")
	}

	socketPath := cfg.SocketPath
	if socketPath == "" {
		socketPath = paths.Socket()
	}

	graceDelay := cfg.GraceDelay
	if graceDelay <= 0 {
		graceDelay = DefaultGraceDelay
	}

	return &Server{
		socketPath: socketPath,
		graceDelay: graceDelay,
		runner:     cfg.Runner,
		conns:      make(map[net.Conn]struct{}),
		done:       make(chan struct{}),
	}, nil
}

// Returns the path of the Unix socket.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Opens the Unix socket and begins accepting connections.
//
// Failing to bind is fatal; no retry is attempted.
func (s *Server) Start() error {
	listener, err := listen(s.socketPath)
	if err != nil {
		return err
	}

	s.listener = listener
	s.startedAt = time.Now()

	slog.Info("server listening on socket", "path", s.socketPath, "pid", os.Getpid())

	go s.accept()
	return nil
}

// Creates the Unix socket listener, removes any stale socket from a previous
// run, and applies permissions.
func listen(socketPath string) (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(socketPath), paths.DefaultDirMode); err != nil {
		return nil, fault.Wrap(ErrServer, err)
	}

	if err := os.Remove(socketPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to remove stale socket", "path", socketPath, "error", err)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fault.Wrapf(ErrServer, "failed to listen on %s: %w", socketPath, err)
	}

	if err := os.Chmod(socketPath, socketMode); err != nil {
		listener.Close()
		return nil, fault.Wrapf(ErrServer, "failed to chmod socket %s: %w", socketPath, err)
	}

	return listener, nil
}

// Shuts down the server.
//
// Closes the listener and every open session, and removes the socket file.
// Safe to call more than once.
func (s *Server) Stop() error {
	s.stopOnce.Do(func() {
		close(s.done)

		if s.listener != nil {
			s.listener.Close()
		}

		s.mu.Lock()
		for conn := range s.conns {
			conn.Close()
		}
		s.mu.Unlock()

		os.Remove(s.socketPath)

		slog.Info("server stopped", "uptime", time.Since(s.startedAt).Truncate(time.Millisecond))
	})
	return nil
}

// Blocks until the server stops.
func (s *Server) Wait() {
	<-s.done
}

// Whether the server has been stopped.
func (s *Server) stopped() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Accepts connections in a loop until the server shuts down.
func (s *Server) accept() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.stopped() {
				return
			}
			slog.Error("accept error", "error", err)
			continue
		}

		if !s.track(conn) {
			conn.Close()
			return
		}
		go s.handle(conn)
	}
}

// Registers an open session. Returns false once the server has stopped.
func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped() {
		return false
	}
	s.conns[conn] = struct{}{}
	return true
}

// Forgets a closed session.
func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}
