package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/fumishiki/polyscript/internal/protocol"
	"github.com/fumishiki/polyscript/internal/runtime"
	"github.com/google/uuid"
)

// Serves one connection.
//
// Requests are read and answered one at a time until the peer closes the
// stream, a stop request arrives, or a line cannot be decoded. A decoding
// failure ends this session only.
func (s *Server) handle(conn net.Conn) {
	defer s.untrack(conn)
	defer conn.Close()

	logger := slog.With("session", uuid.NewString())
	logger.Debug("session opened")

	dec := protocol.NewDecoder(conn, protocol.MaxRequestSize)
	enc := protocol.NewEncoder(conn)

	for {
		var req protocol.Request
		if err := dec.Decode(&req); err != nil {
			switch {
			case errors.Is(err, io.EOF):
				logger.Debug("session closed")
			case errors.Is(err, protocol.ErrProtocol):
				logger.Error("session aborted", "error", err)
			case !s.stopped():
				logger.Warn("read error", "error", err)
			}
			return
		}

		if s.stopped() {
			return
		}

		if req.Stop {
			s.handleStop(logger, enc)
			return
		}

		if err := enc.Encode(s.handleRun(logger, req)); err != nil {
			logger.Warn("write error", "error", err)
			return
		}
	}
}

// Acknowledges a stop request and schedules shutdown after the grace delay.
func (s *Server) handleStop(logger *slog.Logger, enc *protocol.Encoder) {
	if err := enc.Encode(protocol.Stopped()); err != nil {
		logger.Warn("write error", "error", err)
	}
	logger.Info("stop requested", "grace", s.graceDelay)

	time.AfterFunc(s.graceDelay, func() {
		s.Stop()
	})
}

// Runs one job request and builds its response.
//
// A job that could not be started still yields a response: the exit code
// follows shell conventions (127 not found, 126 not executable) and stderr
// carries the error.
func (s *Server) handleRun(logger *slog.Logger, req protocol.Request) protocol.Response {
	logger = logger.With("lang", req.Lang, "script", req.Script)
	started := time.Now()

	res, err := s.runner.Run(context.Background(), runtime.Job{
		Lang:   req.Lang,
		Script: req.Script,
		Args:   req.Args,
	})
	if err != nil {
		logger.Warn("job not started", "error", err)
		return protocol.Response{
			Exit:   runtime.FailureCode(err),
			Stderr: err.Error() + "\n",
		}
	}

	logger.Info("job finished", "exit", res.Exit, "duration", time.Since(started).Truncate(time.Millisecond))
	return protocol.Response{
		Exit:   res.Exit,
		Stdout: res.Stdout,
		Stderr: res.Stderr,
	}
}
