package server

import (
	"bufio"
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fumishiki/polyscript/internal/dispatch"
	"github.com/fumishiki/polyscript/internal/fault"
	"github.com/fumishiki/polyscript/internal/protocol"
	"github.com/fumishiki/polyscript/internal/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runner double that echoes the job back, or blocks on lang "slow".
type fakeRunner struct {
	release chan struct{}
	mu      sync.Mutex
	jobs    []runtime.Job
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{release: make(chan struct{})}
}

func (r *fakeRunner) Run(_ context.Context, job runtime.Job) (*runtime.Result, error) {
	r.mu.Lock()
	r.jobs = append(r.jobs, job)
	r.mu.Unlock()

	switch job.Lang {
	case "slow":
		<-r.release
	case "cobol":
		return nil, fault.Wrapf(dispatch.ErrUnknownLanguage, "%q", job.Lang)
	case "broken":
		return nil, fault.Wrapf(dispatch.ErrSpawn, "no interpreter")
	}

	return &runtime.Result{
		Exit:   len(job.Args),
		Stdout: "hello " + strings.Join(job.Args, " ") + "\n",
	}, nil
}

func (r *fakeRunner) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}

// Returns a socket path short enough for sun_path.
func socketPath(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "ps")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Join(dir, "s.sock")
}

func startServer(t *testing.T, runner Runner) *Server {
	t.Helper()
	srv, err := New(Config{SocketPath: socketPath(t), GraceDelay: 10 * time.Millisecond, Runner: runner})
	require.NoError(t, err)
	require.NoError(t, srv.Start())
	t.Cleanup(func() { srv.Stop() })
	return srv
}

type client struct {
	conn net.Conn
	enc  *protocol.Encoder
	dec  *protocol.Decoder
}

func dial(t *testing.T, srv *Server) *client {
	t.Helper()
	conn, err := net.Dial("unix", srv.SocketPath())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &client{conn: conn, enc: protocol.NewEncoder(conn), dec: protocol.NewDecoder(conn, protocol.MaxResponseSize)}
}

func (c *client) roundTrip(t *testing.T, req protocol.Request) protocol.Response {
	t.Helper()
	require.NoError(t, c.enc.Encode(req))
	var resp protocol.Response
	require.NoError(t, c.dec.Decode(&resp))
	return resp
}

func TestNewRequiresRunner(t *testing.T) {
	_, err := New(Config{SocketPath: "x.sock"})
	assert.ErrorIs(t, err, ErrServer)
}

func TestSessionRunsRequest(t *testing.T) {
	srv := startServer(t, newFakeRunner())
	c := dial(t, srv)

	resp := c.roundTrip(t, protocol.Request{Lang: "py", Script: "a.py", Args: []string{"x"}})
	assert.Equal(t, protocol.Response{Exit: 1, Stdout: "hello x\n", Stderr: ""}, resp)
}

func TestSessionRawWireFormat(t *testing.T) {
	srv := startServer(t, newFakeRunner())
	c := dial(t, srv)

	_, err := c.conn.Write([]byte(`{"lang":"py","script":"a.py","args":[],"extra":true}` + "\n"))
	require.NoError(t, err)

	line, err := bufio.NewReader(c.conn).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, `{"exit":0,"stdout":"hello \n","stderr":""}`+"\n", line)
}

func TestSessionPreservesOrder(t *testing.T) {
	runner := newFakeRunner()
	srv := startServer(t, runner)
	c := dial(t, srv)

	for i := range 5 {
		args := make([]string, i)
		for j := range args {
			args[j] = "a"
		}
		resp := c.roundTrip(t, protocol.Request{Lang: "py", Script: "a.py", Args: args})
		assert.Equal(t, i, resp.Exit)
	}
	assert.Equal(t, 5, runner.count())
}

func TestRunnerErrorsBecomeResponses(t *testing.T) {
	srv := startServer(t, newFakeRunner())
	c := dial(t, srv)

	resp := c.roundTrip(t, protocol.Request{Lang: "cobol", Script: "a.cob"})
	assert.Equal(t, runtime.CodeNotFound, resp.Exit)
	assert.Contains(t, resp.Stderr, "unknown language")

	resp = c.roundTrip(t, protocol.Request{Lang: "broken", Script: "a"})
	assert.Equal(t, runtime.CodeCannotExecute, resp.Exit)

	resp = c.roundTrip(t, protocol.Request{Lang: "py", Script: "a.py"})
	assert.Equal(t, 0, resp.Exit)
}

func TestSlowSessionDoesNotBlockOthers(t *testing.T) {
	runner := newFakeRunner()
	srv := startServer(t, runner)

	slow := dial(t, srv)
	require.NoError(t, slow.enc.Encode(protocol.Request{Lang: "slow", Script: "s"}))

	fast := dial(t, srv)
	resp := fast.roundTrip(t, protocol.Request{Lang: "py", Script: "a.py"})
	assert.Equal(t, 0, resp.Exit)

	close(runner.release)
	var slowResp protocol.Response
	require.NoError(t, slow.dec.Decode(&slowResp))
	assert.Equal(t, "hello \n", slowResp.Stdout)
}

func TestMalformedLineEndsOnlyThatSession(t *testing.T) {
	for _, line := range []string{"not json", "null", `["py","a.py"]`} {
		t.Run(line, func(t *testing.T) {
			runner := newFakeRunner()
			srv := startServer(t, runner)

			bad := dial(t, srv)
			_, err := bad.conn.Write([]byte(line + "\n"))
			require.NoError(t, err)

			bad.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
			_, err = bufio.NewReader(bad.conn).ReadByte()
			assert.Error(t, err, "session should end without a response")
			assert.Zero(t, runner.count())

			good := dial(t, srv)
			resp := good.roundTrip(t, protocol.Request{Lang: "py", Script: "a.py"})
			assert.Equal(t, 0, resp.Exit)
		})
	}
}

func TestStopAcknowledgesAndShutsDown(t *testing.T) {
	srv := startServer(t, newFakeRunner())
	c := dial(t, srv)

	resp := c.roundTrip(t, protocol.StopRequest())
	assert.Equal(t, protocol.Response{Exit: 0, Stdout: "", Stderr: "daemon stopped"}, resp)

	done := make(chan struct{})
	go func() {
		srv.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after grace delay")
	}

	_, err := net.Dial("unix", srv.SocketPath())
	assert.Error(t, err)
	assert.NoFileExists(t, srv.SocketPath())
}

func TestStopCutsOffOtherSessions(t *testing.T) {
	runner := newFakeRunner()
	srv := startServer(t, runner)

	idle := dial(t, srv)
	idle.roundTrip(t, protocol.Request{Lang: "py", Script: "a.py"})

	dial(t, srv).roundTrip(t, protocol.StopRequest())
	srv.Wait()

	idle.conn.SetDeadline(time.Now().Add(5 * time.Second))
	idle.enc.Encode(protocol.Request{Lang: "py", Script: "a.py"})
	var resp protocol.Response
	assert.Error(t, idle.dec.Decode(&resp))
}

func TestStartRemovesStaleSocket(t *testing.T) {
	path := socketPath(t)
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0644))

	srv, err := New(Config{SocketPath: path, Runner: newFakeRunner()})
	require.NoError(t, err)
	require.NoError(t, srv.Start())
	defer srv.Stop()

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.ModeSocket, info.Mode().Type())
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestStartFailsWhenBindFails(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	srv, err := New(Config{SocketPath: filepath.Join(file, "s.sock"), Runner: newFakeRunner()})
	require.NoError(t, err)
	assert.ErrorIs(t, srv.Start(), ErrServer)
}

func TestStopIsIdempotent(t *testing.T) {
	srv := startServer(t, newFakeRunner())
	assert.NoError(t, srv.Stop())
	assert.NoError(t, srv.Stop())
}
