package parallel

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fumishiki/polyscript/internal/build"
	"github.com/fumishiki/polyscript/internal/dispatch"
	"github.com/fumishiki/polyscript/internal/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runner double keyed by language tag.
type funcRunner func(job runtime.Job) (*runtime.Result, error)

func (f funcRunner) Run(_ context.Context, job runtime.Job) (*runtime.Result, error) {
	return f(job)
}

func TestParseSpec(t *testing.T) {
	tests := []struct {
		spec    string
		want    runtime.Job
		wantErr bool
	}{
		{spec: "py a.py", want: runtime.Job{Lang: "py", Script: "a.py", Args: []string{}}},
		{spec: "go b.go 2 three", want: runtime.Job{Lang: "go", Script: "b.go", Args: []string{"2", "three"}}},
		{spec: "  js   c.js\tx  ", want: runtime.Job{Lang: "js", Script: "c.js", Args: []string{"x"}}},
		{spec: "py", wantErr: true},
		{spec: "", wantErr: true},
		{spec: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := ParseSpec(tt.spec)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedSpec)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExecuteAllSucceed(t *testing.T) {
	runner := funcRunner(func(job runtime.Job) (*runtime.Result, error) {
		return &runtime.Result{Stdout: job.Lang + " " + job.Script}, nil
	})

	outcomes, err := New(runner).Execute(context.Background(), []string{"py a.py 1", "go b.go 2"})
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.Equal(t, "py a.py", outcomes[0].Result.Stdout)
	assert.Equal(t, "go b.go", outcomes[1].Result.Stdout)
}

func TestExecuteOneFailureWaitsForOthers(t *testing.T) {
	var finished atomic.Int32
	runner := funcRunner(func(job runtime.Job) (*runtime.Result, error) {
		if job.Lang == "go" {
			return &runtime.Result{Exit: 1, Stderr: "boom"}, nil
		}
		time.Sleep(50 * time.Millisecond)
		finished.Add(1)
		return &runtime.Result{Stdout: "ok"}, nil
	})

	outcomes, err := New(runner).Execute(context.Background(), []string{"py a.py 1", "go b.go 2", "js c.js"})

	require.Error(t, err)
	assert.Equal(t, int32(2), finished.Load())

	var exitErr *runtime.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.Code)
	assert.Contains(t, err.Error(), "go b.go 2")

	assert.NoError(t, outcomes[0].Err)
	assert.Equal(t, "ok", outcomes[0].Result.Stdout)
	assert.Error(t, outcomes[1].Err)
	assert.Equal(t, "boom", outcomes[1].Result.Stderr)
	assert.NoError(t, outcomes[2].Err)
}

func TestExecuteRunsConcurrently(t *testing.T) {
	const n = 4
	var started sync.WaitGroup
	started.Add(n)
	release := make(chan struct{})

	runner := funcRunner(func(runtime.Job) (*runtime.Result, error) {
		started.Done()
		<-release
		return &runtime.Result{}, nil
	})

	go func() {
		started.Wait()
		close(release)
	}()

	done := make(chan error, 1)
	go func() {
		_, err := New(runner).Execute(context.Background(), []string{"a 1", "b 2", "c 3", "d 4"})
		done <- err
	}()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("jobs did not run concurrently")
	}
}

func TestExecuteMalformedSpecSpawnsNothing(t *testing.T) {
	var calls atomic.Int32
	runner := funcRunner(func(runtime.Job) (*runtime.Result, error) {
		calls.Add(1)
		return &runtime.Result{}, nil
	})

	outcomes, err := New(runner).Execute(context.Background(), []string{"py", "go b.go"})

	require.ErrorIs(t, err, ErrMalformedSpec)
	assert.Equal(t, int32(1), calls.Load())
	assert.Nil(t, outcomes[0].Result)
	assert.NoError(t, outcomes[1].Err)
}

func TestExecuteRecoversPanics(t *testing.T) {
	runner := funcRunner(func(job runtime.Job) (*runtime.Result, error) {
		if job.Lang == "bad" {
			panic("bridge exploded")
		}
		return &runtime.Result{}, nil
	})

	outcomes, err := New(runner).Execute(context.Background(), []string{"bad x", "good y"})

	require.ErrorIs(t, err, ErrJobPanicked)
	assert.Contains(t, err.Error(), "bridge exploded")
	assert.NoError(t, outcomes[1].Err)
}

func TestExecuteJoinsEveryFailure(t *testing.T) {
	spawn := errors.New("no interpreter")
	runner := funcRunner(func(job runtime.Job) (*runtime.Result, error) {
		switch job.Lang {
		case "a":
			return nil, spawn
		case "b":
			return &runtime.Result{Exit: 2}, nil
		}
		return &runtime.Result{}, nil
	})

	_, err := New(runner).Execute(context.Background(), []string{"a x", "b y", "c z", "d"})

	assert.ErrorIs(t, err, spawn)
	assert.ErrorIs(t, err, ErrMalformedSpec)
	var exitErr *runtime.ExitError
	assert.ErrorAs(t, err, &exitErr)
}

func TestExecuteEmptyBatch(t *testing.T) {
	outcomes, err := New(funcRunner(nil)).Execute(context.Background(), nil)
	assert.NoError(t, err)
	assert.Empty(t, outcomes)
}

// Embedded entries inside a batch must run through their fallback.
type trapBridge struct{}

func (trapBridge) Run(context.Context, string, []string, dispatch.Stdio) (int, error) {
	panic("in-process bridge used inside a batch")
}

func TestExecuteWithIsolatedTable(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0644))
		return path
	}
	a := write("a.emb", `echo "emb $1"`)
	b := write("b.sh", `echo "sh $1"; exit 1`)

	table, err := dispatch.New(build.NewCache(t.TempDir()),
		dispatch.Entry{Lang: "sh", Kind: dispatch.KindSubprocess, Command: []string{"sh"}},
		dispatch.Entry{Lang: "emb", Kind: dispatch.KindEmbedded, Bridge: trapBridge{}, Fallback: []string{"sh"}},
	)
	require.NoError(t, err)

	isolated := table.Isolated()
	exec := New(runtime.NewRunner(isolated, runtime.TableLauncher{Table: isolated}))

	outcomes, err := exec.Execute(context.Background(), []string{"emb " + a + " 1", "sh " + b + " 2"})

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrJobPanicked)
	assert.Equal(t, "emb 1\n", outcomes[0].Result.Stdout)
	assert.NoError(t, outcomes[0].Err)
	assert.Equal(t, "sh 2\n", outcomes[1].Result.Stdout)
	assert.Equal(t, 1, outcomes[1].Result.Exit)
}
