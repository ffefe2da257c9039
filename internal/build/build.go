package build

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/fumishiki/polyscript/internal/fault"
	"github.com/fumishiki/polyscript/internal/paths"
	"github.com/google/uuid"
	"github.com/opencontainers/go-digest"
)

// Controls a single compilation.
type Options struct {
	Source  string    // Path to the source file.
	Command []string  // Compiler command line template.
	Ext     string    // Artifact file extension, including the dot (e.g. ".jar").
	Stdout  io.Writer // Receives compiler output. Nil discards.
	Stderr  io.Writer // Receives compiler diagnostics. Nil discards.
}

// Returned after a compilation attempt.
type Result struct {
	Output string // Path to the artifact. Empty when Exit is non-zero.
	Cached bool   // Whether the artifact was already present.
	Exit   int    // Compiler exit code. Non-zero means the source did not compile.
}

// Content-addressed store of compiled artifacts.
type Cache struct {
	dir string
}

// Creates a cache rooted at dir. The directory is created on first use.
func NewCache(dir string) *Cache {
	return &Cache{dir: dir}
}

// Root directory of the cache.
func (c *Cache) Dir() string {
	return c.dir
}

// Compiles the source unless an artifact for the same key already exists.
//
// A compiler that runs and exits non-zero is reported through [Result.Exit],
// not as an error; errors are reserved for failures to read the source,
// prepare the cache or start the compiler.
func (c *Cache) Run(ctx context.Context, opts Options) (*Result, error) {
	if len(opts.Command) == 0 {
		return nil, fault.Wrapf(ErrBuild, "empty compiler command")
	}

	src, err := os.ReadFile(opts.Source)
	if err != nil {
		return nil, fault.Wrap(ErrFileSystemOperation, err)
	}

	output := c.artifactPath(key(opts.Command, src), opts.Ext)
	if _, err := os.Stat(output); err == nil {
		slog.Debug("build cache hit", "source", opts.Source, "output", output)
		return &Result{Output: output, Cached: true}, nil
	}

	if err := os.MkdirAll(c.dir, paths.DefaultDirMode); err != nil {
		return nil, fault.Wrap(ErrFileSystemOperation, err)
	}

	tmp := filepath.Join(c.dir, ".tmp-"+uuid.NewString()+opts.Ext)
	defer os.RemoveAll(tmp)

	argv := Expand(opts.Command, opts.Source, tmp)
	slog.Debug("compiling", "source", opts.Source, "command", argv)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = discardIfNil(opts.Stdout)
	cmd.Stderr = discardIfNil(opts.Stderr)

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &Result{Exit: exitErr.ExitCode()}, nil
		}
		return nil, fault.Wrapf(ErrBuild, "%s: %w", argv[0], err)
	}

	if _, err := os.Stat(tmp); err != nil {
		return nil, fault.Wrapf(ErrBuild, "%s produced no artifact at %s", argv[0], tmp)
	}

	if err := os.Rename(tmp, output); err != nil {
		return nil, fault.Wrap(ErrFileSystemOperation, err)
	}

	return &Result{Output: output}, nil
}

// Path of the artifact for a cache key.
func (c *Cache) artifactPath(d digest.Digest, ext string) string {
	return filepath.Join(c.dir, d.Encoded()+ext)
}

// Derives the cache key from the unexpanded compiler template and the source.
func key(command []string, src []byte) digest.Digest {
	var b bytes.Buffer
	b.WriteString(strings.Join(command, "\x00"))
	b.WriteByte(0)
	b.Write(src)
	return digest.FromBytes(b.Bytes())
}

func discardIfNil(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}
