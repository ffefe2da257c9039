package dispatch

import (
	"context"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/fumishiki/polyscript/internal/build"
	"github.com/fumishiki/polyscript/internal/fault"
)

// Invocation strategy of an entry.
type Kind string

const (
	KindSubprocess Kind = "subprocess" // Interpreter run as a child process.
	KindCompile    Kind = "compile"    // Compile through the build cache, then run the artifact.
	KindEmbedded   Kind = "embedded"   // In-process bridge with a subprocess fallback.
)

// Placeholder in command templates that expands to the current executable.
const placeholderSelf = "{self}"

// In-process invocation of one language runtime.
type Bridge interface {
	Run(ctx context.Context, script string, args []string, stdio Stdio) (int, error)
}

// Maps one language tag to its invocation strategy.
type Entry struct {
	Lang     string   // Language tag, e.g. "py".
	Kind     Kind     // Invocation strategy.
	Help     string   // One-line description for listings.
	Command  []string // Subprocess: interpreter and leading arguments.
	Build    []string // Compile: compiler template with {src} and {out}.
	Run      []string // Compile: run template; {out} is the artifact.
	Ext      string   // Compile: artifact extension.
	Bridge   Bridge   // Embedded: in-process implementation.
	Fallback []string // Embedded: interpreter used when isolation is required.
}

// Checks that the fields required by the entry's kind are present.
func (e Entry) validate() error {
	if e.Lang == "" {
		return fault.Wrapf(ErrInvalidEntry, "empty language tag")
	}
	switch e.Kind {
	case KindSubprocess:
		if len(e.Command) == 0 {
			return fault.Wrapf(ErrInvalidEntry, "%s: subprocess entry needs a command", e.Lang)
		}
	case KindCompile:
		if len(e.Build) == 0 || len(e.Run) == 0 {
			return fault.Wrapf(ErrInvalidEntry, "%s: compile entry needs build and run commands", e.Lang)
		}
	case KindEmbedded:
		if e.Bridge == nil || len(e.Fallback) == 0 {
			return fault.Wrapf(ErrInvalidEntry, "%s: embedded entry needs a bridge and a fallback", e.Lang)
		}
	default:
		return fault.Wrapf(ErrInvalidEntry, "%s: unknown kind %q", e.Lang, e.Kind)
	}
	return nil
}

// Immutable language dispatch table.
type Table struct {
	entries  map[string]Entry
	cache    *build.Cache
	isolated bool
}

// Builds a table from entries.
//
// Later entries replace earlier ones with the same tag, which lets
// configured overrides follow the defaults. The cache is required only when a
// compile entry is present.
func New(cache *build.Cache, entries ...Entry) (*Table, error) {
	t := &Table{entries: make(map[string]Entry, len(entries)), cache: cache}
	for _, e := range entries {
		if err := e.validate(); err != nil {
			return nil, err
		}
		if e.Kind == KindCompile && cache == nil {
			return nil, fault.Wrapf(ErrInvalidEntry, "%s: compile entry without a build cache", e.Lang)
		}
		t.entries[e.Lang] = e
	}
	return t, nil
}

// Returns the entry for lang.
func (t *Table) Lookup(lang string) (Entry, error) {
	e, ok := t.entries[lang]
	if !ok {
		return Entry{}, fault.Wrapf(ErrUnknownLanguage, "%q", lang)
	}
	return e, nil
}

// Returns all entries sorted by tag.
func (t *Table) Entries() []Entry {
	keys := slices.Sorted(maps.Keys(t.entries))
	out := make([]Entry, len(keys))
	for i, k := range keys {
		out[i] = t.entries[k]
	}
	return out
}

// Returns a view of the table in which embedded entries resolve to their
// subprocess fallback.
//
// Used wherever jobs run concurrently inside one process or their output must
// be captured: in-process bridges are neither reentrant nor capturable.
func (t *Table) Isolated() *Table {
	return &Table{entries: t.entries, cache: t.cache, isolated: true}
}

// Whether embedded entries resolve to their fallback.
func (t *Table) IsIsolated() bool {
	return t.isolated
}

// Runs script with args through the strategy registered for lang.
//
// Unknown languages and unreadable scripts fail before anything is spawned.
// The returned code is the job's exit status; -1 means the job was
// terminated by a signal.
func (t *Table) Dispatch(ctx context.Context, lang, script string, args []string, stdio Stdio) (int, error) {
	e, err := t.Lookup(lang)
	if err != nil {
		return 0, err
	}
	if err := CheckScript(script); err != nil {
		return 0, err
	}

	switch {
	case e.Kind == KindSubprocess:
		return runProcess(ctx, command(e.Command, script, args), stdio)
	case e.Kind == KindCompile:
		return t.compileAndRun(ctx, e, script, args, stdio)
	case t.isolated:
		return runProcess(ctx, command(e.Fallback, script, args), stdio)
	default:
		return e.Bridge.Run(ctx, script, args, stdio)
	}
}

// Verifies that the script can be opened for reading.
func CheckScript(path string) error {
	if path == "" {
		return fault.Wrapf(ErrScriptUnreadable, "empty path")
	}
	f, err := os.Open(path)
	if err != nil {
		return fault.Wrap(ErrScriptUnreadable, err)
	}
	return f.Close()
}

// Builds "prefix... script args..." with {self} expanded.
func command(prefix []string, script string, args []string) []string {
	argv := make([]string, 0, len(prefix)+1+len(args))
	for _, p := range prefix {
		if strings.Contains(p, placeholderSelf) {
			p = strings.ReplaceAll(p, placeholderSelf, self())
		}
		argv = append(argv, p)
	}
	argv = append(argv, script)
	return append(argv, args...)
}

// Path of the running executable, or the name it was invoked as.
func self() string {
	exe, err := os.Executable()
	if err != nil {
		return os.Args[0]
	}
	return exe
}
