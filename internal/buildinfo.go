package internal

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
)

// Program name used in usage output and log groups.
const Name = "polyscript"

const (
	undefined    = "(undefined)"
	localBuild   = "(local)"
	releaseStage = "main"
)

// Set with -ldflags "-X github.com/fumishiki/polyscript/internal.version=..."
var (
	version   = ""
	stage     = ""
	gitCommit = ""

	rawQuiet   = "false"
	rawDebug   = "false"
	rawVerbose = "false"
)

// Identifies the running binary.
type BuildInfo struct {
	Version string // Semantic version without a "v" prefix.
	Stage   string // Branch or stage the binary was built from.
	Commit  string // Git commit hash.
	Arch    string // GOARCH of the binary.
	Local   bool   // Built outside the release pipeline.
}

// Returns the build metadata injected at link time.
//
// A build missing any of version, stage or commit is local.
func Build() BuildInfo {
	info := BuildInfo{
		Version: strings.TrimPrefix(strings.ToLower(strings.TrimSpace(version)), "v"),
		Stage:   strings.ToLower(strings.TrimSpace(stage)),
		Commit:  strings.TrimSpace(gitCommit),
		Arch:    runtime.GOARCH,
	}
	info.Local = info.Version == "" || info.Stage == "" || info.Commit == ""

	for _, f := range []*string{&info.Version, &info.Stage, &info.Commit} {
		if *f == "" {
			*f = undefined
		}
	}
	return info
}

// Formats the build as "<version>[+<stage>] <commit> [<arch>]", or "(local)".
func (b BuildInfo) String() string {
	if b.Local {
		return localBuild
	}
	s := ""
	if b.Stage != releaseStage {
		s = "+" + b.Stage
	}
	return fmt.Sprintf("%s%s %s [%s]", b.Version, s, b.Commit, b.Arch)
}

// Output modes baked in at link time. Flags can only enable them.
type Modes struct {
	Quiet   bool
	Debug   bool
	Verbose bool
}

// Returns the link-time output modes. Unparseable values count as false.
func DefaultModes() Modes {
	return Modes{
		Quiet:   parseFlag(rawQuiet),
		Debug:   parseFlag(rawDebug),
		Verbose: parseFlag(rawVerbose),
	}
}

func parseFlag(raw string) bool {
	v, err := strconv.ParseBool(raw)
	return err == nil && v
}
