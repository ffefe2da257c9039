package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/fumishiki/polyscript/internal/build"
	"github.com/fumishiki/polyscript/internal/dispatch"
	"github.com/fumishiki/polyscript/internal/fault"
	"github.com/fumishiki/polyscript/internal/paths"
	"gopkg.in/yaml.v3"
)

const (

	// Delay between a stop acknowledgment and daemon shutdown.
	DefaultGraceDelay = 100 * time.Millisecond

	// Bound on daemon readiness and shutdown waits.
	DefaultStartTimeout = 5 * time.Second
)

// Tags that would be parsed as subcommands instead of languages.
var reservedTags = []string{"exec", "daemon", "parallel", "languages", "version", "help"}

// Wraps time.Duration for text decoding ("250ms", "5s").
type Duration struct {
	time.Duration
}

// Parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// Formats the duration as a string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Dispatch entry declared in the configuration file.
type Language struct {
	Kind     string   `toml:"kind" yaml:"kind"`
	Help     string   `toml:"help" yaml:"help"`
	Command  []string `toml:"command" yaml:"command"`
	Build    []string `toml:"build" yaml:"build"`
	Run      []string `toml:"run" yaml:"run"`
	Ext      string   `toml:"ext" yaml:"ext"`
	Fallback []string `toml:"fallback" yaml:"fallback"`
}

// Holds the resolved configuration.
type Config struct {
	Socket       string              `toml:"socket" yaml:"socket"`
	PIDFile      string              `toml:"pid_file" yaml:"pid_file"`
	LogFile      string              `toml:"log_file" yaml:"log_file"`
	CacheDir     string              `toml:"cache_dir" yaml:"cache_dir"`
	GraceDelay   Duration            `toml:"grace_delay" yaml:"grace_delay"`
	StartTimeout Duration            `toml:"start_timeout" yaml:"start_timeout"`
	LogLevel     string              `toml:"log_level" yaml:"log_level"`
	Languages    map[string]Language `toml:"languages" yaml:"languages"`

	path    string   // File the values were read from, empty for defaults.
	unknown []string // Keys in the file that match no setting.
}

// Returns the built-in configuration.
func Default() *Config {
	return &Config{
		Socket:       paths.Socket(),
		PIDFile:      paths.PIDFile(),
		LogFile:      paths.LogFile(),
		CacheDir:     paths.BuildCache(),
		GraceDelay:   Duration{DefaultGraceDelay},
		StartTimeout: Duration{DefaultStartTimeout},
		LogLevel:     "info",
	}
}

// Loads the configuration file at path over the defaults.
//
// An empty path searches the XDG config directories and returns the defaults
// when no file is found. An explicit path must exist. The result is
// validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = paths.ConfigFile()
		if path == "" {
			return cfg, nil
		}
	}
	path = expand(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fault.Wrap(ErrConfig, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, fault.Wrapf(ErrConfig, "%s: %w", path, err)
		}
		for _, key := range md.Undecoded() {
			cfg.unknown = append(cfg.unknown, key.String())
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fault.Wrapf(ErrConfig, "%s: %w", path, err)
		}
	default:
		return nil, fault.Wrapf(ErrConfig, "%s: unsupported format %q", path, ext)
	}

	cfg.path = path
	cfg.Socket = expand(cfg.Socket)
	cfg.PIDFile = expand(cfg.PIDFile)
	cfg.LogFile = expand(cfg.LogFile)
	cfg.CacheDir = expand(cfg.CacheDir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.Debug("configuration loaded", "file", path, "languages", len(cfg.Languages))
	return cfg, nil
}

// Returns the file the configuration was read from, or an empty string.
func (c *Config) Path() string {
	return c.path
}

// Returns the keys of a TOML file that match no setting.
//
// They are reported by the caller once logging is configured.
func (c *Config) UnknownKeys() []string {
	return c.unknown
}

// Checks value ranges and language declarations.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.GraceDelay.Duration < 0 || c.StartTimeout.Duration < 0 {
		return fault.Wrapf(ErrConfig, "durations must not be negative")
	}
	for tag, lang := range c.Languages {
		if slices.Contains(reservedTags, tag) {
			return fault.Wrapf(ErrConfig, "language tag %q is reserved", tag)
		}
		switch dispatch.Kind(lang.Kind) {
		case dispatch.KindSubprocess, dispatch.KindCompile:
		case dispatch.KindEmbedded:
			return fault.Wrapf(ErrConfig, "%s: embedded languages cannot be configured", tag)
		default:
			return fault.Wrapf(ErrConfig, "%s: unknown kind %q", tag, lang.Kind)
		}
	}
	return nil
}

// Returns the default dispatch entries followed by the configured ones.
//
// Configured entries are ordered by tag and replace defaults with the same
// tag when the table is built.
func (c *Config) Entries() []dispatch.Entry {
	entries := dispatch.Defaults()

	tags := make([]string, 0, len(c.Languages))
	for tag := range c.Languages {
		tags = append(tags, tag)
	}
	slices.Sort(tags)

	for _, tag := range tags {
		lang := c.Languages[tag]
		help := lang.Help
		if help == "" {
			help = "configured in " + filepath.Base(c.path)
		}
		entries = append(entries, dispatch.Entry{
			Lang:     tag,
			Kind:     dispatch.Kind(lang.Kind),
			Help:     help,
			Command:  lang.Command,
			Build:    lang.Build,
			Run:      lang.Run,
			Ext:      lang.Ext,
			Fallback: lang.Fallback,
		})
	}
	return entries
}

// Builds the dispatch table backed by the configured build cache.
func (c *Config) Table() (*dispatch.Table, error) {
	return dispatch.New(build.NewCache(c.CacheDir), c.Entries()...)
}

// Returns the configured log level.
func (c *Config) Level() slog.Level {
	level, _ := ParseLevel(c.LogLevel)
	return level
}

// Parses a log level name.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fault.Wrapf(ErrConfig, "unknown log level %q", name)
}

// Expands environment variables and a leading "~/".
func expand(path string) string {
	path = os.ExpandEnv(path)
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, rest)
		}
	}
	return path
}
