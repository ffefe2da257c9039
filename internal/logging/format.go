package logging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Human-readable formatter.
//
// Produces "LEVEL message key=value ..." lines. Verbose mode prefixes a
// timestamp. Level colors are resolved against the stream the formatter was
// created for, so output redirected to a file stays plain.
type PrettyFormatter struct {
	verbose bool
	styles  map[slog.Level]lipgloss.Style
	key     lipgloss.Style
}

// Creates a pretty formatter for output written to w.
func NewPrettyFormatter(w io.Writer) *PrettyFormatter {
	r := lipgloss.NewRenderer(w)
	return &PrettyFormatter{
		styles: map[slog.Level]lipgloss.Style{
			slog.LevelDebug: r.NewStyle().Foreground(lipgloss.Color("8")),
			slog.LevelInfo:  r.NewStyle().Foreground(lipgloss.Color("12")),
			slog.LevelWarn:  r.NewStyle().Foreground(lipgloss.Color("11")),
			slog.LevelError: r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		},
		key: r.NewStyle().Faint(true),
	}
}

// Enables timestamps.
func (f *PrettyFormatter) SetVerbose(verbose bool) {
	f.verbose = verbose
}

func (f *PrettyFormatter) Format(buf *bytes.Buffer, r slog.Record, attrs []slog.Attr) {
	if f.verbose && !r.Time.IsZero() {
		buf.WriteString(r.Time.Format("15:04:05.000"))
		buf.WriteByte(' ')
	}

	buf.WriteString(f.levelStyle(r.Level).Render(fmt.Sprintf("%-5s", r.Level.String())))
	buf.WriteByte(' ')
	buf.WriteString(r.Message)

	for _, a := range attrs {
		writePretty(buf, f.key, "", a)
	}
	buf.WriteByte('\n')
}

func (f *PrettyFormatter) levelStyle(level slog.Level) lipgloss.Style {
	switch {
	case level >= slog.LevelError:
		return f.styles[slog.LevelError]
	case level >= slog.LevelWarn:
		return f.styles[slog.LevelWarn]
	case level >= slog.LevelInfo:
		return f.styles[slog.LevelInfo]
	default:
		return f.styles[slog.LevelDebug]
	}
}

func writePretty(buf *bytes.Buffer, key lipgloss.Style, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			writePretty(buf, key, prefix+a.Key+".", ga)
		}
		return
	}

	buf.WriteByte(' ')
	buf.WriteString(key.Render(prefix + a.Key + "="))
	buf.WriteString(quoteIfNeeded(a.Value.String()))
}

// Quotes values that would not survive a split on whitespace.
func quoteIfNeeded(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}

// One-JSON-object-per-line formatter.
type JSONFormatter struct{}

func (JSONFormatter) Format(buf *bytes.Buffer, r slog.Record, attrs []slog.Attr) {
	buf.WriteByte('{')
	writeJSONField(buf, "time", r.Time.Format(time.RFC3339Nano))
	buf.WriteByte(',')
	writeJSONField(buf, "level", r.Level.String())
	buf.WriteByte(',')
	writeJSONField(buf, "msg", r.Message)
	for _, a := range attrs {
		writeJSONAttr(buf, "", a)
	}
	buf.WriteString("}\n")
}

func writeJSONAttr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			writeJSONAttr(buf, prefix+a.Key+".", ga)
		}
		return
	}
	buf.WriteByte(',')
	writeJSONField(buf, prefix+a.Key, jsonValue(a.Value))
}

func jsonValue(v slog.Value) any {
	switch v.Kind() {
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return v.Any()
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().Format(time.RFC3339Nano)
	default:
		return v.Any()
	}
}

func writeJSONField(buf *bytes.Buffer, key string, value any) {
	k, _ := json.Marshal(key)
	buf.Write(k)
	buf.WriteByte(':')
	b, err := json.Marshal(value)
	if err != nil {
		b, _ = json.Marshal(fmt.Sprint(value))
	}
	buf.Write(b)
}
