package protocol

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"

	"github.com/fumishiki/polyscript/internal/fault"
)

const (

	// Largest request line accepted by the daemon.
	MaxRequestSize = 1 << 20

	// Largest response line accepted by clients. Responses carry whole
	// captured output streams.
	MaxResponseSize = 64 << 20
)

// Writes messages as single JSON lines.
type Encoder struct {
	writer *bufio.Writer
}

// Creates an encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{writer: bufio.NewWriter(w)}
}

// Writes v followed by a newline and flushes.
func (e *Encoder) Encode(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fault.Wrap(ErrProtocol, err)
	}

	if _, err := e.writer.Write(data); err != nil {
		return err
	}
	if err := e.writer.WriteByte('\n'); err != nil {
		return err
	}
	return e.writer.Flush()
}

// Reads JSON lines.
type Decoder struct {
	scanner *bufio.Scanner
	line    int
}

// Creates a decoder reading from r that rejects lines longer than limit.
func NewDecoder(r io.Reader, limit int) *Decoder {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, min(limit, 64*1024)), limit)
	return &Decoder{scanner: scanner}
}

// Reads the next non-empty line into v.
//
// Returns [io.EOF] when the stream ends cleanly. Lines that are too long, are
// not a JSON object, or do not decode into v yield [ErrProtocol].
func (d *Decoder) Decode(v any) error {
	for {
		if !d.scanner.Scan() {
			err := d.scanner.Err()
			if err == nil {
				return io.EOF
			}
			if errors.Is(err, bufio.ErrTooLong) {
				return fault.Wrapf(ErrProtocol, "line %d: %w", d.line+1, err)
			}
			return err
		}

		d.line++
		data := bytes.TrimSpace(d.scanner.Bytes())
		if len(data) == 0 {
			continue
		}
		if data[0] != '{' {
			slog.Debug("non-object line", "line", d.line, "data", string(data[:min(100, len(data))]))
			return fault.Wrapf(ErrProtocol, "line %d: expected a JSON object", d.line)
		}

		if err := json.Unmarshal(data, v); err != nil {
			slog.Debug("undecodable line", "line", d.line, "data", string(data[:min(100, len(data))]))
			return fault.Wrapf(ErrProtocol, "line %d: %w", d.line, err)
		}
		return nil
	}
}
