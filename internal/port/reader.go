// internal/port/reader.go
package port

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// MaxLineBytes bounds the pending buffer. A longer unterminated run is
// flushed as one line (it will not parse and ends up as device chatter).
const MaxLineBytes = 4096

// LineReader splits a byte stream into '\n'-terminated lines.
// Partial lines survive across ErrNoData returns.
type LineReader struct {
	r     io.Reader
	buf   []byte
	chunk []byte
}

func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{
		r:     r,
		chunk: make([]byte, 512),
	}
}

// ReadLine returns the next line without its terminator, decoded
// permissively (invalid UTF-8 is dropped).
//
// ErrNoData: no complete line yet; retry later.
// Any other error is a port fault.
func (lr *LineReader) ReadLine() (string, error) {
	for {
		if line, ok := lr.take(); ok {
			return line, nil
		}

		n, err := lr.r.Read(lr.chunk)
		if n > 0 {
			lr.buf = append(lr.buf, lr.chunk[:n]...)
		}

		switch {
		case err == nil && n == 0:
			// readable but empty: the device went away
			return "", fmt.Errorf("port: read: %w", io.ErrUnexpectedEOF)
		case errors.Is(err, ErrNoData):
			if line, ok := lr.take(); ok {
				return line, nil
			}
			return "", ErrNoData
		case err != nil:
			return "", fmt.Errorf("port: read: %w", err)
		}
	}
}

// Pending reports buffered bytes not yet returned as a line.
func (lr *LineReader) Pending() int {
	return len(lr.buf)
}

func (lr *LineReader) take() (string, bool) {
	idx := bytes.IndexByte(lr.buf, '\n')
	if idx < 0 {
		if len(lr.buf) < MaxLineBytes {
			return "", false
		}
		idx = MaxLineBytes - 1
		line := decode(lr.buf[:idx+1])
		lr.buf = lr.buf[idx+1:]
		return line, true
	}

	line := decode(lr.buf[:idx])
	lr.buf = lr.buf[idx+1:]
	return line, true
}

func decode(b []byte) string {
	s := strings.TrimRight(string(b), "\r")
	return strings.ToValidUTF8(s, "")
}
