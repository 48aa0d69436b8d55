// internal/httpapi/accesslog.go
package httpapi

import (
	"bytes"
	"io"
	"log/slog"
)

// AccessLog adapts the combined access log to slog: one http_access
// record per request line.
func AccessLog(l *slog.Logger) io.Writer {
	return accessWriter{log: l}
}

type accessWriter struct {
	log *slog.Logger
}

func (w accessWriter) Write(p []byte) (int, error) {
	for _, line := range bytes.Split(p, []byte{'\n'}) {
		if line = bytes.TrimSpace(line); len(line) > 0 {
			w.log.Info("http_access", "line", string(line))
		}
	}
	return len(p), nil
}
