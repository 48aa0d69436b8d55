// internal/port/port.go
package port

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/goburrow/serial"
)

var (
	// ErrNoData means no complete line arrived within one read window.
	// It is the "nothing available, yield" signal, never a fault.
	ErrNoData = errors.New("port: no data available")

	// ErrNotFound means discovery found no matching device.
	ErrNotFound = errors.New("port: no matching device found")

	// ErrClosed is returned by reads on a port that was already closed.
	ErrClosed = errors.New("port: closed")
)

// Port is an open, exclusively owned device connection.
type Port interface {
	io.ReadCloser
}

// Opener opens a device path. One attempt per call.
type Opener interface {
	Open(path string, baud int) (Port, error)
}

// SerialOpener opens real tty devices, 8N1, no flow control.
// Reads block at most ReadTimeout and then report ErrNoData.
type SerialOpener struct {
	ReadTimeout time.Duration
}

func (o SerialOpener) Open(path string, baud int) (Port, error) {
	if path == "" {
		return nil, errors.New("port: device path required")
	}

	timeout := o.ReadTimeout
	if timeout <= 0 {
		timeout = 100 * time.Millisecond
	}

	p, err := serial.Open(&serial.Config{
		Address:  path,
		BaudRate: baud,
		DataBits: 8,
		StopBits: 1,
		Parity:   "N",
		Timeout:  timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("port: open %s: %w", path, err)
	}

	return &serialPort{p: p}, nil
}

// serialPort maps the library's read timeout onto ErrNoData.
// Close is idempotent.
type serialPort struct {
	p      serial.Port
	closed bool
}

func (s *serialPort) Read(b []byte) (int, error) {
	if s.closed {
		return 0, ErrClosed
	}
	n, err := s.p.Read(b)
	if errors.Is(err, serial.ErrTimeout) {
		return n, ErrNoData
	}
	return n, err
}

func (s *serialPort) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.p.Close()
}
