// internal/ingest/fakes_test.go
package ingest

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/tamzrod/telemetry-agent/internal/delivery"
	"github.com/tamzrod/telemetry-agent/internal/port"
)

// ---- port ----

// step is one scripted Read: data, or an error.
type step struct {
	data string
	err  error
}

// fakePort replays steps, then reports ErrNoData forever.
type fakePort struct {
	steps  []step
	closed int
}

func (p *fakePort) Read(b []byte) (int, error) {
	if len(p.steps) == 0 {
		return 0, port.ErrNoData
	}
	s := p.steps[0]
	p.steps = p.steps[1:]
	if s.err != nil {
		return 0, s.err
	}
	return copy(b, s.data), nil
}

func (p *fakePort) Close() error {
	p.closed++
	return nil
}

// fakeOpener hands out results[i] for call i; the last one repeats.
type fakeOpener struct {
	results []openResult
	paths   []string
}

type openResult struct {
	port *fakePort
	err  error
}

func (o *fakeOpener) Open(path string, baud int) (port.Port, error) {
	o.paths = append(o.paths, path)
	idx := len(o.paths) - 1
	if idx >= len(o.results) {
		idx = len(o.results) - 1
	}
	r := o.results[idx]
	if r.err != nil {
		return nil, r.err
	}
	return r.port, nil
}

// fakeLocator hands out results[i] for call i; the last one repeats.
type fakeLocator struct {
	results []locateResult
	calls   int
}

type locateResult struct {
	path string
	err  error
}

func (l *fakeLocator) Discover() (port.Candidate, error) {
	idx := l.calls
	l.calls++
	if idx >= len(l.results) {
		idx = len(l.results) - 1
	}
	r := l.results[idx]
	if r.err != nil {
		return port.Candidate{}, r.err
	}
	return port.Candidate{Path: r.path, Description: "USB JTAG/serial debug unit"}, nil
}

// ---- delivery ----

// fakeDeliverer records payloads and cancels the run after cancelAfter calls.
type fakeDeliverer struct {
	got         []delivery.Payload
	outcome     delivery.Outcome
	cancelAfter int
	cancel      context.CancelFunc
}

func (d *fakeDeliverer) Deliver(ctx context.Context, p delivery.Payload) delivery.Outcome {
	d.got = append(d.got, p)
	if d.cancel != nil && len(d.got) >= d.cancelAfter {
		d.cancel()
	}
	if d.outcome == 0 {
		return delivery.Delivered
	}
	return d.outcome
}

// ---- time ----

func recordSleep(rec *[]string) func(context.Context, time.Duration) error {
	return func(ctx context.Context, d time.Duration) error {
		*rec = append(*rec, d.String())
		return ctx.Err()
	}
}

// ---- logging ----

// captureHandler keeps every record; tests run the loop on one goroutine.
type captureHandler struct {
	recs *[]slog.Record
}

func newCapture() (*slog.Logger, *[]slog.Record) {
	recs := &[]slog.Record{}
	return slog.New(captureHandler{recs: recs}), recs
}

func (h captureHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h captureHandler) Handle(_ context.Context, r slog.Record) error {
	*h.recs = append(*h.recs, r.Clone())
	return nil
}
func (h captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h captureHandler) WithGroup(string) slog.Handler      { return h }

// transitions returns the "to" side of every state_change record.
func transitions(recs []slog.Record) []string {
	var out []string
	for _, r := range recs {
		if r.Message != "state_change" {
			continue
		}
		r.Attrs(func(a slog.Attr) bool {
			if a.Key == "to" {
				out = append(out, a.Value.String())
				return false
			}
			return true
		})
	}
	return out
}

func messages(recs []slog.Record) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Message)
	}
	return out
}

var errIO = errors.New("read /dev/ttyACM0: input/output error")
