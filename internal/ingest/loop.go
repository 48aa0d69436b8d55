// internal/ingest/loop.go
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tamzrod/telemetry-agent/internal/delivery"
	"github.com/tamzrod/telemetry-agent/internal/frame"
	"github.com/tamzrod/telemetry-agent/internal/metrics"
	"github.com/tamzrod/telemetry-agent/internal/port"
	"github.com/tamzrod/telemetry-agent/internal/status"
)

// Deliverer sends one payload with its own retry budget.
// Implemented by *delivery.Client.
type Deliverer interface {
	Deliver(ctx context.Context, p delivery.Payload) delivery.Outcome
}

// Locator resolves the device path in auto mode.
// Implemented by *port.Locator.
type Locator interface {
	Discover() (port.Candidate, error)
}

// LoopConfig is the acquisition slice of the agent configuration.
type LoopConfig struct {
	SensorID string

	// DevicePath is used as-is unless AutoDiscover is set.
	DevicePath   string
	AutoDiscover bool
	BaudRate     int

	PollInterval   time.Duration // idle yield between empty reads
	ReconnectDelay time.Duration
}

// Loop owns the serial connection for its whole lifetime and drives
// Disconnected -> Connecting -> Streaming -> Faulted -> Reconnecting | Terminated.
//
// Single thread of control: a parsed reading is delivered synchronously,
// so at most one request is outstanding and readings leave in capture order.
type Loop struct {
	cfg     LoopConfig
	opener  port.Opener
	locator Locator
	sender  Deliverer

	obs   observer
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	state  State
	opened bool // at least one successful open
}

type LoopOption func(*Loop)

func WithLogger(l *slog.Logger) LoopOption      { return func(lp *Loop) { lp.obs.log = l } }
func WithMetrics(m *metrics.Metrics) LoopOption { return func(lp *Loop) { lp.obs.m = m } }
func WithStatus(t *status.Tracker) LoopOption   { return func(lp *Loop) { lp.obs.st = t } }
func WithClock(now func() time.Time) LoopOption { return func(lp *Loop) { lp.now = now } }
func WithSleep(fn func(context.Context, time.Duration) error) LoopOption {
	return func(lp *Loop) { lp.sleep = fn }
}

func NewLoop(cfg LoopConfig, opener port.Opener, locator Locator, sender Deliverer, opts ...LoopOption) (*Loop, error) {
	if opener == nil {
		return nil, errors.New("ingest: opener required")
	}
	if sender == nil {
		return nil, errors.New("ingest: deliverer required")
	}
	if cfg.AutoDiscover && locator == nil {
		return nil, errors.New("ingest: locator required for auto discovery")
	}
	if !cfg.AutoDiscover && cfg.DevicePath == "" {
		return nil, errors.New("ingest: device path required")
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 100 * time.Millisecond
	}
	if cfg.ReconnectDelay < 0 {
		cfg.ReconnectDelay = 0
	}

	l := &Loop{
		cfg:     cfg,
		opener:  opener,
		locator: locator,
		sender:  sender,
		obs:     observer{log: slog.Default()},
		now:     time.Now,
		sleep:   sleepCtx,
		state:   Disconnected,
	}
	for _, o := range opts {
		o(l)
	}
	return l, nil
}

// State reports the current state. Only meaningful from the Run goroutine
// or after Run returned.
func (l *Loop) State() State { return l.state }

// Run drives the loop until ctx is cancelled (returns nil) or a
// non-recoverable fault occurs (returns *FatalError). Any open port is
// closed before Run returns.
func (l *Loop) Run(ctx context.Context) error {
	l.setState(Disconnected)
	defer l.setState(Terminated)

	for {
		// interrupt is observed between cycles
		if ctx.Err() != nil {
			return nil
		}

		l.setState(Connecting)
		p, path, err := l.connect()
		if err != nil {
			l.setState(Faulted)
			l.obs.fault(err)

			if l.openIsFatal(err) {
				l.obs.log.Error("port_open_fatal", "path", path, "err", err)
				return &FatalError{Op: "open", Path: path, Err: err}
			}
			l.obs.log.Warn("port_open_failed", "path", path, "err", err)

			if !l.reconnectWait(ctx) {
				return nil
			}
			continue
		}

		l.opened = true
		l.obs.healthy()
		l.setState(Streaming)

		err = l.stream(ctx, p, path)
		l.closePort(p, path)

		if err == nil {
			return nil
		}

		l.setState(Faulted)
		l.obs.fault(err)

		if port.IsPermanent(err) {
			l.obs.log.Error("port_fault_fatal", "path", path, "err", err)
			return &FatalError{Op: "read", Path: path, Err: err}
		}

		if !l.reconnectWait(ctx) {
			return nil
		}
	}
}

// connect resolves the device path and opens it. One attempt.
func (l *Loop) connect() (port.Port, string, error) {
	path := l.cfg.DevicePath

	if l.cfg.AutoDiscover {
		c, err := l.locator.Discover()
		if err != nil {
			return nil, "", err
		}
		path = c.Path
		l.obs.log.Info("port_discovered", "path", c.Path, "description", c.Description)
		l.obs.portEvent("discovered")
	}

	l.obs.device(path)

	p, err := l.opener.Open(path, l.cfg.BaudRate)
	if err != nil {
		l.obs.portEvent("open_failed")
		return nil, path, err
	}

	l.obs.log.Info("port_opened", "path", path, "baud", l.cfg.BaudRate)
	l.obs.portEvent("opened")
	return p, path, nil
}

// openIsFatal: permission problems always; a pinned path only until it has
// opened once. Auto discovery keeps searching.
func (l *Loop) openIsFatal(err error) bool {
	if port.IsPermanent(err) {
		return true
	}
	return !l.cfg.AutoDiscover && !l.opened
}

// stream reads lines until a port fault (returned) or cancellation (nil).
func (l *Loop) stream(ctx context.Context, p port.Port, path string) error {
	lr := port.NewLineReader(p)

	for {
		if ctx.Err() != nil {
			return nil
		}

		line, err := lr.ReadLine()
		switch {
		case errors.Is(err, port.ErrNoData):
			if l.sleep(ctx, l.cfg.PollInterval) != nil {
				return nil
			}
			continue

		case err != nil:
			l.obs.log.Warn("port_faulted", "path", path, "err", err, "pending_bytes", lr.Pending())
			l.obs.portEvent("faulted")
			return fmt.Errorf("ingest: stream %s: %w", path, err)
		}

		l.handleLine(ctx, line)
	}
}

func (l *Loop) handleLine(ctx context.Context, line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}

	r, ok := frame.Parse(line)
	if !ok {
		if frame.IsData(line) {
			l.obs.log.Warn("frame_rejected", "line", line)
			l.obs.chatter("malformed")
		} else {
			l.obs.log.Info("device_message", "line", line)
			l.obs.chatter("chatter")
		}
		return
	}

	l.obs.log.Info("reading", "temperature", r.Temperature, "humidity", r.Humidity)
	l.obs.reading(r.Temperature, r.Humidity)

	// stamped at send time; retries reuse it
	p := delivery.NewPayload(r, l.cfg.SensorID, l.now())
	out := l.sender.Deliver(ctx, p)
	l.obs.outcome(out.String())
}

func (l *Loop) closePort(p port.Port, path string) {
	if err := p.Close(); err != nil {
		l.obs.log.Warn("port_close_failed", "path", path, "err", err)
	} else {
		l.obs.log.Info("port_closed", "path", path)
	}
	l.obs.portEvent("closed")
}

// reconnectWait reports false when ctx ended during the delay.
func (l *Loop) reconnectWait(ctx context.Context) bool {
	l.setState(Reconnecting)
	l.obs.log.Info("port_reconnect_wait", "delay", l.cfg.ReconnectDelay)
	return l.sleep(ctx, l.cfg.ReconnectDelay) == nil
}

func (l *Loop) setState(s State) {
	from := l.state
	l.state = s
	l.obs.state(from, s)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
