// internal/poller/poller.go
package poller

import (
	"errors"
	"time"

	"github.com/tamzrod/telemetry-agent/internal/frame"
)

// Client abstracts the sensor operations needed by the poller.
// One call yields one (temperature, humidity) pair or a failure.
type Client interface {
	Read() (frame.Reading, error)
	Close() error
}

// Factory creates a fresh client. ONE attempt per call.
type Factory func() (Client, error)

// Config is the minimal runtime config the poller needs.
type Config struct {
	SensorID string
	Interval time.Duration
}

// Poller is a dumb, clock-driven reader.
// It owns the client: a failed read discards it and the next cycle
// asks the factory for a new one.
type Poller struct {
	cfg     Config
	client  Client
	factory Factory
	now     func() time.Time
}

// New creates a poller with immutable config.
// client may be nil when factory is set (connect lazily on first poll).
func New(cfg Config, client Client, factory Factory) (*Poller, error) {
	if cfg.SensorID == "" {
		return nil, errors.New("poller: sensor id required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if client == nil && factory == nil {
		return nil, errors.New("poller: client or factory required")
	}
	return &Poller{cfg: cfg, client: client, factory: factory, now: time.Now}, nil
}

// Interval returns the configured poll period.
func (p *Poller) Interval() time.Duration {
	return p.cfg.Interval
}

// PollOnce performs exactly one poll cycle.
func (p *Poller) PollOnce() PollResult {
	res := PollResult{
		SensorID: p.cfg.SensorID,
		At:       p.now(),
	}

	if p.client == nil {
		if p.factory == nil {
			res.Err = errors.New("poller: no client")
			return res
		}
		c, err := p.factory()
		if err != nil {
			res.Err = err
			return res
		}
		p.client = c
	}

	r, err := p.client.Read()
	if err != nil {
		// transport may be dead: drop it, reconnect on a future cycle
		if p.factory != nil {
			_ = p.client.Close()
			p.client = nil
		}
		res.Err = err
		return res
	}

	res.Reading = r
	return res
}

// Close releases the current client, if any.
func (p *Poller) Close() error {
	if p.client == nil {
		return nil
	}
	err := p.client.Close()
	p.client = nil
	return err
}
