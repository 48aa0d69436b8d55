// internal/ingest/orchestrator.go
package ingest

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/tamzrod/telemetry-agent/internal/delivery"
	"github.com/tamzrod/telemetry-agent/internal/metrics"
	"github.com/tamzrod/telemetry-agent/internal/poller"
	"github.com/tamzrod/telemetry-agent/internal/status"
)

// ErrSensor wraps a failed register read in register mode.
var ErrSensor = errors.New("ingest: sensor read failed")

// Orchestrator is the single worker of register mode: it consumes poll
// results in order and delivers each reading before taking the next.
type Orchestrator struct {
	sensorID string
	sender   Deliverer
	obs      observer
	now      func() time.Time
	state    State
}

func NewOrchestrator(sensorID string, sender Deliverer, log *slog.Logger, m *metrics.Metrics, st *status.Tracker) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		sensorID: sensorID,
		sender:   sender,
		obs:      observer{log: log, m: m, st: st},
		now:      time.Now,
		state:    Disconnected,
	}
}

// Run consumes in until ctx is done or in is closed.
func (o *Orchestrator) Run(ctx context.Context, in <-chan poller.PollResult) error {
	defer o.setState(Terminated)

	for {
		select {
		case <-ctx.Done():
			return nil
		case res, ok := <-in:
			if !ok {
				return nil
			}
			_, _ = o.Handle(ctx, res)
		}
	}
}

// Handle processes one poll result. A sensor failure is reported and
// returned; nothing is delivered for it.
func (o *Orchestrator) Handle(ctx context.Context, res poller.PollResult) (delivery.Outcome, error) {
	if res.Err != nil {
		o.setState(Faulted)
		o.obs.log.Warn("sensor_read_failed", "sensor_id", res.SensorID, "err", res.Err)
		o.obs.sensorError(res.Err)
		return 0, errors.Join(ErrSensor, res.Err)
	}

	o.obs.healthy()
	o.setState(Streaming)

	r := res.Reading
	o.obs.log.Info("reading", "temperature", r.Temperature, "humidity", r.Humidity)
	o.obs.reading(r.Temperature, r.Humidity)

	out := o.sender.Deliver(ctx, delivery.NewPayload(r, o.sensorID, o.now()))
	o.obs.outcome(out.String())
	return out, nil
}

func (o *Orchestrator) setState(s State) {
	from := o.state
	o.state = s
	o.obs.state(from, s)
}
