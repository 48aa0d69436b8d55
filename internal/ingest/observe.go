// internal/ingest/observe.go
package ingest

import (
	"log/slog"

	"github.com/tamzrod/telemetry-agent/internal/metrics"
	"github.com/tamzrod/telemetry-agent/internal/status"
)

// observer fans events out to the log, metrics and status tracker.
// metrics and status are optional.
type observer struct {
	log *slog.Logger
	m   *metrics.Metrics
	st  *status.Tracker
}

func (o *observer) state(from, to State) {
	if from != to {
		o.log.Info("state_change", "from", from.String(), "to", to.String())
	}
	if o.m != nil {
		o.m.SetState(to.String(), StateNames)
	}
	if o.st != nil {
		o.st.SetState(to.String())
	}
}

func (o *observer) portEvent(event string) {
	if o.m != nil {
		o.m.PortEvent(event)
	}
}

func (o *observer) device(path string) {
	if o.st != nil {
		o.st.SetDevice(path)
	}
}

func (o *observer) fault(err error) {
	if o.st != nil {
		o.st.Fault(err)
	}
}

func (o *observer) healthy() {
	if o.st != nil {
		o.st.Recover()
	}
}

// chatter counts a non-reading line; result is "chatter" or "malformed".
func (o *observer) chatter(result string) {
	if o.m != nil {
		o.m.Frame(result)
	}
	if o.st != nil {
		o.st.Chatter()
	}
}

func (o *observer) reading(t, h float64) {
	if o.m != nil {
		o.m.Frame("accepted")
		o.m.Reading(t, h)
	}
	if o.st != nil {
		o.st.Reading(t, h)
	}
}

func (o *observer) sensorError(err error) {
	if o.m != nil {
		o.m.SensorError()
	}
	if o.st != nil {
		o.st.SensorError(err)
	}
}

func (o *observer) outcome(outcome string) {
	if o.st != nil {
		o.st.Outcome(outcome)
	}
}
