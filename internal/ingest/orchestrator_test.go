// internal/ingest/orchestrator_test.go
package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tamzrod/telemetry-agent/internal/delivery"
	"github.com/tamzrod/telemetry-agent/internal/frame"
	"github.com/tamzrod/telemetry-agent/internal/poller"
	"github.com/tamzrod/telemetry-agent/internal/status"
)

func newTestOrchestrator(d Deliverer, st *status.Tracker) *Orchestrator {
	log, _ := newCapture()
	o := NewOrchestrator("rpi-01", d, log, nil, st)
	o.now = func() time.Time { return fixedNow }
	return o
}

func TestOrchestrator_DeliversReading(t *testing.T) {
	d := &fakeDeliverer{}
	st := status.NewTracker()
	o := newTestOrchestrator(d, st)

	out, err := o.Handle(context.Background(), poller.PollResult{
		SensorID: "rpi-01",
		Reading:  frame.Reading{Temperature: 21.4, Humidity: 48.9},
	})

	require.NoError(t, err)
	require.Equal(t, delivery.Delivered, out)
	require.Len(t, d.got, 1)
	require.Equal(t, "rpi-01", d.got[0].SensorID)
	require.Equal(t, "2026-03-01T00:30:15Z", d.got[0].Timestamp)

	snap := st.Snapshot()
	require.Equal(t, status.HealthOK, snap.Health)
	require.Equal(t, uint64(1), snap.Delivered)
	require.Equal(t, "streaming", snap.State)
}

func TestOrchestrator_SensorFailureIsNotDelivered(t *testing.T) {
	d := &fakeDeliverer{}
	st := status.NewTracker()
	o := newTestOrchestrator(d, st)

	_, err := o.Handle(context.Background(), poller.PollResult{Err: errors.New("modbus: timeout")})

	require.ErrorIs(t, err, ErrSensor)
	require.Empty(t, d.got)

	snap := st.Snapshot()
	require.Equal(t, uint64(1), snap.SensorErrors)
	require.Equal(t, status.HealthError, snap.Health)
	require.Equal(t, "faulted", snap.State)
}

func TestOrchestrator_RunConsumesInOrder(t *testing.T) {
	d := &fakeDeliverer{outcome: delivery.ExhaustedRetries}
	o := newTestOrchestrator(d, nil)

	in := make(chan poller.PollResult, 3)
	in <- poller.PollResult{Reading: frame.Reading{Temperature: 1}}
	in <- poller.PollResult{Err: errors.New("crc mismatch")}
	in <- poller.PollResult{Reading: frame.Reading{Temperature: 3}}
	close(in)

	require.NoError(t, o.Run(context.Background(), in))
	require.Len(t, d.got, 2)
	require.Equal(t, 1.0, d.got[0].Temperature)
	require.Equal(t, 3.0, d.got[1].Temperature)
}
