// internal/status/snapshot.go
package status

import (
	"sync"
	"time"
)

// Snapshot is the agent's current device-level truth plus delivery counters.
type Snapshot struct {
	State         string
	Health        uint16
	DevicePath    string
	LastError     string
	LastErrorCode uint16
	ErrorSince    time.Time // zero while healthy

	Delivered    uint64
	Exhausted    uint64
	Rejected     uint64
	Chatter      uint64
	SensorErrors uint64

	LastReading *Reading
}

// Reading is the last accepted measurement.
type Reading struct {
	Temperature float64
	Humidity    float64
	At          time.Time
}

// Tracker owns the snapshot. Written by the single ingestion worker,
// read by the status server.
type Tracker struct {
	mu  sync.Mutex
	s   Snapshot
	now func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{
		s:   Snapshot{Health: HealthUnknown},
		now: time.Now,
	}
}

func (t *Tracker) SetState(state string) {
	t.mu.Lock()
	t.s.State = state
	t.mu.Unlock()
}

func (t *Tracker) SetDevice(path string) {
	t.mu.Lock()
	t.s.DevicePath = path
	t.mu.Unlock()
}

// Fault moves health to error. ErrorSince is kept across repeated faults
// so seconds_in_error keeps counting.
func (t *Tracker) Fault(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.s.Health != HealthError {
		t.s.Health = HealthError
		t.s.ErrorSince = t.now()
	}
	if err != nil {
		t.s.LastError = err.Error()
		t.s.LastErrorCode = ErrorCode(err)
	}
}

// Recover resets error state on the first good sign from the device.
func (t *Tracker) Recover() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.s.Health = HealthOK
	t.s.LastError = ""
	t.s.LastErrorCode = 0
	t.s.ErrorSince = time.Time{}
}

func (t *Tracker) Reading(temperature, humidity float64) {
	t.mu.Lock()
	t.s.LastReading = &Reading{Temperature: temperature, Humidity: humidity, At: t.now()}
	t.mu.Unlock()
}

func (t *Tracker) Chatter() {
	t.mu.Lock()
	t.s.Chatter++
	t.mu.Unlock()
}

func (t *Tracker) SensorError(err error) {
	t.mu.Lock()
	t.s.SensorErrors++
	t.mu.Unlock()
	t.Fault(err)
}

// Outcome counts a final delivery outcome by its string form.
func (t *Tracker) Outcome(outcome string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch outcome {
	case "delivered":
		t.s.Delivered++
	case "exhausted_retries":
		t.s.Exhausted++
	case "rejected":
		t.s.Rejected++
	}
}

// Snapshot returns a copy.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.s
	if s.LastReading != nil {
		r := *s.LastReading
		s.LastReading = &r
	}
	return s
}
