// internal/status/status_test.go
package status

import (
	"errors"
	"fmt"
	"syscall"
	"testing"
	"time"

	"github.com/goburrow/modbus"
)

func fixedTracker(now *time.Time) *Tracker {
	tr := NewTracker()
	tr.now = func() time.Time { return *now }
	return tr
}

func TestSecondsInErrorCountsFromFirstFault(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tr := fixedTracker(&now)

	tr.Fault(errors.New("read /dev/ttyACM0: input/output error"))
	now = now.Add(3 * time.Second)
	tr.Fault(errors.New("open /dev/ttyACM0: no such file or directory"))
	now = now.Add(2 * time.Second)

	v := Encode(tr.Snapshot(), now)
	if v.Health != "error" || v.HealthCode != HealthError {
		t.Fatalf("expected error health, got %s/%d", v.Health, v.HealthCode)
	}
	if v.SecondsInError != 5 {
		t.Fatalf("seconds_in_error: got=%d want=5", v.SecondsInError)
	}
	if v.LastError != "open /dev/ttyACM0: no such file or directory" {
		t.Fatalf("last error not updated: %q", v.LastError)
	}
}

func TestSecondsInErrorResetOnRecovery(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tr := fixedTracker(&now)

	tr.Fault(errors.New("boom"))
	now = now.Add(42 * time.Second)
	tr.Recover()

	v := Encode(tr.Snapshot(), now)
	if v.SecondsInError != 0 {
		t.Fatalf("seconds_in_error not reset: got=%d want=0", v.SecondsInError)
	}
	if v.LastError != "" || v.Health != "ok" {
		t.Fatalf("unexpected view after recovery: %+v", v)
	}
}

func TestSecondsInErrorDoesNotWrap(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tr := fixedTracker(&now)

	tr.Fault(errors.New("boom"))
	now = now.Add(48 * time.Hour)

	if v := Encode(tr.Snapshot(), now); v.SecondsInError != MaxSecondsInError {
		t.Fatalf("expected cap %d, got %d", MaxSecondsInError, v.SecondsInError)
	}
}

func TestOutcomeCounters(t *testing.T) {
	tr := NewTracker()
	tr.Outcome("delivered")
	tr.Outcome("delivered")
	tr.Outcome("exhausted_retries")
	tr.Outcome("rejected")
	tr.Chatter()

	c := Encode(tr.Snapshot(), time.Now()).Counters
	if c.Delivered != 2 || c.Exhausted != 1 || c.Rejected != 1 || c.Chatter != 1 {
		t.Fatalf("unexpected counters: %+v", c)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	tr := NewTracker()
	tr.Reading(20, 50)

	s := tr.Snapshot()
	s.LastReading.Temperature = 99

	if tr.Snapshot().LastReading.Temperature != 20 {
		t.Fatalf("snapshot aliases tracker state")
	}
}

func TestErrorCode(t *testing.T) {
	if got := ErrorCode(nil); got != 0 {
		t.Fatalf("nil: got=%d want=0", got)
	}
	if got := ErrorCode(&modbus.ModbusError{FunctionCode: 4, ExceptionCode: modbus.ExceptionCodeIllegalDataAddress}); got != 2 {
		t.Fatalf("modbus exception: got=%d want=2", got)
	}
	if got := ErrorCode(fmt.Errorf("port: read: %w", syscall.EIO)); got != uint16(syscall.EIO) {
		t.Fatalf("errno: got=%d want=%d", got, syscall.EIO)
	}
	if got := ErrorCode(errors.New("boom")); got != 1 {
		t.Fatalf("generic: got=%d want=1", got)
	}
}
