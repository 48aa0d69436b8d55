// internal/poller/types.go
package poller

import (
	"time"

	"github.com/tamzrod/telemetry-agent/internal/frame"
)

// PollResult is a snapshot produced by one poll cycle.
type PollResult struct {
	SensorID string
	At       time.Time

	Reading frame.Reading
	Err     error // non-nil means the poll cycle failed; Reading is zero
}
