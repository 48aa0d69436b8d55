// internal/delivery/payload.go
package delivery

import (
	"time"

	"github.com/tamzrod/telemetry-agent/internal/frame"
)

// TimestampLayout is UTC ISO-8601 with second precision and a literal Z.
const TimestampLayout = "2006-01-02T15:04:05Z"

// Payload is the JSON body sent to the collection endpoint.
// The timestamp is stamped once, before the first attempt, and reused by retries.
type Payload struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Timestamp   string  `json:"timestamp"`
	SensorID    string  `json:"sensor_id"`
}

// NewPayload stamps a reading for sending.
func NewPayload(r frame.Reading, sensorID string, at time.Time) Payload {
	return Payload{
		Temperature: r.Temperature,
		Humidity:    r.Humidity,
		Timestamp:   at.UTC().Format(TimestampLayout),
		SensorID:    sensorID,
	}
}

// Outcome is the result of one delivery attempt sequence.
type Outcome int

const (
	Delivered Outcome = iota + 1
	ExhaustedRetries
	Rejected // non-retryable response; only with retry_client_errors=false
)

func (o Outcome) String() string {
	switch o {
	case Delivered:
		return "delivered"
	case ExhaustedRetries:
		return "exhausted_retries"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}
