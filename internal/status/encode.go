// internal/status/encode.go
package status

import "time"

// View is the wire form of a Snapshot served on /status.
type View struct {
	State          string       `json:"state"`
	Health         string       `json:"health"`
	HealthCode     uint16       `json:"health_code"`
	DevicePath     string       `json:"device_path,omitempty"`
	LastError      string       `json:"last_error,omitempty"`
	LastErrorCode  uint16       `json:"last_error_code"`
	SecondsInError uint16       `json:"seconds_in_error"`
	Counters       Counters     `json:"counters"`
	LastReading    *ReadingView `json:"last_reading,omitempty"`
}

type Counters struct {
	Delivered    uint64 `json:"delivered"`
	Exhausted    uint64 `json:"exhausted_retries"`
	Rejected     uint64 `json:"rejected"`
	Chatter      uint64 `json:"device_chatter"`
	SensorErrors uint64 `json:"sensor_errors"`
}

type ReadingView struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	At          string  `json:"at"`
}

// Encode converts a Snapshot into its wire view at time now.
// No IO. No side effects.
func Encode(s Snapshot, now time.Time) View {
	v := View{
		State:         s.State,
		Health:        HealthName(s.Health),
		HealthCode:    s.Health,
		DevicePath:    s.DevicePath,
		LastError:     s.LastError,
		LastErrorCode: s.LastErrorCode,
		Counters: Counters{
			Delivered:    s.Delivered,
			Exhausted:    s.Exhausted,
			Rejected:     s.Rejected,
			Chatter:      s.Chatter,
			SensorErrors: s.SensorErrors,
		},
	}

	if s.Health == HealthError && !s.ErrorSince.IsZero() {
		secs := int64(now.Sub(s.ErrorSince) / time.Second)
		switch {
		case secs < 0:
			secs = 0
		case secs > MaxSecondsInError:
			secs = MaxSecondsInError
		}
		v.SecondsInError = uint16(secs)
	}

	if s.LastReading != nil {
		v.LastReading = &ReadingView{
			Temperature: s.LastReading.Temperature,
			Humidity:    s.LastReading.Humidity,
			At:          s.LastReading.At.UTC().Format(time.RFC3339),
		}
	}

	return v
}
