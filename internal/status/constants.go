// internal/status/constants.go
package status

// ---- HEALTH CODES ----

// HealthUnknown represents the boot state, before the device was reached.
const HealthUnknown uint16 = 0

// HealthOK represents a device that is connected and producing data.
const HealthOK uint16 = 1

// HealthError represents a device fault (port fault, open failure, sensor read error).
const HealthError uint16 = 2

// ---- LIMITS ----

// MaxSecondsInError caps seconds_in_error. It MUST NOT wrap.
const MaxSecondsInError = 65535

// HealthName renders a health code for humans.
func HealthName(h uint16) string {
	switch h {
	case HealthOK:
		return "ok"
	case HealthError:
		return "error"
	default:
		return "unknown"
	}
}
