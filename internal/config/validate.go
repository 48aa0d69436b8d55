// internal/config/validate.go
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
// Zero values mean "unset" and are filled by Normalize.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil")
	}

	var errs []string

	// ------------------------------------------------------------
	// DELIVERY
	// ------------------------------------------------------------

	if cfg.APIURL == "" {
		errs = append(errs, "api_url is required")
	} else if u, err := url.Parse(cfg.APIURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Sprintf("api_url %q must be an absolute http(s) URL", cfg.APIURL))
	}

	if cfg.APIKey == "" {
		errs = append(errs, "api_key is required")
	}
	if strings.ContainsAny(cfg.APIKeyHeader, " :\r\n") {
		errs = append(errs, fmt.Sprintf("api_key_header %q is not a valid header name", cfg.APIKeyHeader))
	}

	if cfg.SensorID == "" && cfg.SensorIDLegacy == "" {
		errs = append(errs, "sensor_id is required")
	}

	if cfg.RetryAttempts != nil && *cfg.RetryAttempts < 1 {
		errs = append(errs, fmt.Sprintf("retry_attempts must be >= 1, got %d", *cfg.RetryAttempts))
	}
	if cfg.RetryDelaySeconds != nil && *cfg.RetryDelaySeconds < 0 {
		errs = append(errs, fmt.Sprintf("retry_delay_seconds must be >= 0, got %v", *cfg.RetryDelaySeconds))
	}
	if cfg.RequestTimeoutSeconds < 0 {
		errs = append(errs, "request_timeout_seconds must be >= 0")
	}

	// ------------------------------------------------------------
	// ACQUISITION
	// ------------------------------------------------------------

	switch cfg.Source {
	case "", SourceSerial:
		if cfg.BaudRate < 0 {
			errs = append(errs, fmt.Sprintf("baud_rate must be > 0, got %d", cfg.BaudRate))
		}
		if cfg.PollIntervalMs < 0 || cfg.ReadTimeoutMs < 0 {
			errs = append(errs, "poll_interval_ms and read_timeout_ms must be >= 0")
		}
		if cfg.ReconnectDelaySeconds < 0 {
			errs = append(errs, "reconnect_delay_seconds must be >= 0")
		}
		for _, m := range cfg.DeviceMatch {
			if m == "" {
				errs = append(errs, "device_match entries must not be empty")
				break
			}
		}

	case SourceModbus:
		errs = append(errs, validateModbus(&cfg.Modbus)...)

	default:
		errs = append(errs, fmt.Sprintf("source %q must be %q or %q", cfg.Source, SourceSerial, SourceModbus))
	}

	// ------------------------------------------------------------
	// OBSERVABILITY
	// ------------------------------------------------------------

	switch strings.ToLower(cfg.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("log.level %q is not one of debug|info|warn|error", cfg.Log.Level))
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("log.format %q is not one of text|json", cfg.Log.Format))
	}

	if len(errs) > 0 {
		return errors.New("config: " + strings.Join(errs, " | "))
	}
	return nil
}

func validateModbus(m *ModbusConfig) []string {
	var errs []string

	if m.Address == "" {
		errs = append(errs, "modbus.address is required when source is modbus")
	}
	switch m.Transport {
	case "", "rtu", "tcp":
	default:
		errs = append(errs, fmt.Sprintf("modbus.transport %q must be rtu or tcp", m.Transport))
	}
	switch m.FC {
	case 0, 3, 4:
	default:
		errs = append(errs, fmt.Sprintf("modbus.fc %d must be 3 or 4", m.FC))
	}
	if m.Scale < 0 {
		errs = append(errs, "modbus.scale must be >= 0")
	}
	if m.IntervalSeconds < 0 || m.TimeoutMs < 0 || m.BaudRate < 0 {
		errs = append(errs, "modbus interval/timeout/baud must be >= 0")
	}
	if m.TemperatureRegister == m.HumidityRegister && (m.TemperatureRegister != 0 || m.HumidityRegister != 0) {
		errs = append(errs, "modbus temperature_register and humidity_register must differ")
	}

	return errs
}
