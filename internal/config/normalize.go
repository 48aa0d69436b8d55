// internal/config/normalize.go
package config

import "strings"

// Defaults mirror the field agent's original config.json behavior.
const (
	DefaultAPIKeyHeader          = "X-API-Key"
	DefaultRetryAttempts         = 3
	DefaultRetryDelaySeconds     = 10.0
	DefaultRequestTimeoutSeconds = 10.0
	DefaultBaudRate              = 115200
	DefaultPollIntervalMs        = 100
	DefaultReadTimeoutMs         = 100
	DefaultReconnectDelaySeconds = 5.0

	DefaultModbusBaudRate = 9600
	DefaultModbusScale    = 0.1
	DefaultModbusInterval = 300.0 // 5 minutes
	DefaultModbusTimeout  = 1000
)

// DefaultDeviceMatch selects USB-serial adapters (CDC-ACM and FTDI/CH340 style).
var DefaultDeviceMatch = []string{"ACM", "USB"}

// Normalize applies post-validation defaults.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.APIKeyHeader == "" {
		cfg.APIKeyHeader = DefaultAPIKeyHeader
	}
	if cfg.SensorID == "" {
		cfg.SensorID = cfg.SensorIDLegacy
	}
	if cfg.RetryAttempts == nil {
		n := DefaultRetryAttempts
		cfg.RetryAttempts = &n
	}
	if cfg.RetryDelaySeconds == nil {
		d := DefaultRetryDelaySeconds
		cfg.RetryDelaySeconds = &d
	}
	if cfg.RequestTimeoutSeconds == 0 {
		cfg.RequestTimeoutSeconds = DefaultRequestTimeoutSeconds
	}

	if cfg.Source == "" {
		cfg.Source = SourceSerial
	}
	if cfg.SerialPort == "" {
		cfg.SerialPort = AutoPort
	}
	if cfg.BaudRate == 0 {
		cfg.BaudRate = DefaultBaudRate
	}
	if len(cfg.DeviceMatch) == 0 {
		cfg.DeviceMatch = append([]string(nil), DefaultDeviceMatch...)
	}
	if cfg.PollIntervalMs == 0 {
		cfg.PollIntervalMs = DefaultPollIntervalMs
	}
	if cfg.ReadTimeoutMs == 0 {
		cfg.ReadTimeoutMs = DefaultReadTimeoutMs
	}
	if cfg.ReconnectDelaySeconds == 0 {
		cfg.ReconnectDelaySeconds = DefaultReconnectDelaySeconds
	}

	// ------------------------------------------------------------
	// MODBUS (only meaningful when source == modbus)
	// ------------------------------------------------------------

	m := &cfg.Modbus
	if m.Transport == "" {
		m.Transport = "rtu"
	}
	if m.BaudRate == 0 {
		m.BaudRate = DefaultModbusBaudRate
	}
	if m.SlaveID == 0 {
		m.SlaveID = 1
	}
	if m.FC == 0 {
		m.FC = 4
	}
	if m.TemperatureRegister == 0 && m.HumidityRegister == 0 {
		m.TemperatureRegister = 1
		m.HumidityRegister = 2
	}
	if m.Scale == 0 {
		m.Scale = DefaultModbusScale
	}
	if m.TimeoutMs == 0 {
		m.TimeoutMs = DefaultModbusTimeout
	}
	if m.IntervalSeconds == 0 {
		m.IntervalSeconds = DefaultModbusInterval
	}

	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
