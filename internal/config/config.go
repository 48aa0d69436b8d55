// internal/config/config.go
package config

import "time"

// AutoPort is the serial_port sentinel that enables device discovery.
const AutoPort = "auto"

// Source modes.
const (
	SourceSerial = "serial"
	SourceModbus = "modbus"
)

// Config is the process-wide configuration record.
// Loaded once at startup, never mutated after Normalize.
type Config struct {
	// ---- delivery ----
	APIURL                string   `yaml:"api_url" json:"api_url"`
	APIKey                string   `yaml:"api_key" json:"api_key"`
	APIKeyHeader          string   `yaml:"api_key_header" json:"api_key_header"`
	SensorID              string   `yaml:"sensor_id" json:"sensor_id"`
	SensorIDLegacy        string   `yaml:"sensor_id_esp32" json:"sensor_id_esp32"` // original config.json key
	RetryAttempts         *int     `yaml:"retry_attempts" json:"retry_attempts"`
	RetryDelaySeconds     *float64 `yaml:"retry_delay_seconds" json:"retry_delay_seconds"`
	RequestTimeoutSeconds float64  `yaml:"request_timeout_seconds" json:"request_timeout_seconds"`
	RetryClientErrors     *bool    `yaml:"retry_client_errors" json:"retry_client_errors"`

	// ---- acquisition ----
	Source                string   `yaml:"source" json:"source"`
	SerialPort            string   `yaml:"serial_port" json:"serial_port"`
	BaudRate              int      `yaml:"baud_rate" json:"baud_rate"`
	DeviceMatch           []string `yaml:"device_match" json:"device_match"`
	PollIntervalMs        int      `yaml:"poll_interval_ms" json:"poll_interval_ms"`
	ReadTimeoutMs         int      `yaml:"read_timeout_ms" json:"read_timeout_ms"`
	ReconnectDelaySeconds float64  `yaml:"reconnect_delay_seconds" json:"reconnect_delay_seconds"`

	Modbus ModbusConfig `yaml:"modbus" json:"modbus"`

	// ---- observability ----
	Status StatusConfig `yaml:"status" json:"status"`
	Log    LogConfig    `yaml:"log" json:"log"`
}

// ---- MODBUS REGISTER SENSOR ----

type ModbusConfig struct {
	Transport           string  `yaml:"transport" json:"transport"` // rtu | tcp
	Address             string  `yaml:"address" json:"address"`     // /dev/ttyUSB0 or host:port
	BaudRate            int     `yaml:"baud_rate" json:"baud_rate"`
	SlaveID             uint8   `yaml:"slave_id" json:"slave_id"`
	FC                  uint8   `yaml:"fc" json:"fc"` // 3 holding, 4 input
	TemperatureRegister uint16  `yaml:"temperature_register" json:"temperature_register"`
	HumidityRegister    uint16  `yaml:"humidity_register" json:"humidity_register"`
	Scale               float64 `yaml:"scale" json:"scale"`
	TimeoutMs           int     `yaml:"timeout_ms" json:"timeout_ms"`
	IntervalSeconds     float64 `yaml:"interval_seconds" json:"interval_seconds"`
}

// ---- STATUS SERVER ----

type StatusConfig struct {
	Listen    string `yaml:"listen" json:"listen"`         // empty disables the server
	AccessLog *bool  `yaml:"access_log" json:"access_log"` // default true
}

// AccessLogEnabled reports whether status server requests are logged.
func (s StatusConfig) AccessLogEnabled() bool {
	return s.AccessLog == nil || *s.AccessLog
}

// ---- LOGGING ----

type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"` // text | json
}

// ---- derived values ----

// Attempts is the per-reading delivery budget. Only valid after Normalize.
func (c *Config) Attempts() int {
	if c.RetryAttempts == nil {
		return 0
	}
	return *c.RetryAttempts
}

func (c *Config) RetryDelay() time.Duration {
	if c.RetryDelaySeconds == nil {
		return 0
	}
	return seconds(*c.RetryDelaySeconds)
}

func (c *Config) RequestTimeout() time.Duration {
	return seconds(c.RequestTimeoutSeconds)
}

func (c *Config) ReconnectDelay() time.Duration {
	return seconds(c.ReconnectDelaySeconds)
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutMs) * time.Millisecond
}

// RetriesClientErrors reports whether 4xx responses are retried like any other failure.
func (c *Config) RetriesClientErrors() bool {
	return c.RetryClientErrors == nil || *c.RetryClientErrors
}

// AutoDiscover reports whether the serial device is resolved by discovery.
func (c *Config) AutoDiscover() bool {
	return c.SerialPort == "" || c.SerialPort == AutoPort
}

func (m *ModbusConfig) Timeout() time.Duration {
	return time.Duration(m.TimeoutMs) * time.Millisecond
}

func (m *ModbusConfig) Interval() time.Duration {
	return seconds(m.IntervalSeconds)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
