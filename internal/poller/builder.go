// internal/poller/builder.go
package poller

import (
	cfg "github.com/tamzrod/telemetry-agent/internal/config"
	pmodbus "github.com/tamzrod/telemetry-agent/internal/poller/modbus"
)

// Build constructs a Poller over a Modbus register sensor.
// Connection is reused while healthy.
// On transport death, Poller discards the client and uses factory on a future tick.
// Unlike a fixed installation, a field sensor may be unplugged at boot:
// no initial connect, the first poll dials.
func Build(sensorID string, m cfg.ModbusConfig) (*Poller, error) {
	// client factory: ONE attempt per call
	factory := func() (Client, error) {
		return pmodbus.New(pmodbus.Config{
			Transport:           m.Transport,
			Address:             m.Address,
			BaudRate:            m.BaudRate,
			SlaveID:             m.SlaveID,
			FC:                  m.FC,
			TemperatureRegister: m.TemperatureRegister,
			HumidityRegister:    m.HumidityRegister,
			Scale:               m.Scale,
			Timeout:             m.Timeout(),
		})
	}

	return New(
		Config{
			SensorID: sensorID,
			Interval: m.Interval(),
		},
		nil,
		factory,
	)
}
