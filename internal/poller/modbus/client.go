// internal/poller/modbus/client.go
package modbus

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/goburrow/modbus"

	"github.com/tamzrod/telemetry-agent/internal/frame"
)

// registerReader is the subset of modbus.Client the sensor uses.
type registerReader interface {
	ReadHoldingRegisters(address, quantity uint16) ([]byte, error) // FC 3
	ReadInputRegisters(address, quantity uint16) ([]byte, error)   // FC 4
}

// Config is minimal transport + register map config.
type Config struct {
	Transport string // rtu | tcp
	Address   string // serial device or host:port
	BaudRate  int    // rtu only
	SlaveID   uint8
	Timeout   time.Duration

	FC                  uint8 // 3 or 4
	TemperatureRegister uint16
	HumidityRegister    uint16
	Scale               float64
}

// Sensor implements poller.Client over a Modbus temperature/humidity
// transmitter. Temperature is a signed 16-bit register, humidity unsigned;
// both are multiplied by Scale.
type Sensor struct {
	regs   registerReader
	closer func() error

	fc      uint8
	tempReg uint16
	humReg  uint16
	scale   float64
}

// New creates a connected sensor client.
func New(cfg Config) (*Sensor, error) {
	if cfg.Address == "" {
		return nil, errors.New("modbus sensor: address required")
	}

	switch cfg.Transport {
	case "", "rtu":
		h := modbus.NewRTUClientHandler(cfg.Address)
		h.BaudRate = cfg.BaudRate
		h.DataBits = 8
		h.Parity = "N"
		h.StopBits = 1
		h.SlaveId = cfg.SlaveID
		h.Timeout = cfg.Timeout

		if err := h.Connect(); err != nil {
			return nil, fmt.Errorf("modbus sensor: connect %s: %w", cfg.Address, err)
		}
		return newSensor(cfg, modbus.NewClient(h), h.Close), nil

	case "tcp":
		h := modbus.NewTCPClientHandler(cfg.Address)
		h.SlaveId = cfg.SlaveID
		h.Timeout = cfg.Timeout

		if err := h.Connect(); err != nil {
			return nil, fmt.Errorf("modbus sensor: connect %s: %w", cfg.Address, err)
		}
		return newSensor(cfg, modbus.NewClient(h), h.Close), nil

	default:
		return nil, fmt.Errorf("modbus sensor: unsupported transport %q", cfg.Transport)
	}
}

func newSensor(cfg Config, regs registerReader, closer func() error) *Sensor {
	fc := cfg.FC
	if fc == 0 {
		fc = 4
	}
	return &Sensor{
		regs:    regs,
		closer:  closer,
		fc:      fc,
		tempReg: cfg.TemperatureRegister,
		humReg:  cfg.HumidityRegister,
		scale:   cfg.Scale,
	}
}

// Close closes the underlying transport.
func (s *Sensor) Close() error {
	if s == nil || s.closer == nil {
		return nil
	}
	return s.closer()
}

// ---- poller.Client interface ----

// Read performs one measurement. Both registers must read or the cycle fails.
func (s *Sensor) Read() (frame.Reading, error) {
	rawT, err := s.register(s.tempReg)
	if err != nil {
		return frame.Reading{}, fmt.Errorf("modbus sensor: temperature: %w", err)
	}
	rawH, err := s.register(s.humReg)
	if err != nil {
		return frame.Reading{}, fmt.Errorf("modbus sensor: humidity: %w", err)
	}

	return frame.Reading{
		Temperature: round2(float64(int16(rawT)) * s.scale),
		Humidity:    round2(float64(rawH) * s.scale),
	}, nil
}

func (s *Sensor) register(addr uint16) (uint16, error) {
	var (
		b   []byte
		err error
	)
	switch s.fc {
	case 3:
		b, err = s.regs.ReadHoldingRegisters(addr, 1)
	case 4:
		b, err = s.regs.ReadInputRegisters(addr, 1)
	default:
		return 0, fmt.Errorf("unsupported function code %d", s.fc)
	}
	if err != nil {
		return 0, err
	}
	if len(b) < 2 {
		return 0, fmt.Errorf("short register payload: %d bytes", len(b))
	}
	return uint16(b[0])<<8 | uint16(b[1]), nil
}

// round2 matches the two-decimal precision the collector stores.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
