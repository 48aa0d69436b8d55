// internal/poller/modbus/client_test.go
package modbus

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeRegs serves big-endian register words by address.
type fakeRegs struct {
	words  map[uint16]uint16
	fail   map[uint16]error
	lastFC uint8
	reads  int
}

func (f *fakeRegs) read(fc uint8, addr, qty uint16) ([]byte, error) {
	f.lastFC = fc
	f.reads++
	if err := f.fail[addr]; err != nil {
		return nil, err
	}
	out := make([]byte, 0, 2*qty)
	for i := uint16(0); i < qty; i++ {
		w := f.words[addr+i]
		out = append(out, byte(w>>8), byte(w))
	}
	return out, nil
}

func (f *fakeRegs) ReadHoldingRegisters(addr, qty uint16) ([]byte, error) {
	return f.read(3, addr, qty)
}

func (f *fakeRegs) ReadInputRegisters(addr, qty uint16) ([]byte, error) {
	return f.read(4, addr, qty)
}

func TestSensor_ReadScalesRegisters(t *testing.T) {
	regs := &fakeRegs{words: map[uint16]uint16{1: 235, 2: 652}}
	s := newSensor(Config{FC: 4, TemperatureRegister: 1, HumidityRegister: 2, Scale: 0.1}, regs, nil)

	r, err := s.Read()
	require.NoError(t, err)
	require.Equal(t, 23.5, r.Temperature)
	require.Equal(t, 65.2, r.Humidity)
	require.Equal(t, uint8(4), regs.lastFC)
	require.Equal(t, 2, regs.reads)
}

func TestSensor_NegativeTemperature(t *testing.T) {
	neg := int16(-123)
	regs := &fakeRegs{words: map[uint16]uint16{1: uint16(neg), 2: 900}}
	s := newSensor(Config{FC: 3, TemperatureRegister: 1, HumidityRegister: 2, Scale: 0.1}, regs, nil)

	r, err := s.Read()
	require.NoError(t, err)
	require.Equal(t, -12.3, r.Temperature)
	require.Equal(t, 90.0, r.Humidity)
	require.Equal(t, uint8(3), regs.lastFC)
}

func TestSensor_FailureAbortsCycle(t *testing.T) {
	regs := &fakeRegs{
		words: map[uint16]uint16{1: 235},
		fail:  map[uint16]error{2: errors.New("modbus: exception '2' (illegal data address)")},
	}
	s := newSensor(Config{FC: 4, TemperatureRegister: 1, HumidityRegister: 2, Scale: 0.1}, regs, nil)

	_, err := s.Read()
	require.ErrorContains(t, err, "humidity")
}

func TestSensor_CloseCallsTransport(t *testing.T) {
	closed := 0
	s := newSensor(Config{}, &fakeRegs{}, func() error { closed++; return nil })

	require.NoError(t, s.Close())
	require.Equal(t, 1, closed)
}

func TestNew_RejectsBadConfig(t *testing.T) {
	_, err := New(Config{Transport: "rtu"})
	require.Error(t, err)

	_, err = New(Config{Transport: "ascii", Address: "/dev/ttyUSB0"})
	require.ErrorContains(t, err, "unsupported transport")
}
