// internal/port/reader_test.go
package port

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// scriptedReader returns one scripted chunk/error per Read call.
type scriptedReader struct {
	steps []step
}

type step struct {
	data string
	err  error
}

func (s *scriptedReader) Read(b []byte) (int, error) {
	if len(s.steps) == 0 {
		return 0, ErrNoData
	}
	st := s.steps[0]
	s.steps = s.steps[1:]
	n := copy(b, st.data)
	return n, st.err
}

func TestReadLine_SplitsAndStripsCR(t *testing.T) {
	lr := NewLineReader(&scriptedReader{steps: []step{
		{data: "TEMP:23.5,HUMIDITY:65.2\r\nboot ok\r\n"},
	}})

	l, err := lr.ReadLine()
	require.NoError(t, err)
	require.Equal(t, "TEMP:23.5,HUMIDITY:65.2", l)

	l, err = lr.ReadLine()
	require.NoError(t, err)
	require.Equal(t, "boot ok", l)

	_, err = lr.ReadLine()
	require.ErrorIs(t, err, ErrNoData)
}

func TestReadLine_PartialLineSurvivesNoData(t *testing.T) {
	lr := NewLineReader(&scriptedReader{steps: []step{
		{data: "TEMP:2", err: ErrNoData},
		{data: "1.0,HUMIDITY:40\n"},
	}})

	_, err := lr.ReadLine()
	require.ErrorIs(t, err, ErrNoData)
	require.Equal(t, 6, lr.Pending())

	l, err := lr.ReadLine()
	require.NoError(t, err)
	require.Equal(t, "TEMP:21.0,HUMIDITY:40", l)
}

func TestReadLine_DropsInvalidUTF8(t *testing.T) {
	lr := NewLineReader(&scriptedReader{steps: []step{
		{data: "ESP\xff\xfe32 ready\n"},
	}})

	l, err := lr.ReadLine()
	require.NoError(t, err)
	require.Equal(t, "ESP32 ready", l)
}

func TestReadLine_FaultPropagates(t *testing.T) {
	eio := errors.New("input/output error")
	lr := NewLineReader(&scriptedReader{steps: []step{{err: eio}}})

	_, err := lr.ReadLine()
	require.ErrorIs(t, err, eio)
	require.NotErrorIs(t, err, ErrNoData)
}

func TestReadLine_EmptyReadIsHangup(t *testing.T) {
	lr := NewLineReader(&scriptedReader{steps: []step{{}}})

	_, err := lr.ReadLine()
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReadLine_OverlongFlushed(t *testing.T) {
	long := strings.Repeat("x", MaxLineBytes+10)
	lr := NewLineReader(strings.NewReader(long + "\n"))

	l, err := lr.ReadLine()
	require.NoError(t, err)
	require.Len(t, l, MaxLineBytes)

	l, err = lr.ReadLine()
	require.NoError(t, err)
	require.Len(t, l, 10)
}
