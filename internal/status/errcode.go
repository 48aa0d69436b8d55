// internal/status/errcode.go
package status

import (
	"errors"
	"syscall"

	"github.com/goburrow/modbus"
)

// ErrorCode extracts a best-effort uint16 code from an error without
// assuming concrete types. Modbus exceptions yield their exception code,
// OS errors their errno. Anything else returns 1 (generic error).
func ErrorCode(err error) uint16 {
	if err == nil {
		return 0
	}

	var me *modbus.ModbusError
	if errors.As(err, &me) {
		return uint16(me.ExceptionCode)
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		return uint16(errno)
	}

	type coder interface{ Code() uint16 }
	var c coder
	if errors.As(err, &c) {
		return c.Code()
	}

	return 1
}
