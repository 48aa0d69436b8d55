// internal/port/fault_linux.go
//go:build linux

package port

import (
	"errors"

	"golang.org/x/sys/unix"
)

func isPermanentErrno(err error) bool {
	var errno unix.Errno
	if !errors.As(err, &errno) {
		return false
	}
	switch errno {
	case unix.EACCES, unix.EPERM, unix.EROFS:
		return true
	}
	return false
}
