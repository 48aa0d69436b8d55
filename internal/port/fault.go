// internal/port/fault.go
package port

import (
	"errors"
	"io/fs"
)

// IsPermanent reports whether a port error cannot heal by waiting:
// permission problems need an operator. Unplug/replug (ENOENT, ENODEV,
// EIO, EOF) is transient.
func IsPermanent(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, fs.ErrPermission) {
		return true
	}
	return isPermanentErrno(err)
}
