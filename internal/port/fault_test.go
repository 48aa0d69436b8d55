// internal/port/fault_test.go
package port

import (
	"fmt"
	"io"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsPermanent(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{fmt.Errorf("port: open /dev/ttyACM0: %w", syscall.EACCES), true},
		{&os.PathError{Op: "open", Path: "/dev/ttyUSB0", Err: syscall.EPERM}, true},
		{fmt.Errorf("port: open: %w", syscall.ENOENT), false},
		{fmt.Errorf("port: read: %w", syscall.EIO), false},
		{fmt.Errorf("port: read: %w", io.ErrUnexpectedEOF), false},
		{ErrNotFound, false},
	}

	for _, c := range cases {
		require.Equal(t, c.want, IsPermanent(c.err), "%v", c.err)
	}
}
