// internal/port/enumerate_linux.go
//go:build linux

package port

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// SysfsEnumerator lists ttys that are backed by a real device
// (/sys/class/tty/<name>/device exists), which skips the virtual
// consoles and pseudo terminals.
type SysfsEnumerator struct {
	SysRoot string // default /sys/class/tty
	DevRoot string // default /dev

	isCharDev func(path string) bool
}

// NewSystemEnumerator returns the enumerator for this platform.
func NewSystemEnumerator() Enumerator {
	return &SysfsEnumerator{
		SysRoot:   "/sys/class/tty",
		DevRoot:   "/dev",
		isCharDev: isCharDevice,
	}
}

func (e *SysfsEnumerator) Ports() ([]Candidate, error) {
	entries, err := os.ReadDir(e.SysRoot)
	if err != nil {
		return nil, err
	}

	var out []Candidate
	// ReadDir is sorted by name: enumeration order is deterministic.
	for _, ent := range entries {
		name := ent.Name()
		devDir := filepath.Join(e.SysRoot, name, "device")
		if _, err := os.Stat(devDir); err != nil {
			continue
		}

		path := filepath.Join(e.DevRoot, name)
		if e.isCharDev != nil && !e.isCharDev(path) {
			continue
		}

		out = append(out, Candidate{
			Path:        path,
			Description: describe(devDir),
		})
	}
	return out, nil
}

// describe reads the USB product/interface strings when present.
// ttyACM/ttyUSB devices sit on a USB interface whose parent is the device.
func describe(devDir string) string {
	if real, err := filepath.EvalSymlinks(devDir); err == nil {
		devDir = real
	}

	var parts []string
	for _, rel := range []string{"interface", "../product", "../manufacturer"} {
		b, err := os.ReadFile(filepath.Join(devDir, rel))
		if err != nil {
			continue
		}
		if s := strings.TrimSpace(string(b)); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

func isCharDevice(path string) bool {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		// a node we may not stat (EACCES) still exists; let Open decide
		return errors.Is(err, fs.ErrPermission)
	}
	return st.Mode&unix.S_IFMT == unix.S_IFCHR
}
