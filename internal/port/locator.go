// internal/port/locator.go
package port

import (
	"fmt"
	"strings"
)

// Candidate is one OS-visible serial-like endpoint.
type Candidate struct {
	Path        string // e.g. /dev/ttyACM0
	Description string // e.g. "USB JTAG/serial debug unit"
}

// Enumerator lists candidate endpoints in a stable order.
// Implemented per platform.
type Enumerator interface {
	Ports() ([]Candidate, error)
}

// Locator picks the first enumerated candidate that looks like the expected
// USB-serial adapter. No scoring: first match in enumeration order wins.
type Locator struct {
	enum  Enumerator
	match []string
}

// NewLocator builds a locator matching any of the given substrings against
// a candidate's path or description.
func NewLocator(enum Enumerator, match []string) *Locator {
	return &Locator{
		enum:  enum,
		match: append([]string(nil), match...),
	}
}

// Discover returns the first matching device path, or ErrNotFound.
func (l *Locator) Discover() (Candidate, error) {
	ports, err := l.enum.Ports()
	if err != nil {
		return Candidate{}, fmt.Errorf("port: enumerate: %w", err)
	}

	for _, c := range ports {
		if l.matches(c) {
			return c, nil
		}
	}
	return Candidate{}, ErrNotFound
}

func (l *Locator) matches(c Candidate) bool {
	for _, m := range l.match {
		if strings.Contains(c.Path, m) || strings.Contains(c.Description, m) {
			return true
		}
	}
	return false
}
