// internal/port/enumerate_other.go
//go:build !linux

package port

import (
	"path/filepath"
	"sort"
)

// globEnumerator lists /dev/tty.* and /dev/cu.* style nodes.
type globEnumerator struct {
	patterns []string
}

// NewSystemEnumerator returns the enumerator for this platform.
func NewSystemEnumerator() Enumerator {
	return &globEnumerator{patterns: []string{"/dev/tty.*", "/dev/cu.*", "/dev/ttyU*"}}
}

func (e *globEnumerator) Ports() ([]Candidate, error) {
	var out []Candidate
	for _, p := range e.patterns {
		matches, err := filepath.Glob(p)
		if err != nil {
			return nil, err
		}
		sort.Strings(matches)
		for _, m := range matches {
			out = append(out, Candidate{Path: m})
		}
	}
	return out, nil
}
