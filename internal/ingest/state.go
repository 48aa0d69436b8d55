// internal/ingest/state.go
package ingest

import "fmt"

// State is the ingestion loop's position in its lifecycle.
type State int

const (
	Disconnected State = iota
	Connecting
	Streaming
	Faulted
	Reconnecting
	Terminated
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Streaming:
		return "streaming"
	case Faulted:
		return "faulted"
	case Reconnecting:
		return "reconnecting"
	case Terminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// StateNames lists every state label, for one-hot gauges.
var StateNames = []string{
	Disconnected.String(),
	Connecting.String(),
	Streaming.String(),
	Faulted.String(),
	Reconnecting.String(),
	Terminated.String(),
}

// FatalError ends the process. Op is the failing step ("open", "read").
// Err already names the device; Path is kept for callers.
type FatalError struct {
	Op   string
	Path string
	Err  error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("ingest: %s: %v", e.Op, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }
