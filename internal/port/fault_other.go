// internal/port/fault_other.go
//go:build !linux

package port

func isPermanentErrno(error) bool { return false }
