package cfa533

import (
	"errors"
	"fmt"
)

// ErrUnsupported is returned by commands this driver doesn't implement.
var ErrUnsupported = errors.New("unsupported command")

// ArgumentError indicates an argument out of range. Nothing is sent.
type ArgumentError struct {
	Name   string
	Value  interface{}
	Reason string
}

// Error implements error.
func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Name, e.Value, e.Reason)
}

func checkRange(name string, value, min, max int) error {
	if value < min || value > max {
		return &ArgumentError{Name: name, Value: value, Reason: fmt.Sprintf("must be within %d-%d", min, max)}
	}
	return nil
}

func unsupported(id byte) error {
	return fmt.Errorf("command 0x%02x: %w", id, ErrUnsupported)
}
