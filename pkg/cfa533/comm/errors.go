package comm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotConnected indicates the connection is not established.
	ErrNotConnected = errors.New("not connected")
	// ErrAlreadyConnected is returned when connecting twice.
	ErrAlreadyConnected = errors.New("already connected")
	// ErrClosed indicates the connection was closed while a command was pending.
	ErrClosed = errors.New("connection closed")
	// ErrDataTooLong indicates a payload beyond MaxDataLen.
	ErrDataTooLong = errors.New("data too long")
)

// ConnectionError wraps failures to open, write or keep the port.
type ConnectionError struct {
	Op   string
	Port string
	Err  error
}

// Error implements error.
func (e *ConnectionError) Error() string {
	if e.Port == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Port, e.Err)
}

// Unwrap returns the cause.
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// TimeoutError indicates no reply arrived before the deadline.
type TimeoutError struct {
	ID    byte
	After time.Duration
}

// Error implements error.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("command 0x%02x: no reply in %s", e.ID, e.After)
}

// Timeout marks the error as a timeout, like net.Error.
func (e *TimeoutError) Timeout() bool {
	return true
}

// Unwrap makes errors.Is(err, context.DeadlineExceeded) hold.
func (e *TimeoutError) Unwrap() error {
	return context.DeadlineExceeded
}

// MalformedPacketError describes a frame that failed validation.
// It never leaves the receive path.
type MalformedPacketError struct {
	Code     byte
	Length   int
	Expected uint16
	Actual   uint16
	// Skip is the number of bytes to drop to resynchronize.
	Skip int
}

// Error implements error.
func (e *MalformedPacketError) Error() string {
	if e.Length > MaxDataLen {
		return fmt.Sprintf("packet 0x%02x: length %d exceeds %d", e.Code, e.Length, MaxDataLen)
	}
	return fmt.Sprintf("packet 0x%02x: crc mismatch, expected %04x, got %04x", e.Code, e.Expected, e.Actual)
}

// ResponseFormatError indicates a reply of unexpected type or shape.
type ResponseFormatError struct {
	Code   byte
	Reason string
}

// Error implements error.
func (e *ResponseFormatError) Error() string {
	return fmt.Sprintf("invalid response 0x%02x: %s", e.Code, e.Reason)
}

// CommandError indicates the device rejected the command.
type CommandError struct {
	ID byte
}

// Error implements error.
func (e *CommandError) Error() string {
	return fmt.Sprintf("command 0x%02x rejected", e.ID)
}
