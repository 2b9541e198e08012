package comm

import (
	"fmt"
	"strconv"
)

// BaudRate is a serial line rate supported by the device.
type BaudRate int

// Supported baud rates.
const (
	Baud9600   BaudRate = 9600
	Baud19200  BaudRate = 19200
	Baud115200 BaudRate = 115200

	DefaultBaudRate = Baud19200
)

// Valid tells if the rate is supported.
func (b BaudRate) Valid() bool {
	switch b {
	case Baud9600, Baud19200, Baud115200:
		return true
	}
	return false
}

// ParseBaudRate parses a decimal baud rate.
func ParseBaudRate(s string) (BaudRate, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid baud rate %q", s)
	}
	if b := BaudRate(n); b.Valid() {
		return b, nil
	}
	return 0, fmt.Errorf("unsupported baud rate %d", n)
}

// Receiver is notified by a Transport on its read goroutine.
type Receiver interface {
	// Opened is called before any data of a newly opened port.
	Opened()
	// Received is called with all bytes available from one read.
	// data is only valid during the call.
	Received(data []byte)
	// ReadFailed is called once when reading stops on an error.
	ReadFailed(err error)
}

// Transport carries raw bytes to and from the device.
type Transport interface {
	Open(port string, baud BaudRate, r Receiver) error
	Write(p []byte) error
	// Reconnect closes and reopens the port at a new rate, keeping the Receiver.
	Reconnect(baud BaudRate) error
	// Close is idempotent. No Receiver calls happen after it returns.
	Close() error
}
