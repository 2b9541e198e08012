// Package serial implements the CFA533 transport over an RS-232 port.
package serial

import (
	"io"
	"time"

	"github.com/golang/glog"
	"go.bug.st/serial"

	"github.com/robotalks/cfa533.go/internal/syncutil"
	"github.com/robotalks/cfa533.go/pkg/cfa533/comm"
)

// DefaultReadTimeout bounds a single read on the port.
const DefaultReadTimeout = 2 * time.Second

// Port is the subset of serial.Port used by Transport.
type Port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
	ResetInputBuffer() error
}

// PortFactory opens a port.
type PortFactory func(name string, mode *serial.Mode) (Port, error)

// OpenPort opens a system serial port.
func OpenPort(name string, mode *serial.Mode) (Port, error) {
	return serial.Open(name, mode)
}

// ListPorts lists the serial ports of the system.
func ListPorts() ([]string, error) {
	return serial.GetPortsList()
}

// Mode returns the line settings of the device: 8 data bits, no parity,
// one stop bit, RTS and DTR asserted.
func Mode(baud comm.BaudRate) *serial.Mode {
	return &serial.Mode{
		BaudRate: int(baud),
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
		InitialStatusBits: &serial.ModemOutputBits{
			RTS: true,
			DTR: true,
		},
	}
}

// bufferSize holds about one second of line time.
func bufferSize(baud comm.BaudRate) int {
	if n := int(baud) / 10; n > 64 {
		return n
	}
	return 64
}

// Transport implements comm.Transport.
type Transport struct {
	Factory     PortFactory
	ReadTimeout time.Duration

	port     Port
	name     string
	receiver comm.Receiver
	stopCh   chan struct{}
	doneCh   chan struct{}
	lock     syncutil.Mutex
}

// New creates a Transport on system serial ports.
func New() *Transport {
	return &Transport{Factory: OpenPort, ReadTimeout: DefaultReadTimeout}
}

// Open implements comm.Transport.
func (t *Transport) Open(name string, baud comm.BaudRate, r comm.Receiver) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.closeLocked()
	return t.openLocked(name, baud, r)
}

// Reconnect implements comm.Transport.
func (t *Transport) Reconnect(baud comm.BaudRate) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.receiver == nil {
		return &comm.ConnectionError{Op: "reconnect", Err: comm.ErrNotConnected}
	}
	t.closeLocked()
	return t.openLocked(t.name, baud, t.receiver)
}

// Write implements comm.Transport.
func (t *Transport) Write(p []byte) error {
	t.lock.Lock()
	port, name := t.port, t.name
	t.lock.Unlock()
	if port == nil {
		return &comm.ConnectionError{Op: "write", Port: name, Err: comm.ErrNotConnected}
	}
	for len(p) > 0 {
		n, err := port.Write(p)
		if err != nil {
			return &comm.ConnectionError{Op: "write", Port: name, Err: err}
		}
		if n == 0 {
			return &comm.ConnectionError{Op: "write", Port: name, Err: io.ErrShortWrite}
		}
		p = p[n:]
	}
	return nil
}

// Close implements comm.Transport.
func (t *Transport) Close() error {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.closeLocked()
}

func (t *Transport) openLocked(name string, baud comm.BaudRate, r comm.Receiver) error {
	factory := t.Factory
	if factory == nil {
		factory = OpenPort
	}
	port, err := factory(name, Mode(baud))
	if err != nil {
		return &comm.ConnectionError{Op: "open", Port: name, Err: err}
	}
	timeout := t.ReadTimeout
	if timeout <= 0 {
		timeout = DefaultReadTimeout
	}
	if err := port.SetReadTimeout(timeout); err != nil {
		port.Close()
		return &comm.ConnectionError{Op: "open", Port: name, Err: err}
	}
	if err := port.ResetInputBuffer(); err != nil {
		glog.Warningf("%s: reset input buffer: %v", name, err)
	}
	t.port, t.name, t.receiver = port, name, r
	t.stopCh, t.doneCh = make(chan struct{}), make(chan struct{})
	go t.readLoop(port, r, bufferSize(baud), t.stopCh, t.doneCh)
	glog.V(1).Infof("%s opened at %d", name, baud)
	return nil
}

func (t *Transport) closeLocked() error {
	if t.port == nil {
		return nil
	}
	close(t.stopCh)
	err := t.port.Close()
	<-t.doneCh
	glog.V(1).Infof("%s closed", t.name)
	t.port = nil
	if err != nil {
		return &comm.ConnectionError{Op: "close", Port: t.name, Err: err}
	}
	return nil
}

func (t *Transport) readLoop(port Port, r comm.Receiver, size int, stopCh, doneCh chan struct{}) {
	defer close(doneCh)
	r.Opened()
	buf := make([]byte, size)
	for {
		n, err := port.Read(buf)
		select {
		case <-stopCh:
			return
		default:
		}
		if err != nil {
			r.ReadFailed(err)
			return
		}
		if n > 0 {
			r.Received(buf[:n])
		}
	}
}
