package comm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang/glog"
	"github.com/jonboulle/clockwork"

	"github.com/robotalks/cfa533.go/internal/syncutil"
)

// DefaultTimeout is how long a command waits for its reply.
const DefaultTimeout = 2 * time.Second

// State is the connection state.
type State int

// Connection states.
const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

type result struct {
	pkt *Packet
	err error
}

type pendingRequest struct {
	id     byte
	result chan result
}

// Conn manages the packet link to one device.
type Conn struct {
	Transport Transport
	Codec     *Codec
	Clock     clockwork.Clock
	Timeout   time.Duration

	state     State
	port      string
	baud      BaudRate
	reports   *reportQueue
	stateLock syncutil.RWMutex

	// single slot semaphore, held for a whole command/reply exchange.
	cmdSem chan struct{}

	pending     *pendingRequest
	pendingLock syncutil.Mutex

	// accumulation buffer, touched by the receive path only.
	buf []byte

	subs subscribers
}

// NewConn creates a disconnected Conn over the transport.
func NewConn(t Transport) *Conn {
	return &Conn{
		Transport: t,
		Codec:     DefaultCodec,
		Clock:     clockwork.NewRealClock(),
		Timeout:   DefaultTimeout,
		cmdSem:    make(chan struct{}, 1),
	}
}

// Dial creates a Conn and connects.
func Dial(t Transport, port string, baud BaudRate) (*Conn, error) {
	c := NewConn(t)
	if err := c.Connect(port, baud); err != nil {
		return nil, err
	}
	return c, nil
}

// State gets the state.
func (c *Conn) State() State {
	c.stateLock.RLock()
	defer c.stateLock.RUnlock()
	return c.state
}

// Port returns the name of the port last connected.
func (c *Conn) Port() string {
	c.stateLock.RLock()
	defer c.stateLock.RUnlock()
	return c.port
}

// BaudRate returns the current line rate.
func (c *Conn) BaudRate() BaudRate {
	c.stateLock.RLock()
	defer c.stateLock.RUnlock()
	return c.baud
}

// Connect opens the port.
func (c *Conn) Connect(port string, baud BaudRate) error {
	if !baud.Valid() {
		return &ConnectionError{Op: "connect", Port: port, Err: fmt.Errorf("unsupported baud rate %d", baud)}
	}
	c.stateLock.Lock()
	if c.state != StateDisconnected {
		c.stateLock.Unlock()
		return &ConnectionError{Op: "connect", Port: port, Err: ErrAlreadyConnected}
	}
	reports := newReportQueue()
	c.state, c.port, c.baud, c.reports = StateConnecting, port, baud, reports
	c.stateLock.Unlock()

	go reports.run(&c.subs)
	if err := c.Transport.Open(port, baud, c); err != nil {
		c.stateLock.Lock()
		if c.reports == reports {
			c.state, c.reports = StateDisconnected, nil
		}
		c.stateLock.Unlock()
		reports.close()
		return connectionError("open", port, err)
	}
	c.stateLock.Lock()
	// Disconnect may have run while the port was opening.
	if c.state != StateConnecting || c.reports != reports {
		abandoned := c.state == StateDisconnected
		c.stateLock.Unlock()
		if abandoned {
			c.Transport.Close()
		}
		return connectionError("connect", port, ErrClosed)
	}
	c.state = StateConnected
	c.stateLock.Unlock()
	glog.Infof("connected %s at %d", port, baud)
	return nil
}

// Disconnect closes the port and fails the pending command, if any.
func (c *Conn) Disconnect() error {
	c.stateLock.Lock()
	wasConnected := c.state != StateDisconnected
	reports := c.reports
	c.state, c.reports = StateDisconnected, nil
	c.stateLock.Unlock()

	err := c.Transport.Close()
	if reports != nil {
		reports.close()
	}
	port := c.Port()
	c.fail(&ConnectionError{Op: "disconnect", Port: port, Err: ErrClosed})
	if wasConnected {
		glog.Infof("disconnected %s", port)
	}
	if err != nil {
		return connectionError("close", port, err)
	}
	return nil
}

// Close implements io.Closer.
func (c *Conn) Close() error {
	return c.Disconnect()
}

// Reconnect reopens the port at a new rate. It waits for the command in
// flight, if any, and blocks other commands until done.
func (c *Conn) Reconnect(ctx context.Context, baud BaudRate) error {
	if !baud.Valid() {
		return &ConnectionError{Op: "reconnect", Port: c.Port(), Err: fmt.Errorf("unsupported baud rate %d", baud)}
	}
	if err := c.lockCommand(ctx); err != nil {
		return err
	}
	defer c.unlockCommand()
	return c.reconnect(baud)
}

// reconnect must be called with the command lock held.
func (c *Conn) reconnect(baud BaudRate) error {
	c.stateLock.Lock()
	if c.state != StateConnected {
		c.stateLock.Unlock()
		return &ConnectionError{Op: "reconnect", Port: c.port, Err: ErrNotConnected}
	}
	c.state = StateConnecting
	port := c.port
	c.stateLock.Unlock()

	if err := c.Transport.Reconnect(baud); err != nil {
		c.stateLock.Lock()
		reports := c.reports
		c.state, c.reports = StateDisconnected, nil
		c.stateLock.Unlock()
		if reports != nil {
			reports.close()
		}
		return connectionError("reconnect", port, err)
	}
	c.stateLock.Lock()
	c.state, c.baud = StateConnected, baud
	c.stateLock.Unlock()
	glog.Infof("reconnected %s at %d", port, baud)
	return nil
}

// Subscribe registers a handler for reports.
// Handlers run in report order on a dedicated goroutine and may send commands.
func (c *Conn) Subscribe(h ReportHandler) *Subscription {
	return c.subs.add(h)
}

// SubscribeFunc registers a func for reports.
func (c *Conn) SubscribeFunc(fn func(ReportEvent)) *Subscription {
	return c.Subscribe(HandleReportFunc(fn))
}

// Unsubscribe removes a handler. It returns false if sub is not registered.
func (c *Conn) Unsubscribe(sub *Subscription) bool {
	return c.subs.remove(sub)
}

// SendReceive sends a command and waits for the reply with the default timeout.
func (c *Conn) SendReceive(ctx context.Context, cmd *Packet) (*Packet, error) {
	return c.SendReceiveTimeout(ctx, cmd, c.timeout())
}

// SendReceiveTimeout sends a command and waits for the reply.
// Only one command is in flight at a time, other callers wait for their turn.
func (c *Conn) SendReceiveTimeout(ctx context.Context, cmd *Packet, timeout time.Duration) (*Packet, error) {
	if err := c.checkSend(cmd); err != nil {
		return nil, err
	}
	if err := c.lockCommand(ctx); err != nil {
		return nil, err
	}
	defer c.unlockCommand()
	return c.exchange(ctx, cmd, timeout)
}

// SendReceiveAndReconnect sends a command which changes the line rate of the
// device and, once acknowledged, reopens the port at baud. No other command
// goes out between the acknowledgement and the reopen.
func (c *Conn) SendReceiveAndReconnect(ctx context.Context, cmd *Packet, baud BaudRate) (*Packet, error) {
	if !baud.Valid() {
		return nil, &ConnectionError{Op: "reconnect", Port: c.Port(), Err: fmt.Errorf("unsupported baud rate %d", baud)}
	}
	if err := c.checkSend(cmd); err != nil {
		return nil, err
	}
	if err := c.lockCommand(ctx); err != nil {
		return nil, err
	}
	defer c.unlockCommand()
	reply, err := c.exchange(ctx, cmd, c.timeout())
	if err != nil {
		return nil, err
	}
	if err := c.reconnect(baud); err != nil {
		return reply, err
	}
	return reply, nil
}

func (c *Conn) checkSend(cmd *Packet) error {
	if len(cmd.Data) > MaxDataLen {
		return fmt.Errorf("command 0x%02x: %w", cmd.ID(), ErrDataTooLong)
	}
	if state := c.State(); state != StateConnected {
		return &ConnectionError{Op: "send", Port: c.Port(), Err: ErrNotConnected}
	}
	return nil
}

// exchange writes cmd and waits for its reply, with the command lock held.
func (c *Conn) exchange(ctx context.Context, cmd *Packet, timeout time.Duration) (*Packet, error) {
	// the connection may have gone while waiting for the lock.
	if state := c.State(); state != StateConnected {
		return nil, &ConnectionError{Op: "send", Port: c.Port(), Err: ErrNotConnected}
	}

	req := &pendingRequest{id: cmd.ID(), result: make(chan result, 1)}
	c.pendingLock.Lock()
	c.pending = req
	c.pendingLock.Unlock()

	glog.V(2).Infof("send %s", cmd)
	if err := c.Transport.Write(c.codec().Encode(cmd)); err != nil {
		c.unregister(req)
		return nil, connectionError("write", c.Port(), err)
	}

	timer := c.clock().NewTimer(timeout)
	defer timer.Stop()
	select {
	case r := <-req.result:
		return r.pkt, r.err
	case <-timer.Chan():
		if c.unregister(req) {
			glog.Warningf("command 0x%02x: no reply in %s", req.id, timeout)
			return nil, &TimeoutError{ID: req.id, After: timeout}
		}
	case <-ctx.Done():
		if c.unregister(req) {
			return nil, ctx.Err()
		}
	}
	// resolved right before the deadline.
	r := <-req.result
	return r.pkt, r.err
}

func (c *Conn) lockCommand(ctx context.Context) error {
	select {
	case c.cmdSem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Conn) unlockCommand() {
	<-c.cmdSem
}

// unregister removes req from the slot, returns false if already resolved.
func (c *Conn) unregister(req *pendingRequest) bool {
	c.pendingLock.Lock()
	defer c.pendingLock.Unlock()
	if c.pending != req {
		return false
	}
	c.pending = nil
	return true
}

// resolve completes the pending request if match accepts it.
func (c *Conn) resolve(match func(*pendingRequest) bool, r result) bool {
	c.pendingLock.Lock()
	req := c.pending
	if req == nil || (match != nil && !match(req)) {
		c.pendingLock.Unlock()
		return false
	}
	c.pending = nil
	c.pendingLock.Unlock()
	req.result <- r
	return true
}

func (c *Conn) resolveID(id byte, r result) bool {
	return c.resolve(func(req *pendingRequest) bool { return req.id == id }, r)
}

func (c *Conn) fail(err error) {
	c.resolve(nil, result{err: err})
}

// Opened implements Receiver.
func (c *Conn) Opened() {
	c.buf = nil
}

// Received implements Receiver.
func (c *Conn) Received(data []byte) {
	glog.V(4).Infof("recv % x", data)
	c.buf = append(c.buf, data...)
	for len(c.buf) > 0 {
		pkt, n, err := c.codec().Decode(c.buf)
		if err == ErrIncomplete {
			break
		}
		var malformed *MalformedPacketError
		if errors.As(err, &malformed) {
			glog.Warningf("drop %d bytes: %v", malformed.Skip, malformed)
			c.buf = c.buf[malformed.Skip:]
			continue
		}
		if err != nil {
			// not produced by Codec, drop everything to be safe.
			glog.Errorf("decode: %v", err)
			c.buf = nil
			break
		}
		c.buf = c.buf[n:]
		c.dispatch(pkt)
	}
	if len(c.buf) == 0 {
		c.buf = nil
	}
}

// ReadFailed implements Receiver.
func (c *Conn) ReadFailed(err error) {
	c.stateLock.Lock()
	port, reports := c.port, c.reports
	c.state, c.reports = StateDisconnected, nil
	c.stateLock.Unlock()
	glog.Errorf("read %s: %v", port, err)
	if reports != nil {
		reports.close()
	}
	c.fail(connectionError("read", port, err))
}

func (c *Conn) dispatch(pkt *Packet) {
	glog.V(2).Infof("recv %s", pkt)
	switch pkt.Type() {
	case TypeResponse:
		if !c.resolveID(pkt.ID(), result{pkt: pkt}) {
			glog.V(1).Infof("ignore stale response %s", pkt)
		}
	case TypeReport:
		c.stateLock.RLock()
		reports := c.reports
		c.stateLock.RUnlock()
		if reports != nil {
			reports.push(newReportEvent(pkt))
		}
	case TypeError:
		if !c.resolveID(pkt.ID(), result{err: &CommandError{ID: pkt.ID()}}) {
			glog.V(1).Infof("ignore stale error %s", pkt)
		}
	case TypeCommand:
		c.rejectUnexpected(pkt, "command packet from device")
	default:
		c.rejectUnexpected(pkt, "unknown packet type")
	}
}

func (c *Conn) rejectUnexpected(pkt *Packet, reason string) {
	if !c.resolve(nil, result{err: &ResponseFormatError{Code: pkt.Code, Reason: reason}}) {
		glog.Warningf("%s: %s", reason, pkt)
	}
}

func (c *Conn) codec() *Codec {
	if c.Codec == nil {
		return DefaultCodec
	}
	return c.Codec
}

func (c *Conn) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

func (c *Conn) clock() clockwork.Clock {
	if c.Clock == nil {
		return clockwork.NewRealClock()
	}
	return c.Clock
}

func connectionError(op, port string, err error) error {
	var connErr *ConnectionError
	if errors.As(err, &connErr) {
		return err
	}
	return &ConnectionError{Op: op, Port: port, Err: err}
}
