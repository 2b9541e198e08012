package cfa533

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/cfa533.go/pkg/cfa533/comm"
)

type fakeLink struct {
	lock       sync.Mutex
	sent       []*comm.Packet
	replies    map[byte][]byte
	errs       map[byte]error
	reconnects []comm.BaudRate
	handlers   []comm.ReportHandler
}

func newFakeLink() *fakeLink {
	return &fakeLink{replies: make(map[byte][]byte), errs: make(map[byte]error)}
}

func (l *fakeLink) SendReceive(ctx context.Context, cmd *comm.Packet) (*comm.Packet, error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.sent = append(l.sent, cmd)
	if err := l.errs[cmd.ID()]; err != nil {
		return nil, err
	}
	data, ok := l.replies[cmd.ID()]
	if !ok {
		data = cmd.Data
		if cmd.ID() != CmdPing {
			data = nil
		}
	}
	return comm.NewPacket(comm.TypeResponse, cmd.ID(), data...), nil
}

func (l *fakeLink) SendReceiveAndReconnect(ctx context.Context, cmd *comm.Packet, baud comm.BaudRate) (*comm.Packet, error) {
	reply, err := l.SendReceive(ctx, cmd)
	if err != nil {
		return nil, err
	}
	l.lock.Lock()
	defer l.lock.Unlock()
	l.reconnects = append(l.reconnects, baud)
	return reply, nil
}

func (l *fakeLink) Subscribe(h comm.ReportHandler) *comm.Subscription {
	l.handlers = append(l.handlers, h)
	return &comm.Subscription{}
}

func (l *fakeLink) Unsubscribe(sub *comm.Subscription) bool {
	return true
}

func (l *fakeLink) Disconnect() error {
	return nil
}

func (l *fakeLink) last() *comm.Packet {
	l.lock.Lock()
	defer l.lock.Unlock()
	if len(l.sent) == 0 {
		return nil
	}
	return l.sent[len(l.sent)-1]
}

func TestDeviceCommands(t *testing.T) {
	ctx := context.Background()
	testCases := []struct {
		name string
		call func(*Device) error
		id   byte
		data []byte
	}{
		{"ping", func(d *Device) error { return d.Ping(ctx, []byte("AB")) }, CmdPing, []byte("AB")},
		{"write flash", func(d *Device) error { return d.WriteUserFlash(ctx, []byte{1, 2}) }, CmdWriteUserFlash,
			[]byte{1, 2, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}},
		{"write flash truncated", func(d *Device) error { return d.WriteUserFlash(ctx, []byte("0123456789abcdefXYZ")) }, CmdWriteUserFlash,
			[]byte("0123456789abcdef")},
		{"boot state", func(d *Device) error { return d.StoreBootState(ctx) }, CmdStoreBootState, nil},
		{"reboot", func(d *Device) error { return d.Reboot(ctx) }, CmdPowerOperation, []byte{8, 18, 99}},
		{"power off host", func(d *Device) error { return d.SendPowerOperation(ctx, PowerOffHost) }, CmdPowerOperation, []byte{3, 11, 95}},
		{"clear", func(d *Device) error { return d.Clear(ctx) }, CmdClearScreen, nil},
		{"line one", func(d *Device) error { return d.SetLineOne(ctx, "hello") }, CmdSetLineOne, []byte("hello           ")},
		{"line two", func(d *Device) error { return d.SetLineTwo(ctx, "0123456789abcdefXYZ") }, CmdSetLineTwo, []byte("0123456789abcdef")},
		{"special char", func(d *Device) error { return d.SetSpecialCharacter(ctx, 7, []byte{1, 2, 3, 4, 5, 6, 7, 8}) },
			CmdSetSpecialCharacterData, []byte{7, 1, 2, 3, 4, 5, 6, 7, 8}},
		{"cursor position", func(d *Device) error { return d.SetCursorPosition(ctx, 15, 1) }, CmdSetCursorPosition, []byte{15, 1}},
		{"cursor style", func(d *Device) error { return d.SetCursorStyle(ctx, CursorUnderscore) }, CmdSetCursorStyle, []byte{2}},
		{"contrast", func(d *Device) error { return d.SetContrast(ctx, 200) }, CmdSetContrast, []byte{200}},
		{"backlight", func(d *Device) error { return d.SetBacklight(ctx, 100, 0) }, CmdSetBacklight, []byte{100, 0}},
		{"key reporting", func(d *Device) error { return d.ConfigureKeyReporting(ctx, comm.KeyAll, comm.KeyUp) },
			CmdConfigureKeyReporting, []byte{0x3f, 0x01}},
		{"send data", func(d *Device) error { return d.SendData(ctx, 12, 1, "abcdef") }, CmdSendDataToScreen, []byte{12, 1, 'a', 'b', 'c', 'd'}},
		{"send special", func(d *Device) error { return d.SendData(ctx, 0, 0, "\x00\x00") }, CmdSendDataToScreen, []byte{0, 0, 0, 0}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			link := newFakeLink()
			require.NoError(t, tc.call(New(link)))
			pkt := link.last()
			require.NotNil(t, pkt)
			require.Equal(t, comm.TypeCommand, pkt.Type())
			require.Equal(t, tc.id, pkt.ID())
			if len(tc.data) == 0 {
				require.Empty(t, pkt.Data)
			} else {
				require.Equal(t, tc.data, pkt.Data)
			}
		})
	}
}

func TestDeviceArgumentErrors(t *testing.T) {
	ctx := context.Background()
	testCases := []struct {
		name string
		call func(*Device) error
	}{
		{"ping too long", func(d *Device) error { return d.Ping(ctx, make([]byte, 17)) }},
		{"char index", func(d *Device) error { return d.SetSpecialCharacter(ctx, 8, make([]byte, 8)) }},
		{"char bitmap", func(d *Device) error { return d.SetSpecialCharacter(ctx, 0, make([]byte, 7)) }},
		{"column", func(d *Device) error { return d.SetCursorPosition(ctx, 16, 0) }},
		{"row", func(d *Device) error { return d.SetCursorPosition(ctx, 0, 2) }},
		{"negative column", func(d *Device) error { return d.SendData(ctx, -1, 0, "x") }},
		{"cursor style", func(d *Device) error { return d.SetCursorStyle(ctx, CursorStyle(4)) }},
		{"contrast", func(d *Device) error { return d.SetContrast(ctx, 201) }},
		{"lcd brightness", func(d *Device) error { return d.SetBacklight(ctx, 101, 0) }},
		{"keypad brightness", func(d *Device) error { return d.SetBacklight(ctx, 0, -1) }},
		{"press mask", func(d *Device) error { return d.ConfigureKeyReporting(ctx, 0x40, 0) }},
		{"power operation", func(d *Device) error { return d.SendPowerOperation(ctx, PowerOperation(9)) }},
		{"baud rate", func(d *Device) error { return d.SetBaudRate(ctx, comm.Baud9600) }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			link := newFakeLink()
			err := tc.call(New(link))
			var argErr *ArgumentError
			require.True(t, errors.As(err, &argErr), "got %v", err)
			require.Nil(t, link.last())
		})
	}
}

func TestDeviceUnsupported(t *testing.T) {
	ctx := context.Background()
	d := New(newFakeLink())
	_, err := d.ReadDOWDeviceInformation(ctx, 0)
	require.True(t, errors.Is(err, ErrUnsupported))
	require.True(t, errors.Is(d.SetUpTemperatureReporting(ctx, nil), ErrUnsupported))
	_, err = d.ArbitraryDOWTransaction(ctx, 0, nil)
	require.True(t, errors.Is(err, ErrUnsupported))
	require.True(t, errors.Is(d.SetUpLiveTemperatureDisplay(ctx, nil), ErrUnsupported))
	require.True(t, errors.Is(d.SendCommandToController(ctx, 0, 0), ErrUnsupported))
	require.True(t, errors.Is(d.SetATXSwitchFunctionality(ctx, nil), ErrUnsupported))
	require.True(t, errors.Is(d.HostWatchdogReset(ctx, 0), ErrUnsupported))
	_, err = d.ReadReportingATXWatchdog(ctx)
	require.True(t, errors.Is(err, ErrUnsupported))
	require.True(t, errors.Is(d.ConfigureGPIO(ctx, nil), ErrUnsupported))
	_, err = d.ReadGPIOPinLevelsAndState(ctx, 0)
	require.True(t, errors.Is(err, ErrUnsupported))
	require.Contains(t, err.Error(), "0x23")
}

func TestDevicePingMismatch(t *testing.T) {
	link := newFakeLink()
	link.replies[CmdPing] = []byte("AC")
	err := New(link).Ping(context.Background(), []byte("AB"))
	var formatErr *comm.ResponseFormatError
	require.True(t, errors.As(err, &formatErr))
}

func TestDeviceQueries(t *testing.T) {
	ctx := context.Background()
	link := newFakeLink()
	link.replies[CmdGetHardwareFirmwareVersion] = []byte("CFA533:h1.4,k1.9")
	link.replies[CmdReadUserFlash] = []byte("0123456789abcdef")
	link.replies[CmdReadMemory] = []byte{0x80, 'H', 'e', 'l', 'l', 'o', ' ', ' ', ' '}
	link.replies[CmdReadKeypadPolled] = []byte{0x01, 0x03, 0x02}
	d := New(link)

	version, err := d.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, "CFA533:h1.4,k1.9", version)

	flash, err := d.ReadUserFlash(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("0123456789abcdef"), flash)

	mem, err := d.ReadMemory(ctx, 0x80)
	require.NoError(t, err)
	assert.Equal(t, []byte("Hello   "), mem)
	_, err = d.ReadMemory(ctx, 0xc0)
	require.Error(t, err)

	state, err := d.ReadKeypadPolled(ctx)
	require.NoError(t, err)
	assert.Equal(t, KeypadState{Pressed: comm.KeyUp, PressedSince: comm.KeyUp | comm.KeyEnter, ReleasedSince: comm.KeyEnter}, state)

	link.replies[CmdReadUserFlash] = []byte{1}
	_, err = d.ReadUserFlash(ctx)
	var formatErr *comm.ResponseFormatError
	require.True(t, errors.As(err, &formatErr))
}

func TestDeviceSetContents(t *testing.T) {
	link := newFakeLink()
	require.NoError(t, New(link).SetContents(context.Background(), "Version:", "2.1.3"))
	require.Len(t, link.sent, 2)
	assert.Equal(t, append([]byte{0, 0}, []byte("Version:        ")...), link.sent[0].Data)
	assert.Equal(t, append([]byte{0, 1}, []byte("2.1.3           ")...), link.sent[1].Data)
}

func TestDeviceSetBaudRate(t *testing.T) {
	link := newFakeLink()
	require.NoError(t, New(link).SetBaudRate(context.Background(), comm.Baud115200))
	assert.Equal(t, []byte{1}, link.last().Data)
	assert.Equal(t, []comm.BaudRate{comm.Baud115200}, link.reconnects)

	link = newFakeLink()
	link.errs[CmdSetBaudRate] = &comm.CommandError{ID: CmdSetBaudRate}
	require.Error(t, New(link).SetBaudRate(context.Background(), comm.Baud19200))
	assert.Empty(t, link.reconnects)
}

func TestDeviceSubscribeKeys(t *testing.T) {
	link := newFakeLink()
	var actions []comm.KeypadAction
	New(link).SubscribeKeys(func(a comm.KeypadAction) { actions = append(actions, a) })
	require.Len(t, link.handlers, 1)
	link.handlers[0].HandleReport(comm.ReportEvent{ID: comm.ReportKeyActivity, Action: comm.KeyDownPress})
	link.handlers[0].HandleReport(comm.ReportEvent{ID: comm.ReportTemperature, Data: []byte{0, 1, 2}})
	assert.Equal(t, []comm.KeypadAction{comm.KeyDownPress}, actions)
}

func TestText(t *testing.T) {
	assert.Equal(t, []byte("abc"), Text("abc", 16))
	assert.Equal(t, []byte("ab"), Text("abc", 2))
	assert.Equal(t, []byte{'a', '?', 0xe9}, Text("a中é", 16))
	assert.Equal(t, []byte("x               "), Line("x"))
	assert.Len(t, Line("0123456789abcdefXYZ"), Columns)
}
