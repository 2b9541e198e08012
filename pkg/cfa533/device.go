// Package cfa533 drives a Crystalfontz CFA533 character LCD module.
package cfa533

import (
	"bytes"
	"context"
	"fmt"

	"github.com/golang/glog"

	"github.com/robotalks/cfa533.go/pkg/cfa533/comm"
	"github.com/robotalks/cfa533.go/pkg/cfa533/serial"
)

// Link is the packet link driven by Device. *comm.Conn implements it.
type Link interface {
	SendReceive(ctx context.Context, cmd *comm.Packet) (*comm.Packet, error)
	SendReceiveAndReconnect(ctx context.Context, cmd *comm.Packet, baud comm.BaudRate) (*comm.Packet, error)
	Subscribe(h comm.ReportHandler) *comm.Subscription
	Unsubscribe(sub *comm.Subscription) bool
	Disconnect() error
}

// Device provides the command set of the module.
type Device struct {
	link Link
}

// New creates a Device over an established link.
func New(link Link) *Device {
	return &Device{link: link}
}

// Open connects to the module on a serial port.
func Open(port string, baud comm.BaudRate) (*Device, error) {
	conn, err := comm.Dial(serial.New(), port, baud)
	if err != nil {
		return nil, err
	}
	return New(conn), nil
}

// Link returns the underlying link.
func (d *Device) Link() Link {
	return d.link
}

// Close disconnects from the module.
func (d *Device) Close() error {
	return d.link.Disconnect()
}

// SubscribeKeys calls fn on each keypad event.
func (d *Device) SubscribeKeys(fn func(comm.KeypadAction)) *comm.Subscription {
	return d.link.Subscribe(comm.HandleReportFunc(func(evt comm.ReportEvent) {
		if evt.IsKeyActivity() {
			fn(evt.Action)
		}
	}))
}

// Unsubscribe removes a subscription.
func (d *Device) Unsubscribe(sub *comm.Subscription) {
	d.link.Unsubscribe(sub)
}

func (d *Device) exec(ctx context.Context, id byte, data ...byte) (*comm.Packet, error) {
	return d.link.SendReceive(ctx, comm.NewCommand(id, data...))
}

func (d *Device) execExpect(ctx context.Context, id byte, size int, data ...byte) ([]byte, error) {
	pkt, err := d.exec(ctx, id, data...)
	if err != nil {
		return nil, err
	}
	if len(pkt.Data) != size {
		return nil, &comm.ResponseFormatError{
			Code:   pkt.Code,
			Reason: fmt.Sprintf("expect %d bytes, got %d", size, len(pkt.Data)),
		}
	}
	return pkt.Data, nil
}

// Ping sends data and verifies the module echoes it back.
func (d *Device) Ping(ctx context.Context, data []byte) error {
	if len(data) > MaxPingLen {
		return &ArgumentError{Name: "ping data", Value: len(data), Reason: fmt.Sprintf("longer than %d bytes", MaxPingLen)}
	}
	pkt, err := d.exec(ctx, CmdPing, data...)
	if err != nil {
		return err
	}
	if !bytes.Equal(pkt.Data, data) {
		return &comm.ResponseFormatError{Code: pkt.Code, Reason: "ping echo mismatch"}
	}
	return nil
}

// Version returns the hardware and firmware versions, e.g. "CFA533:h1.4,k1.9".
func (d *Device) Version(ctx context.Context) (string, error) {
	pkt, err := d.exec(ctx, CmdGetHardwareFirmwareVersion)
	if err != nil {
		return "", err
	}
	return string(bytes.TrimRight(pkt.Data, "\x00")), nil
}

// WriteUserFlash stores 16 bytes in the user area. Extra bytes are ignored
// and short data is padded with zeros.
func (d *Device) WriteUserFlash(ctx context.Context, data []byte) error {
	buf := make([]byte, UserFlashLen)
	copy(buf, data)
	_, err := d.exec(ctx, CmdWriteUserFlash, buf...)
	return err
}

// ReadUserFlash reads the 16 bytes of the user area.
func (d *Device) ReadUserFlash(ctx context.Context) ([]byte, error) {
	return d.execExpect(ctx, CmdReadUserFlash, UserFlashLen)
}

// StoreBootState saves the current state as the power-on state.
func (d *Device) StoreBootState(ctx context.Context) error {
	_, err := d.exec(ctx, CmdStoreBootState)
	return err
}

// SendPowerOperation reboots the module or, when wired, resets or powers off the host.
func (d *Device) SendPowerOperation(ctx context.Context, op PowerOperation) error {
	code, ok := powerOperationCodes[op]
	if !ok {
		return &ArgumentError{Name: "power operation", Value: op, Reason: "unknown"}
	}
	_, err := d.exec(ctx, CmdPowerOperation, code...)
	return err
}

// Reboot reboots the module.
func (d *Device) Reboot(ctx context.Context) error {
	return d.SendPowerOperation(ctx, RebootLCD)
}

// Clear clears the screen.
func (d *Device) Clear(ctx context.Context) error {
	_, err := d.exec(ctx, CmdClearScreen)
	return err
}

// SetLineOne sets the first line. Text is truncated or padded with spaces to 16 columns.
func (d *Device) SetLineOne(ctx context.Context, text string) error {
	_, err := d.exec(ctx, CmdSetLineOne, Line(text)...)
	return err
}

// SetLineTwo sets the second line.
func (d *Device) SetLineTwo(ctx context.Context, text string) error {
	_, err := d.exec(ctx, CmdSetLineTwo, Line(text)...)
	return err
}

// SetContents sets both lines.
func (d *Device) SetContents(ctx context.Context, lineOne, lineTwo string) error {
	if err := d.sendData(ctx, 0, 0, Line(lineOne)); err != nil {
		return err
	}
	return d.sendData(ctx, 0, 1, Line(lineTwo))
}

// SendData writes text at a position. Characters beyond the right edge are dropped.
func (d *Device) SendData(ctx context.Context, col, row int, text string) error {
	if err := checkPosition(col, row); err != nil {
		return err
	}
	return d.sendData(ctx, col, row, Text(text, Columns-col))
}

func (d *Device) sendData(ctx context.Context, col, row int, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	_, err := d.exec(ctx, CmdSendDataToScreen, append([]byte{byte(col), byte(row)}, data...)...)
	return err
}

// SetSpecialCharacter defines the bitmap of character index 0-7.
// Each byte is one row, the lower 6 bits are pixels.
func (d *Device) SetSpecialCharacter(ctx context.Context, index int, bitmap []byte) error {
	if err := checkRange("character index", index, 0, SpecialChars-1); err != nil {
		return err
	}
	if len(bitmap) != SpecialCharLen {
		return &ArgumentError{Name: "bitmap size", Value: len(bitmap), Reason: fmt.Sprintf("must be %d", SpecialCharLen)}
	}
	_, err := d.exec(ctx, CmdSetSpecialCharacterData, append([]byte{byte(index)}, bitmap...)...)
	return err
}

// ReadMemory reads 8 bytes of CGRAM (0x40-0x7f) or DDRAM (0x80-0x8f, 0xc0-0xcf).
func (d *Device) ReadMemory(ctx context.Context, addr byte) ([]byte, error) {
	data, err := d.execExpect(ctx, CmdReadMemory, MemoryBlockSize+1, addr)
	if err != nil {
		return nil, err
	}
	if data[0] != addr {
		return nil, &comm.ResponseFormatError{
			Code:   comm.TypeResponse.Code(CmdReadMemory),
			Reason: fmt.Sprintf("address 0x%02x returned for 0x%02x", data[0], addr),
		}
	}
	return data[1:], nil
}

// SetCursorPosition moves the cursor.
func (d *Device) SetCursorPosition(ctx context.Context, col, row int) error {
	if err := checkPosition(col, row); err != nil {
		return err
	}
	_, err := d.exec(ctx, CmdSetCursorPosition, byte(col), byte(row))
	return err
}

// SetCursorStyle changes the cursor look.
func (d *Device) SetCursorStyle(ctx context.Context, style CursorStyle) error {
	if err := checkRange("cursor style", int(style), int(CursorNone), int(CursorBlinkingUnderscore)); err != nil {
		return err
	}
	_, err := d.exec(ctx, CmdSetCursorStyle, byte(style))
	return err
}

// SetContrast sets the contrast, 0-200. Useful values are within 0-50.
func (d *Device) SetContrast(ctx context.Context, contrast int) error {
	if err := checkRange("contrast", contrast, 0, MaxContrast); err != nil {
		return err
	}
	_, err := d.exec(ctx, CmdSetContrast, byte(contrast))
	return err
}

// SetBacklight sets the screen and keypad brightness, 0-100 each.
func (d *Device) SetBacklight(ctx context.Context, lcd, keypad int) error {
	if err := checkRange("lcd brightness", lcd, 0, MaxBrightness); err != nil {
		return err
	}
	if err := checkRange("keypad brightness", keypad, 0, MaxBrightness); err != nil {
		return err
	}
	_, err := d.exec(ctx, CmdSetBacklight, byte(lcd), byte(keypad))
	return err
}

// ConfigureKeyReporting selects which key presses and releases are reported.
func (d *Device) ConfigureKeyReporting(ctx context.Context, press, release comm.KeyFlags) error {
	if press&^comm.KeyAll != 0 {
		return &ArgumentError{Name: "press mask", Value: press, Reason: "unknown keys"}
	}
	if release&^comm.KeyAll != 0 {
		return &ArgumentError{Name: "release mask", Value: release, Reason: "unknown keys"}
	}
	_, err := d.exec(ctx, CmdConfigureKeyReporting, byte(press), byte(release))
	return err
}

// KeypadState is the result of a keypad poll.
type KeypadState struct {
	Pressed       comm.KeyFlags
	PressedSince  comm.KeyFlags
	ReleasedSince comm.KeyFlags
}

// String implements fmt.Stringer.
func (s KeypadState) String() string {
	return fmt.Sprintf("pressed=%02x pressed-since=%02x released-since=%02x",
		byte(s.Pressed), byte(s.PressedSince), byte(s.ReleasedSince))
}

// ReadKeypadPolled reads the keypad state.
func (d *Device) ReadKeypadPolled(ctx context.Context) (KeypadState, error) {
	data, err := d.execExpect(ctx, CmdReadKeypadPolled, 3)
	if err != nil {
		return KeypadState{}, err
	}
	return KeypadState{
		Pressed:       comm.KeyFlags(data[0]),
		PressedSince:  comm.KeyFlags(data[1]),
		ReleasedSince: comm.KeyFlags(data[2]),
	}, nil
}

// SetBaudRate switches the line rate. The module acknowledges at the old
// rate, then the link reconnects at the new one before any other command
// is sent.
func (d *Device) SetBaudRate(ctx context.Context, baud comm.BaudRate) error {
	var code byte
	switch baud {
	case comm.Baud19200:
		code = 0
	case comm.Baud115200:
		code = 1
	default:
		return &ArgumentError{Name: "baud rate", Value: int(baud), Reason: "must be 19200 or 115200"}
	}
	if _, err := d.link.SendReceiveAndReconnect(ctx, comm.NewCommand(CmdSetBaudRate, code), baud); err != nil {
		return err
	}
	glog.V(1).Infof("baud rate changed to %d", baud)
	return nil
}

// ReadDOWDeviceInformation is not supported.
func (d *Device) ReadDOWDeviceInformation(ctx context.Context, index int) ([]byte, error) {
	return nil, unsupported(CmdReadDOWDeviceInformation)
}

// SetUpTemperatureReporting is not supported.
func (d *Device) SetUpTemperatureReporting(ctx context.Context, data []byte) error {
	return unsupported(CmdSetUpTemperatureReporting)
}

// ArbitraryDOWTransaction is not supported.
func (d *Device) ArbitraryDOWTransaction(ctx context.Context, index int, data []byte) ([]byte, error) {
	return nil, unsupported(CmdArbitraryDOWTransaction)
}

// SetUpLiveTemperatureDisplay is not supported.
func (d *Device) SetUpLiveTemperatureDisplay(ctx context.Context, data []byte) error {
	return unsupported(CmdSetUpLiveTemperatureDisplay)
}

// SendCommandToController is not supported.
func (d *Device) SendCommandToController(ctx context.Context, location, data byte) error {
	return unsupported(CmdSendCommandToController)
}

// SetATXSwitchFunctionality is not supported.
func (d *Device) SetATXSwitchFunctionality(ctx context.Context, data []byte) error {
	return unsupported(CmdSetATXSwitchFunctionality)
}

// HostWatchdogReset is not supported.
func (d *Device) HostWatchdogReset(ctx context.Context, timeout byte) error {
	return unsupported(CmdHostWatchdogReset)
}

// ReadReportingATXWatchdog is not supported.
func (d *Device) ReadReportingATXWatchdog(ctx context.Context) ([]byte, error) {
	return nil, unsupported(CmdReadReportingATXWatchdog)
}

// ConfigureGPIO is not supported.
func (d *Device) ConfigureGPIO(ctx context.Context, data []byte) error {
	return unsupported(CmdConfigureGPIO)
}

// ReadGPIOPinLevelsAndState is not supported.
func (d *Device) ReadGPIOPinLevelsAndState(ctx context.Context, index int) ([]byte, error) {
	return nil, unsupported(CmdReadGPIOPinLevelsAndState)
}

func checkPosition(col, row int) error {
	if err := checkRange("column", col, 0, Columns-1); err != nil {
		return err
	}
	return checkRange("row", row, 0, Rows-1)
}
