package cfa533

// Command identifiers.
const (
	CmdPing                        byte = 0x00
	CmdGetHardwareFirmwareVersion  byte = 0x01
	CmdWriteUserFlash              byte = 0x02
	CmdReadUserFlash               byte = 0x03
	CmdStoreBootState              byte = 0x04
	CmdPowerOperation              byte = 0x05
	CmdClearScreen                 byte = 0x06
	CmdSetLineOne                  byte = 0x07
	CmdSetLineTwo                  byte = 0x08
	CmdSetSpecialCharacterData     byte = 0x09
	CmdReadMemory                  byte = 0x0a
	CmdSetCursorPosition           byte = 0x0b
	CmdSetCursorStyle              byte = 0x0c
	CmdSetContrast                 byte = 0x0d
	CmdSetBacklight                byte = 0x0e
	CmdReadDOWDeviceInformation    byte = 0x12
	CmdSetUpTemperatureReporting   byte = 0x13
	CmdArbitraryDOWTransaction     byte = 0x14
	CmdSetUpLiveTemperatureDisplay byte = 0x15
	CmdSendCommandToController     byte = 0x16
	CmdConfigureKeyReporting       byte = 0x17
	CmdReadKeypadPolled            byte = 0x18
	CmdSetATXSwitchFunctionality   byte = 0x1c
	CmdHostWatchdogReset           byte = 0x1d
	CmdReadReportingATXWatchdog    byte = 0x1e
	CmdSendDataToScreen            byte = 0x1f
	CmdSetBaudRate                 byte = 0x21
	CmdConfigureGPIO               byte = 0x22
	CmdReadGPIOPinLevelsAndState   byte = 0x23
)

// Screen geometry.
const (
	Columns = 16
	Rows    = 2
)

// Argument limits.
const (
	MaxPingLen      = 16
	UserFlashLen    = 16
	SpecialChars    = 8
	SpecialCharLen  = 8
	MaxContrast     = 200
	MaxBrightness   = 100
	MemoryBlockSize = 8
)

// PowerOperation selects what SendPowerOperation does.
type PowerOperation int

// Power operations.
const (
	RebootLCD PowerOperation = iota
	ResetHost
	PowerOffHost
)

var powerOperationCodes = map[PowerOperation][]byte{
	RebootLCD:    {8, 18, 99},
	ResetHost:    {12, 28, 97},
	PowerOffHost: {3, 11, 95},
}

// CursorStyle is the look of the cursor.
type CursorStyle byte

// Cursor styles.
const (
	CursorNone CursorStyle = iota
	CursorBlinkingBlock
	CursorUnderscore
	CursorBlinkingUnderscore
)

// String implements fmt.Stringer.
func (s CursorStyle) String() string {
	switch s {
	case CursorNone:
		return "none"
	case CursorBlinkingBlock:
		return "blinking-block"
	case CursorUnderscore:
		return "underscore"
	case CursorBlinkingUnderscore:
		return "blinking-underscore"
	}
	return "unknown"
}
