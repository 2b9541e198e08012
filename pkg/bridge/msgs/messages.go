package msgs

import (
	"github.com/golang/protobuf/proto"

	"github.com/robotalks/cfa533.go/pkg/cfa533/comm"
)

// CommandOK is the generic reply indicating success for commands.
type CommandOK struct {
}

// NewCommandOK creates a CommandOK.
func NewCommandOK() *CommandOK {
	return &CommandOK{}
}

// NewMessage implements SerializableMessage.
func (m *CommandOK) NewMessage() SerializableMessage { return &CommandOK{} }

// TypeID implements SerializableMessage.
func (m *CommandOK) TypeID() uint32 { return CommandOKTypeID }

// ProtoMessage implements proto.Message.
func (m *CommandOK) ProtoMessage() {}

// Reset implements proto.Message.
func (m *CommandOK) Reset() { *m = CommandOK{} }

// String implements proto.Message.
func (m *CommandOK) String() string { return proto.CompactTextString(m) }

// CommandErr is the generic message representing command error.
type CommandErr struct {
	Message string `protobuf:"bytes,1,opt,name=message,proto3" json:"message,omitempty"`
}

// NewCommandErr creates a CommandErr from an error.
func NewCommandErr(err error) *CommandErr {
	return NewCommandErrFromMsg(err.Error())
}

// NewCommandErrFromMsg creates a CommandErr.
func NewCommandErrFromMsg(message string) *CommandErr {
	return &CommandErr{Message: message}
}

// NewMessage implements SerializableMessage.
func (m *CommandErr) NewMessage() SerializableMessage { return &CommandErr{} }

// TypeID implements SerializableMessage.
func (m *CommandErr) TypeID() uint32 { return CommandErrTypeID }

// ProtoMessage implements proto.Message.
func (m *CommandErr) ProtoMessage() {}

// Reset implements proto.Message.
func (m *CommandErr) Reset() { *m = CommandErr{} }

// String implements proto.Message.
func (m *CommandErr) String() string { return proto.CompactTextString(m) }

// Error implements error.
func (m *CommandErr) Error() string { return m.Message }

// Clear clears the screen.
type Clear struct {
}

// NewMessage implements SerializableMessage.
func (m *Clear) NewMessage() SerializableMessage { return &Clear{} }

// TypeID implements SerializableMessage.
func (m *Clear) TypeID() uint32 { return ClearTypeID }

// ProtoMessage implements proto.Message.
func (m *Clear) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Clear) Reset() { *m = Clear{} }

// String implements proto.Message.
func (m *Clear) String() string { return proto.CompactTextString(m) }

// SetContents replaces both lines of the screen.
type SetContents struct {
	Line1 string `protobuf:"bytes,1,opt,name=line1,proto3" json:"line1,omitempty"`
	Line2 string `protobuf:"bytes,2,opt,name=line2,proto3" json:"line2,omitempty"`
}

// NewMessage implements SerializableMessage.
func (m *SetContents) NewMessage() SerializableMessage { return &SetContents{} }

// TypeID implements SerializableMessage.
func (m *SetContents) TypeID() uint32 { return SetContentsTypeID }

// ProtoMessage implements proto.Message.
func (m *SetContents) ProtoMessage() {}

// Reset implements proto.Message.
func (m *SetContents) Reset() { *m = SetContents{} }

// String implements proto.Message.
func (m *SetContents) String() string { return proto.CompactTextString(m) }

// SendData writes text at a position.
type SendData struct {
	Col  uint32 `protobuf:"varint,1,opt,name=col,proto3" json:"col,omitempty"`
	Row  uint32 `protobuf:"varint,2,opt,name=row,proto3" json:"row,omitempty"`
	Text string `protobuf:"bytes,3,opt,name=text,proto3" json:"text,omitempty"`
}

// NewMessage implements SerializableMessage.
func (m *SendData) NewMessage() SerializableMessage { return &SendData{} }

// TypeID implements SerializableMessage.
func (m *SendData) TypeID() uint32 { return SendDataTypeID }

// ProtoMessage implements proto.Message.
func (m *SendData) ProtoMessage() {}

// Reset implements proto.Message.
func (m *SendData) Reset() { *m = SendData{} }

// String implements proto.Message.
func (m *SendData) String() string { return proto.CompactTextString(m) }

// SetContrast sets the contrast, 0-200.
type SetContrast struct {
	Contrast uint32 `protobuf:"varint,1,opt,name=contrast,proto3" json:"contrast,omitempty"`
}

// NewMessage implements SerializableMessage.
func (m *SetContrast) NewMessage() SerializableMessage { return &SetContrast{} }

// TypeID implements SerializableMessage.
func (m *SetContrast) TypeID() uint32 { return SetContrastTypeID }

// ProtoMessage implements proto.Message.
func (m *SetContrast) ProtoMessage() {}

// Reset implements proto.Message.
func (m *SetContrast) Reset() { *m = SetContrast{} }

// String implements proto.Message.
func (m *SetContrast) String() string { return proto.CompactTextString(m) }

// SetBacklight sets the LCD and keypad backlight, 0-100 each.
type SetBacklight struct {
	Lcd    uint32 `protobuf:"varint,1,opt,name=lcd,proto3" json:"lcd,omitempty"`
	Keypad uint32 `protobuf:"varint,2,opt,name=keypad,proto3" json:"keypad,omitempty"`
}

// NewMessage implements SerializableMessage.
func (m *SetBacklight) NewMessage() SerializableMessage { return &SetBacklight{} }

// TypeID implements SerializableMessage.
func (m *SetBacklight) TypeID() uint32 { return SetBacklightTypeID }

// ProtoMessage implements proto.Message.
func (m *SetBacklight) ProtoMessage() {}

// Reset implements proto.Message.
func (m *SetBacklight) Reset() { *m = SetBacklight{} }

// String implements proto.Message.
func (m *SetBacklight) String() string { return proto.CompactTextString(m) }

// KeyEvent is an Event message for keypad activity.
type KeyEvent struct {
	Action  uint32 `protobuf:"varint,1,opt,name=action,proto3" json:"action,omitempty"`
	Name    string `protobuf:"bytes,2,opt,name=name,proto3" json:"name,omitempty"`
	Pressed bool   `protobuf:"varint,3,opt,name=pressed,proto3" json:"pressed,omitempty"`
}

// KeyEventFrom creates a KeyEvent from a keypad report.
func KeyEventFrom(action comm.KeypadAction) *KeyEvent {
	return &KeyEvent{
		Action:  uint32(action),
		Name:    action.String(),
		Pressed: action.Pressed(),
	}
}

// KeypadAction returns the reported action.
func (m *KeyEvent) KeypadAction() comm.KeypadAction {
	return comm.KeypadAction(m.Action)
}

// NewMessage implements SerializableMessage.
func (m *KeyEvent) NewMessage() SerializableMessage { return &KeyEvent{} }

// TypeID implements SerializableMessage.
func (m *KeyEvent) TypeID() uint32 { return KeyEventTypeID }

// ProtoMessage implements proto.Message.
func (m *KeyEvent) ProtoMessage() {}

// Reset implements proto.Message.
func (m *KeyEvent) Reset() { *m = KeyEvent{} }

// String implements proto.Message.
func (m *KeyEvent) String() string { return proto.CompactTextString(m) }

// TypeID Groups
const (
	GroupCommand uint32 = 0x00000000
	GroupDisplay uint32 = 0x00010000
	GroupKeypad  uint32 = 0x00020000
)

// TypeIDs
const (
	CommandOKTypeID    uint32 = GroupCommand | TypeIDMaskReply | 0x0000
	CommandErrTypeID   uint32 = GroupCommand | TypeIDMaskReply | 0x0001
	ClearTypeID        uint32 = GroupDisplay | 0x0000
	SetContentsTypeID  uint32 = GroupDisplay | 0x0001
	SendDataTypeID     uint32 = GroupDisplay | 0x0002
	SetContrastTypeID  uint32 = GroupDisplay | 0x0003
	SetBacklightTypeID uint32 = GroupDisplay | 0x0004
	KeyEventTypeID     uint32 = GroupKeypad | TypeIDKindEvent | 0x0000
)
