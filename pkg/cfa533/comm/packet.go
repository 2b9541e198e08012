package comm

import (
	"encoding/hex"
	"fmt"
	"io"
)

// MaxDataLen is the largest payload a packet can carry.
const MaxDataLen = 122

// PacketType is encoded in the top two bits of the type byte.
type PacketType byte

// Packet types.
const (
	TypeCommand  PacketType = 0
	TypeResponse PacketType = 1
	TypeReport   PacketType = 2
	TypeError    PacketType = 3
)

// String implements fmt.Stringer.
func (t PacketType) String() string {
	switch t {
	case TypeCommand:
		return "command"
	case TypeResponse:
		return "response"
	case TypeReport:
		return "report"
	case TypeError:
		return "error"
	}
	return fmt.Sprintf("type(%d)", byte(t))
}

// Code composes the type byte from a packet type and an identifier.
func (t PacketType) Code(id byte) byte {
	return byte(t)<<6 | id&0x3f
}

// Packet contains the information of a parsed packet.
type Packet struct {
	// Code is the type byte, type in bits 7-6, identifier in bits 5-0.
	Code byte
	Data []byte
}

// NewPacket creates a packet of the given type and identifier.
func NewPacket(t PacketType, id byte, data ...byte) *Packet {
	return &Packet{Code: t.Code(id), Data: data}
}

// NewCommand creates a command packet.
func NewCommand(id byte, data ...byte) *Packet {
	return NewPacket(TypeCommand, id, data...)
}

// Type returns the packet type.
func (p *Packet) Type() PacketType {
	return PacketType(p.Code >> 6)
}

// ID returns the command identifier.
func (p *Packet) ID() byte {
	return p.Code & 0x3f
}

// Bytes returns encoded bytes for sending.
func (p *Packet) Bytes() []byte {
	return DefaultCodec.Encode(p)
}

// WriteTo writes encoded bytes. Nothing is written if the data is longer
// than MaxDataLen.
func (p *Packet) WriteTo(w io.Writer) (int64, error) {
	if len(p.Data) > MaxDataLen {
		return 0, fmt.Errorf("packet 0x%02x: %w", p.Code, ErrDataTooLong)
	}
	n, err := w.Write(p.Bytes())
	return int64(n), err
}

// String implements fmt.Stringer.
func (p *Packet) String() string {
	return fmt.Sprintf("%s[%02x] %s", p.Type(), p.ID(), hex.EncodeToString(p.Data))
}
