package comm

import "errors"

// ErrIncomplete indicates the buffer doesn't hold a whole frame yet.
var ErrIncomplete = errors.New("incomplete packet")

// DefaultCodec frames packets with the CFA533 CRC.
var DefaultCodec = &Codec{Checksum: CRC}

// Codec encodes and decodes frames.
type Codec struct {
	Checksum Checksum
}

func (c *Codec) checksum(data []byte) uint16 {
	if c.Checksum == nil {
		return CRC(data)
	}
	return c.Checksum(data)
}

// Encode returns the frame of a packet.
// The data must not exceed MaxDataLen, the length byte is not checked.
func (c *Codec) Encode(p *Packet) []byte {
	l := len(p.Data)
	b := make([]byte, l+4)
	b[0], b[1] = p.Code, byte(l)
	copy(b[2:], p.Data)
	crc := c.checksum(b[:l+2])
	b[l+2], b[l+3] = byte(crc), byte(crc>>8)
	return b
}

// Decode extracts the first frame from buf.
// It returns the packet and the number of bytes consumed. ErrIncomplete is
// returned if more bytes are needed, leaving buf untouched. A frame failing
// the checks is reported as *MalformedPacketError, whose Skip tells how many
// bytes to drop before decoding again. Bytes after the frame are not examined.
func (c *Codec) Decode(buf []byte) (*Packet, int, error) {
	if len(buf) < 2 {
		return nil, 0, ErrIncomplete
	}
	l := int(buf[1])
	if l > MaxDataLen {
		return nil, 0, &MalformedPacketError{Code: buf[0], Length: l, Skip: 1}
	}
	size := l + 4
	if len(buf) < size {
		return nil, 0, ErrIncomplete
	}
	expected := c.checksum(buf[:l+2])
	actual := uint16(buf[l+2]) | uint16(buf[l+3])<<8
	if expected != actual {
		return nil, 0, &MalformedPacketError{
			Code:     buf[0],
			Length:   l,
			Expected: expected,
			Actual:   actual,
			Skip:     size,
		}
	}
	pkt := &Packet{Code: buf[0], Data: make([]byte, l)}
	copy(pkt.Data, buf[2:l+2])
	return pkt, size, nil
}

// Decode decodes with DefaultCodec.
func Decode(buf []byte) (*Packet, int, error) {
	return DefaultCodec.Decode(buf)
}
