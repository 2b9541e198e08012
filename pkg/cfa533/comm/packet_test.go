package comm

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// bitwise CRC-16/X-25.
func refCRC(data []byte) uint16 {
	crc := uint16(0xffff)
	for _, b := range data {
		crc ^= uint16(b)
		for i := 0; i < 8; i++ {
			if crc&1 != 0 {
				crc = crc>>1 ^ 0x8408
			} else {
				crc >>= 1
			}
		}
	}
	return ^crc
}

func frame(code byte, data ...byte) []byte {
	b := append([]byte{code, byte(len(data))}, data...)
	crc := refCRC(b)
	return append(b, byte(crc), byte(crc>>8))
}

func TestCRC(t *testing.T) {
	require.Equal(t, uint16(0x906e), CRC([]byte("123456789")))
	for _, data := range [][]byte{nil, {0}, {0x00, 0x02, 'A', 'B'}, bytes.Repeat([]byte{0x5a}, 124)} {
		require.Equal(t, refCRC(data), CRC(data))
	}
}

func TestPacket(t *testing.T) {
	testCases := []struct {
		name   string
		packet *Packet
		expect []byte
	}{
		{"ping", NewCommand(0x00, 'A', 'B'), frame(0x00, 'A', 'B')},
		{"no data", NewCommand(0x06), frame(0x06)},
		{"response", NewPacket(TypeResponse, 0x00, 'A', 'B'), frame(0x40, 'A', 'B')},
		{"report", NewPacket(TypeReport, ReportKeyActivity, byte(KeyEnterPress)), frame(0x80, 5)},
		{"error", NewPacket(TypeError, 0x06), frame(0xc6)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expect, tc.packet.Bytes())
			var buf bytes.Buffer
			n, err := tc.packet.WriteTo(&buf)
			require.NoError(t, err)
			require.Equal(t, tc.expect, buf.Bytes())
			require.Equal(t, int64(len(tc.expect)), n)
		})
	}
}

func TestPacketTypeAndID(t *testing.T) {
	pkt := &Packet{Code: 0xc6}
	require.Equal(t, TypeError, pkt.Type())
	require.Equal(t, byte(0x06), pkt.ID())
	require.Equal(t, byte(0x86), TypeReport.Code(0x46))
	require.Equal(t, "response", TypeResponse.String())
}

func TestPingFrameLayout(t *testing.T) {
	b := NewCommand(0x00, 'A', 'B').Bytes()
	crc := refCRC([]byte{0x00, 0x02, 0x41, 0x42})
	require.Equal(t, []byte{0x00, 0x02, 0x41, 0x42, byte(crc), byte(crc >> 8)}, b)
}

func TestPacketWriteToDataTooLong(t *testing.T) {
	var buf bytes.Buffer
	n, err := NewCommand(0x1f, make([]byte, MaxDataLen+1)...).WriteTo(&buf)
	require.True(t, errors.Is(err, ErrDataTooLong))
	require.Zero(t, n)
	require.Zero(t, buf.Len())

	n, err = NewCommand(0x1f, make([]byte, MaxDataLen)...).WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(MaxDataLen+4), n)
	require.Equal(t, byte(MaxDataLen), buf.Bytes()[1])
}
