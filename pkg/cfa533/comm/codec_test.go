package comm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	ping := frame(0x40, 'A', 'B')
	bad := append([]byte{}, ping...)
	bad[len(bad)-1] ^= 0xff

	testCases := []struct {
		name     string
		input    []byte
		packet   *Packet
		consumed int
		skip     int
	}{
		{"empty", nil, nil, 0, 0},
		{"type only", ping[:1], nil, 0, 0},
		{"header only", ping[:2], nil, 0, 0},
		{"missing crc", ping[:5], nil, 0, 0},
		{"whole", ping, &Packet{Code: 0x40, Data: []byte{'A', 'B'}}, 6, 0},
		{"trailing", append(append([]byte{}, ping...), 0x80, 0x01), &Packet{Code: 0x40, Data: []byte{'A', 'B'}}, 6, 0},
		{"empty payload", frame(0x46), &Packet{Code: 0x46, Data: []byte{}}, 4, 0},
		{"crc mismatch", bad, nil, 0, 6},
		{"length too large", []byte{0x40, 123, 0, 0}, nil, 0, 1},
		{"length too large header only", []byte{0x40, 0xff}, nil, 0, 1},
		{"length too large full frame", append([]byte{0x40, 123}, make([]byte, 125)...), nil, 0, 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pkt, n, err := Decode(tc.input)
			require.Equal(t, tc.consumed, n)
			switch {
			case tc.packet != nil:
				require.NoError(t, err)
				require.Equal(t, tc.packet, pkt)
			case tc.skip > 0:
				var malformed *MalformedPacketError
				require.True(t, errors.As(err, &malformed))
				require.Equal(t, tc.skip, malformed.Skip)
				require.Nil(t, pkt)
			default:
				require.Equal(t, ErrIncomplete, err)
				require.Nil(t, pkt)
			}
		})
	}
}

func TestDecodeMalformedDetails(t *testing.T) {
	b := frame(0x40, 'A', 'B')
	actual := uint16(b[4]) | uint16(b[5])<<8
	b[4] ^= 0x01
	_, _, err := Decode(b)
	var malformed *MalformedPacketError
	require.True(t, errors.As(err, &malformed))
	require.Equal(t, byte(0x40), malformed.Code)
	require.Equal(t, actual, malformed.Expected)
	require.Equal(t, actual^0x01, malformed.Actual)
	require.Contains(t, malformed.Error(), "crc mismatch")
}

func TestDecodeOversizedLengthNotIncomplete(t *testing.T) {
	// an impossible length is rejected from the header alone.
	_, n, err := Decode([]byte{0x80, MaxDataLen + 1})
	require.Zero(t, n)
	require.NotEqual(t, ErrIncomplete, err)
	var malformed *MalformedPacketError
	require.True(t, errors.As(err, &malformed))
	require.Equal(t, MaxDataLen+1, malformed.Length)
	require.Equal(t, byte(0x80), malformed.Code)
	require.Equal(t, 1, malformed.Skip)
}

func TestCodecChecksumPluggable(t *testing.T) {
	sum := func(data []byte) uint16 {
		var s uint16
		for _, b := range data {
			s += uint16(b)
		}
		return s
	}
	codec := &Codec{Checksum: sum}
	b := codec.Encode(NewCommand(0x00, 1, 2))
	require.Equal(t, []byte{0x00, 0x02, 1, 2, 5, 0}, b)
	pkt, n, err := codec.Decode(b)
	require.NoError(t, err)
	require.Equal(t, 6, n)
	require.Equal(t, []byte{1, 2}, pkt.Data)

	_, _, err = Decode(b)
	require.Error(t, err)
}
