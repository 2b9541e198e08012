package comm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func drawPacket(t *rapid.T, label string) *Packet {
	return &Packet{
		Code: rapid.Byte().Draw(t, label+".code"),
		Data: rapid.SliceOfN(rapid.Byte(), 0, MaxDataLen).Draw(t, label+".data"),
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		pkt := drawPacket(t, "packet")
		b := pkt.Bytes()
		require.Len(t, b, len(pkt.Data)+4)

		decoded, n, err := Decode(b)
		require.NoError(t, err)
		require.Equal(t, len(b), n)
		require.Equal(t, pkt.Code, decoded.Code)
		require.Equal(t, pkt.Type(), decoded.Type())
		require.Equal(t, pkt.ID(), decoded.ID())
		require.Equal(t, len(pkt.Data), len(decoded.Data))
		for i := range pkt.Data {
			require.Equal(t, pkt.Data[i], decoded.Data[i])
		}
	})
}

func TestDecodeBitFlip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		pkt := drawPacket(t, "packet")
		b := pkt.Bytes()
		pos := rapid.IntRange(0, len(b)-1).Draw(t, "pos")
		bit := rapid.IntRange(0, 7).Draw(t, "bit")
		b[pos] ^= 1 << uint(bit)

		decoded, _, err := Decode(b)
		if pos != 1 {
			var malformed *MalformedPacketError
			require.True(t, errors.As(err, &malformed), "flip at %d.%d: %v", pos, bit, err)
			return
		}
		// a changed length either waits for more bytes or fails.
		if err == nil {
			require.NotEqual(t, len(pkt.Data), len(decoded.Data))
		}
	})
}

func TestDecodePartialDelivery(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		packets := rapid.SliceOfN(rapid.Custom(func(t *rapid.T) *Packet {
			return drawPacket(t, "packet")
		}), 1, 8).Draw(t, "packets")
		var stream []byte
		for _, pkt := range packets {
			stream = append(stream, pkt.Bytes()...)
		}

		var (
			buf     []byte
			decoded []*Packet
		)
		for len(stream) > 0 {
			size := rapid.IntRange(1, len(stream)).Draw(t, "chunk")
			buf, stream = append(buf, stream[:size]...), stream[size:]
			for {
				pkt, n, err := Decode(buf)
				if err == ErrIncomplete {
					break
				}
				require.NoError(t, err)
				buf = buf[n:]
				decoded = append(decoded, pkt)
			}
		}
		require.Empty(t, buf)
		require.Len(t, decoded, len(packets))
		for i, pkt := range packets {
			require.Equal(t, pkt.Code, decoded[i].Code)
			require.Equal(t, len(pkt.Data), len(decoded[i].Data))
		}
	})
}
