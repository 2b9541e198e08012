package comm

import "github.com/sigurn/crc16"

// Checksum computes the frame check sequence over type, length and data.
type Checksum func(data []byte) uint16

var crcTable = crc16.MakeTable(crc16.CRC16_X_25)

// CRC is the CFA533 frame check sequence: CRC-16/X-25, reflected CCITT
// polynomial seeded with 0xFFFF and inverted on output.
func CRC(data []byte) uint16 {
	return crc16.Checksum(data, crcTable)
}
