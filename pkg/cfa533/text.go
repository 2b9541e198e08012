package cfa533

// Text converts a string to screen bytes, at most width of them.
// Characters outside Latin-1 become '?'.
func Text(s string, width int) []byte {
	b := make([]byte, 0, width)
	for _, r := range s {
		if len(b) >= width {
			break
		}
		if r > 0xff {
			r = '?'
		}
		b = append(b, byte(r))
	}
	return b
}

// Line returns exactly one line of screen bytes, padded with spaces.
func Line(s string) []byte {
	b := Text(s, Columns)
	for len(b) < Columns {
		b = append(b, ' ')
	}
	return b
}
