package lcd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBytes(t *testing.T) {
	data, err := parseBytes([]string{"0x1f", "31", "0b10101", "0"})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x1f, 31, 0x15, 0}, data)

	_, err = parseBytes([]string{"256"})
	require.Error(t, err)
	_, err = parseBytes([]string{"x"})
	require.Error(t, err)

	data, err = parseBytes(nil)
	require.NoError(t, err)
	assert.Empty(t, data)
}
