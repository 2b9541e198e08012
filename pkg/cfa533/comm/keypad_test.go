package comm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeypadAction(t *testing.T) {
	testCases := []struct {
		action  KeypadAction
		key     KeyFlags
		pressed bool
		name    string
	}{
		{KeyUpPress, KeyUp, true, "up.press"},
		{KeyDownPress, KeyDown, true, "down.press"},
		{KeyLeftPress, KeyLeft, true, "left.press"},
		{KeyRightPress, KeyRight, true, "right.press"},
		{KeyEnterPress, KeyEnter, true, "enter.press"},
		{KeyCancelPress, KeyCancel, true, "cancel.press"},
		{KeyUpRelease, KeyUp, false, "up.release"},
		{KeyCancelRelease, KeyCancel, false, "cancel.release"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.True(t, tc.action.Valid())
			require.Equal(t, tc.key, tc.action.Key())
			require.Equal(t, tc.pressed, tc.action.Pressed())
			require.Equal(t, !tc.pressed, tc.action.Released())
			require.Equal(t, tc.name, tc.action.String())
		})
	}
	require.False(t, KeypadAction(0).Valid())
	require.False(t, KeypadAction(13).Valid())
	require.Equal(t, KeyFlags(0), KeypadAction(13).Key())
	require.Equal(t, "unknown", KeypadAction(0).String())
	require.True(t, KeyAll.Has(KeyUp|KeyDown))
	require.Equal(t, KeyFlags(0x3f), KeyAll)
}
