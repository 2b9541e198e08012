package comm

// Report identifiers.
const (
	ReportKeyActivity byte = 0x00
	ReportTemperature byte = 0x02
)

// KeypadAction is the payload of a key activity report.
type KeypadAction byte

// Keypad actions.
const (
	KeyUpPress KeypadAction = iota + 1
	KeyDownPress
	KeyLeftPress
	KeyRightPress
	KeyEnterPress
	KeyCancelPress
	KeyUpRelease
	KeyDownRelease
	KeyLeftRelease
	KeyRightRelease
	KeyEnterRelease
	KeyCancelRelease
)

var keypadActionNames = [...]string{
	"", "up", "down", "left", "right", "enter", "cancel",
}

// Valid tells if the action is a known one.
func (a KeypadAction) Valid() bool {
	return a >= KeyUpPress && a <= KeyCancelRelease
}

// Pressed tells if the action is a key press.
func (a KeypadAction) Pressed() bool {
	return a >= KeyUpPress && a <= KeyCancelPress
}

// Released tells if the action is a key release.
func (a KeypadAction) Released() bool {
	return a >= KeyUpRelease && a <= KeyCancelRelease
}

// Key returns the key involved.
func (a KeypadAction) Key() KeyFlags {
	if !a.Valid() {
		return 0
	}
	return keyOrder[(a-1)%6]
}

// String implements fmt.Stringer.
func (a KeypadAction) String() string {
	switch {
	case a.Pressed():
		return keypadActionNames[a] + ".press"
	case a.Released():
		return keypadActionNames[a-6] + ".release"
	}
	return "unknown"
}

// KeyFlags is a bit set of keypad keys.
type KeyFlags byte

// Keys.
const (
	KeyUp     KeyFlags = 0x01
	KeyEnter  KeyFlags = 0x02
	KeyCancel KeyFlags = 0x04
	KeyLeft   KeyFlags = 0x08
	KeyRight  KeyFlags = 0x10
	KeyDown   KeyFlags = 0x20

	KeyAll = KeyUp | KeyEnter | KeyCancel | KeyLeft | KeyRight | KeyDown
)

// in KeypadAction order.
var keyOrder = [...]KeyFlags{KeyUp, KeyDown, KeyLeft, KeyRight, KeyEnter, KeyCancel}

// Has tells if all keys in k are set.
func (f KeyFlags) Has(k KeyFlags) bool {
	return f&k == k
}
