// Package computeruse synthesizes mouse and keyboard input and reports
// display geometry. One Controller interface is implemented per operating
// system on top of its native automation API: CoreGraphics event taps on
// macOS, SendInput/mouse_event on Windows, X11 plus the XTest extension on
// Linux. The build target selects exactly one backend.
package computeruse

import (
	"strings"
	"time"
)

// ScreenSize holds the primary display's current pixel dimensions.
type ScreenSize struct {
	Width  uint32 `json:"width"`
	Height uint32 `json:"height"`
}

// Coordinate is an absolute pixel position with the origin at the top-left
// of the primary display on every platform.
type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// MouseButton identifies a logical mouse button.
type MouseButton int

const (
	ButtonLeft MouseButton = iota
	ButtonRight
	ButtonMiddle
)

// ParseButton maps a request button name to a MouseButton. Anything other
// than "right" or "middle", including the empty string, is the left button.
func ParseButton(name string) MouseButton {
	switch strings.ToLower(name) {
	case "right":
		return ButtonRight
	case "middle":
		return ButtonMiddle
	default:
		return ButtonLeft
	}
}

// Controller is the capability interface satisfied by every backend.
//
// Calls are synchronous and block the calling goroutine for the full
// duration of the gesture, including its internal pauses. Implementations
// hold no state and are safe to share across goroutines, but concurrent
// gestures are not serialized against each other: two overlapping calls can
// interleave at the native level. Each call opens its own native connection
// and releases it before returning. A multi-step gesture that fails partway
// is not rolled back; earlier steps' side effects stand.
type Controller interface {
	// MouseMove moves the pointer to the absolute coordinate. Off-screen
	// coordinates are handed to the platform unvalidated.
	MouseMove(x, y int) error

	// MouseClick moves to (x, y), presses the button, pauses briefly and
	// releases it.
	MouseClick(x, y int, button MouseButton) error

	// MouseDoubleClick performs two left clicks at (x, y) separated by a
	// short pause. If the first click fails the second is not attempted.
	MouseDoubleClick(x, y int) error

	// MouseDrag moves to the start point, presses the left button, dwells
	// long enough for the target to register drag-start, moves directly to
	// the end point and releases.
	MouseDrag(fromX, fromY, toX, toY int) error

	// MouseScroll emits one logical scroll gesture. Positive scrollY scrolls
	// up on every backend. The scroll is applied at the current pointer
	// position; x and y are accepted but do not reposition the pointer.
	MouseScroll(x, y, scrollX, scrollY int) error

	// KeyboardType emits a key-down/key-up pair per character with a short
	// delay between characters.
	KeyboardType(text string) error

	// KeyboardKey presses and releases the key named by spec, e.g. "enter"
	// or "cmd+shift+a". An unrecognized name fails before any native call.
	KeyboardKey(spec string) error

	// ScreenSize reports the primary display's pixel dimensions, queried
	// fresh on every call.
	ScreenSize() (ScreenSize, error)
}

// New returns the controller for the compiled platform.
func New() Controller {
	return newController()
}

// Gesture timing. Synthetic events are spaced out because real pointing
// devices do not teleport and some applications debounce rapid input.
const (
	stepDelay      = 10 * time.Millisecond
	doubleClickGap = 50 * time.Millisecond
	dragPause      = 50 * time.Millisecond
	dragDwell      = 100 * time.Millisecond
)
