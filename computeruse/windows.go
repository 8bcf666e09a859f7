//go:build windows

package computeruse

import (
	"strings"
	"time"
	"unicode/utf16"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32               = windows.NewLazySystemDLL("user32.dll")
	procSetCursorPos     = user32.NewProc("SetCursorPos")
	procMouseEvent       = user32.NewProc("mouse_event")
	procSendInput        = user32.NewProc("SendInput")
	procGetSystemMetrics = user32.NewProc("GetSystemMetrics")
)

const (
	mouseeventfLeftdown   = 0x0002
	mouseeventfLeftup     = 0x0004
	mouseeventfRightdown  = 0x0008
	mouseeventfRightup    = 0x0010
	mouseeventfMiddledown = 0x0020
	mouseeventfMiddleup   = 0x0040
	mouseeventfWheel      = 0x0800

	inputKeyboard    = 1
	keyeventfKeyup   = 0x0002
	keyeventfUnicode = 0x0004

	smCxScreen = 0
	smCyScreen = 1

	// One logical scroll unit in native wheel units (WHEEL_DELTA).
	wheelDelta = 120
)

// winNamedKeys maps canonical key names to virtual-key codes.
var winNamedKeys = map[string]uint16{
	"return":    0x0D,
	"enter":     0x0D,
	"tab":       0x09,
	"space":     0x20,
	"backspace": 0x08,
	"escape":    0x1B,
	"esc":       0x1B,
	"left":      0x25,
	"up":        0x26,
	"right":     0x27,
	"down":      0x28,
}

type keyboardInput struct {
	wVk         uint16
	wScan       uint16
	dwFlags     uint32
	time        uint32
	dwExtraInfo uintptr
}

type input struct {
	inputType uint32
	ki        keyboardInput
	padding   [8]byte // Padding to match C struct size
}

type winController struct{}

func newController() Controller {
	return winController{}
}

func (winController) MouseMove(x, y int) error {
	ret, _, _ := procSetCursorPos.Call(uintptr(x), uintptr(y))
	if ret == 0 {
		return newError(KindChannelUnavailable, "Failed to move mouse cursor")
	}
	return nil
}

func (c winController) MouseClick(x, y int, button MouseButton) error {
	if err := c.MouseMove(x, y); err != nil {
		return err
	}
	time.Sleep(stepDelay)

	down, up := winButtonFlags(button)
	procMouseEvent.Call(uintptr(down), 0, 0, 0, 0)
	time.Sleep(stepDelay)
	procMouseEvent.Call(uintptr(up), 0, 0, 0, 0)
	return nil
}

func (c winController) MouseDoubleClick(x, y int) error {
	if err := c.MouseClick(x, y, ButtonLeft); err != nil {
		return err
	}
	time.Sleep(doubleClickGap)
	return c.MouseClick(x, y, ButtonLeft)
}

func (c winController) MouseDrag(fromX, fromY, toX, toY int) error {
	if err := c.MouseMove(fromX, fromY); err != nil {
		return err
	}
	time.Sleep(dragPause)

	procMouseEvent.Call(mouseeventfLeftdown, 0, 0, 0, 0)
	time.Sleep(dragDwell)

	if err := c.MouseMove(toX, toY); err != nil {
		return err
	}
	time.Sleep(dragPause)

	procMouseEvent.Call(mouseeventfLeftup, 0, 0, 0, 0)
	return nil
}

// MouseScroll posts a single wheel event. Horizontal deltas are accepted but
// not emitted, and the pointer is not repositioned first.
func (winController) MouseScroll(x, y, scrollX, scrollY int) error {
	procMouseEvent.Call(mouseeventfWheel, 0, 0, uintptr(uint32(scrollY*wheelDelta)), 0)
	return nil
}

// KeyboardType synthesizes one Unicode down/up input pair per UTF-16 unit
// through the input queue, so the full input character set is supported.
func (winController) KeyboardType(text string) error {
	for _, unit := range utf16.Encode([]rune(text)) {
		if err := sendKeyPair(0, unit, keyeventfUnicode); err != nil {
			return err
		}
		time.Sleep(stepDelay)
	}
	return nil
}

func (winController) KeyboardKey(spec string) error {
	vk, ok := winNamedKeys[strings.ToLower(spec)]
	if !ok {
		return newError(KindUnrecognizedToken, "Unknown key: %s", spec)
	}
	return sendKeyPair(vk, 0, 0)
}

func (winController) ScreenSize() (ScreenSize, error) {
	width, _, _ := procGetSystemMetrics.Call(smCxScreen)
	height, _, _ := procGetSystemMetrics.Call(smCyScreen)
	if width == 0 || height == 0 {
		return ScreenSize{}, newError(KindChannelUnavailable, "Failed to query screen metrics")
	}
	return ScreenSize{Width: uint32(width), Height: uint32(height)}, nil
}

// sendKeyPair posts a key-down and key-up input pair in one SendInput call.
func sendKeyPair(vk, scan uint16, flags uint32) error {
	inputs := []input{
		{
			inputType: inputKeyboard,
			ki:        keyboardInput{wVk: vk, wScan: scan, dwFlags: flags},
		},
		{
			inputType: inputKeyboard,
			ki:        keyboardInput{wVk: vk, wScan: scan, dwFlags: flags | keyeventfKeyup},
		},
	}

	ret, _, err := procSendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		unsafe.Sizeof(inputs[0]),
	)
	if ret == 0 {
		return newError(KindEventConstructionFailed, "SendInput failed: %v", err)
	}
	return nil
}

func winButtonFlags(button MouseButton) (down, up uint32) {
	switch button {
	case ButtonRight:
		return mouseeventfRightdown, mouseeventfRightup
	case ButtonMiddle:
		return mouseeventfMiddledown, mouseeventfMiddleup
	default:
		return mouseeventfLeftdown, mouseeventfLeftup
	}
}
