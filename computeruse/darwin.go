//go:build darwin

package computeruse

/*
#cgo LDFLAGS: -framework CoreGraphics -framework CoreFoundation

#include <stdbool.h>
#include <CoreGraphics/CoreGraphics.h>

// Each helper constructs one event, posts it into the system-wide HID event
// tap and releases it immediately. A zero return means the platform refused
// to build the event.

static int postMouseEvent(CGEventType type, double x, double y, CGMouseButton button) {
	CGEventRef event = CGEventCreateMouseEvent(NULL, type, CGPointMake(x, y), button);
	if (event == NULL) {
		return 0;
	}
	CGEventPost(kCGHIDEventTap, event);
	CFRelease(event);
	return 1;
}

static int postKeyEvent(CGKeyCode keyCode, bool keyDown) {
	CGEventRef event = CGEventCreateKeyboardEvent(NULL, keyCode, keyDown);
	if (event == NULL) {
		return 0;
	}
	CGEventPost(kCGHIDEventTap, event);
	CFRelease(event);
	return 1;
}

static int postUnicodeKeyEvent(UniChar ch, bool keyDown) {
	CGEventRef event = CGEventCreateKeyboardEvent(NULL, 0, keyDown);
	if (event == NULL) {
		return 0;
	}
	CGEventKeyboardSetUnicodeString(event, 1, &ch);
	CGEventPost(kCGHIDEventTap, event);
	CFRelease(event);
	return 1;
}

static int postScrollEvent(int32_t deltaY, int32_t deltaX) {
	CGEventRef event = CGEventCreateScrollWheelEvent(NULL, kCGScrollEventUnitPixel, 2, deltaY, deltaX);
	if (event == NULL) {
		return 0;
	}
	CGEventPost(kCGHIDEventTap, event);
	CFRelease(event);
	return 1;
}

static void mainDisplaySize(uint32_t *width, uint32_t *height) {
	CGRect bounds = CGDisplayBounds(CGMainDisplayID());
	*width = (uint32_t)bounds.size.width;
	*height = (uint32_t)bounds.size.height;
}
*/
import "C"
import (
	"time"
	"unicode/utf16"
)

// CGEventType and CGMouseButton values used by the helpers.
const (
	cgEventLeftMouseDown  = 1
	cgEventLeftMouseUp    = 2
	cgEventRightMouseDown = 3
	cgEventRightMouseUp   = 4
	cgEventMouseMoved     = 5
	cgEventOtherMouseDown = 25
	cgEventOtherMouseUp   = 26

	cgMouseButtonLeft   = 0
	cgMouseButtonRight  = 1
	cgMouseButtonCenter = 2
)

// macVirtualKeys maps canonical key names to ANSI virtual-key codes.
var macVirtualKeys = map[string]uint16{
	"return":    36,
	"enter":     36,
	"tab":       48,
	"space":     49,
	"delete":    51,
	"backspace": 51,
	"escape":    53,
	"esc":       53,
	"left":      123,
	"right":     124,
	"down":      125,
	"up":        126,
	"a":         0,
	"s":         1,
	"d":         2,
	"f":         3,
	"h":         4,
	"g":         5,
	"z":         6,
	"x":         7,
	"c":         8,
	"v":         9,
	"b":         11,
	"q":         12,
	"w":         13,
	"e":         14,
	"r":         15,
	"y":         16,
	"t":         17,
}

type macController struct{}

func newController() Controller {
	return macController{}
}

// MouseMove posts a mouse-moved event carrying the absolute point; the
// pointer follows the event, no separate warp is needed.
func (macController) MouseMove(x, y int) error {
	return postMouse(cgEventMouseMoved, x, y, cgMouseButtonLeft, "Failed to create mouse move event")
}

func (macController) MouseClick(x, y int, button MouseButton) error {
	downType, upType, num := cgButton(button)

	if err := postMouse(downType, x, y, num, "Failed to create mouse down event"); err != nil {
		return err
	}
	time.Sleep(stepDelay)

	return postMouse(upType, x, y, num, "Failed to create mouse up event")
}

func (c macController) MouseDoubleClick(x, y int) error {
	if err := c.MouseClick(x, y, ButtonLeft); err != nil {
		return err
	}
	time.Sleep(doubleClickGap)
	return c.MouseClick(x, y, ButtonLeft)
}

func (c macController) MouseDrag(fromX, fromY, toX, toY int) error {
	if err := c.MouseMove(fromX, fromY); err != nil {
		return err
	}
	time.Sleep(dragPause)

	if err := postMouse(cgEventLeftMouseDown, fromX, fromY, cgMouseButtonLeft, "Failed to create mouse down event"); err != nil {
		return err
	}
	time.Sleep(dragDwell)

	if err := postMouse(cgEventMouseMoved, toX, toY, cgMouseButtonLeft, "Failed to create drag event"); err != nil {
		return err
	}
	time.Sleep(dragPause)

	return postMouse(cgEventLeftMouseUp, toX, toY, cgMouseButtonLeft, "Failed to create mouse up event")
}

// MouseScroll posts one pixel-unit wheel event carrying both axes, with the
// deltas sign-inverted to match the platform's natural-scrolling convention.
// The pointer is not repositioned first.
func (macController) MouseScroll(x, y, scrollX, scrollY int) error {
	if C.postScrollEvent(C.int32_t(-scrollY), C.int32_t(-scrollX)) == 0 {
		return newError(KindEventConstructionFailed, "Failed to create scroll event")
	}
	return nil
}

// KeyboardType attaches each UTF-16 unit to a key event as a Unicode string
// rather than resolving virtual-key codes, so the full input character set
// is supported.
func (macController) KeyboardType(text string) error {
	for _, unit := range utf16.Encode([]rune(text)) {
		if C.postUnicodeKeyEvent(C.UniChar(unit), true) == 0 {
			return newError(KindEventConstructionFailed, "Failed to create keyboard event")
		}
		if C.postUnicodeKeyEvent(C.UniChar(unit), false) == 0 {
			return newError(KindEventConstructionFailed, "Failed to create keyboard event")
		}
		time.Sleep(stepDelay)
	}
	return nil
}

func (macController) KeyboardKey(spec string) error {
	combo := parseKeyCombo(spec)
	code, ok := macVirtualKeys[combo.key]
	if !ok {
		return newError(KindUnrecognizedToken, "Unknown key: %s", combo.key)
	}

	// Modifier names in the combo are parsed but not yet attached to the
	// event. TODO: apply combo's flags with CGEventSetFlags.
	if C.postKeyEvent(C.CGKeyCode(code), true) == 0 {
		return newError(KindEventConstructionFailed, "Failed to create key down event")
	}
	time.Sleep(stepDelay)

	if C.postKeyEvent(C.CGKeyCode(code), false) == 0 {
		return newError(KindEventConstructionFailed, "Failed to create key up event")
	}
	return nil
}

func (macController) ScreenSize() (ScreenSize, error) {
	var width, height C.uint32_t
	C.mainDisplaySize(&width, &height)
	return ScreenSize{Width: uint32(width), Height: uint32(height)}, nil
}

func postMouse(eventType uint32, x, y int, button uint32, detail string) error {
	if C.postMouseEvent(C.CGEventType(eventType), C.double(x), C.double(y), C.CGMouseButton(button)) == 0 {
		return newError(KindEventConstructionFailed, detail)
	}
	return nil
}

func cgButton(button MouseButton) (downType, upType, num uint32) {
	switch button {
	case ButtonRight:
		return cgEventRightMouseDown, cgEventRightMouseUp, cgMouseButtonRight
	case ButtonMiddle:
		return cgEventOtherMouseDown, cgEventOtherMouseUp, cgMouseButtonCenter
	default:
		return cgEventLeftMouseDown, cgEventLeftMouseUp, cgMouseButtonLeft
	}
}
