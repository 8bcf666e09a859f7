//go:build windows

package computeruse

import "testing"

func TestWinNamedKeys(t *testing.T) {
	cases := []struct {
		name string
		vk   uint16
	}{
		{"enter", 0x0D},
		{"return", 0x0D},
		{"tab", 0x09},
		{"space", 0x20},
		{"backspace", 0x08},
		{"escape", 0x1B},
		{"esc", 0x1B},
		{"left", 0x25},
		{"up", 0x26},
		{"right", 0x27},
		{"down", 0x28},
	}

	for _, tc := range cases {
		vk, ok := winNamedKeys[tc.name]
		if !ok || vk != tc.vk {
			t.Errorf("winNamedKeys[%q] = (0x%02X, %v), want (0x%02X, true)", tc.name, vk, ok, tc.vk)
		}
	}
}

func TestWinButtonFlags(t *testing.T) {
	cases := []struct {
		button   MouseButton
		down, up uint32
	}{
		{ButtonLeft, mouseeventfLeftdown, mouseeventfLeftup},
		{ButtonRight, mouseeventfRightdown, mouseeventfRightup},
		{ButtonMiddle, mouseeventfMiddledown, mouseeventfMiddleup},
	}

	for _, tc := range cases {
		down, up := winButtonFlags(tc.button)
		if down != tc.down || up != tc.up {
			t.Errorf("winButtonFlags(%v) = (0x%04X, 0x%04X), want (0x%04X, 0x%04X)",
				tc.button, down, up, tc.down, tc.up)
		}
	}
}

func TestWinKeyboardKeyUnknown(t *testing.T) {
	err := winController{}.KeyboardKey("unknownkey")
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "Unknown key: unknownkey" {
		t.Errorf("unexpected message: %q", err.Error())
	}
	if kind, _ := KindOf(err); kind != KindUnrecognizedToken {
		t.Errorf("unexpected kind: %v", kind)
	}
}
