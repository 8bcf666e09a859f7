//go:build linux

package computeruse

import (
	"strings"
	"time"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgb/xtest"
)

// X11 core button numbers. Buttons 4 and 5 are the scroll wheel.
const (
	x11ButtonLeft   = 1
	x11ButtonMiddle = 2
	x11ButtonRight  = 3
	x11ScrollUp     = 4
	x11ScrollDown   = 5
)

// x11NamedKeys maps canonical key names to fixed keycodes for the standard
// pc105 layout.
var x11NamedKeys = map[string]byte{
	"return":    36,
	"enter":     36,
	"tab":       23,
	"space":     65,
	"backspace": 22,
	"escape":    9,
	"esc":       9,
	"left":      113,
	"up":        111,
	"right":     114,
	"down":      116,
}

// x11Session is one short-lived display connection. Every operation opens a
// fresh session and closes it before returning; sessions are never shared or
// reused. The interface seam lets gesture sequencing run against a recording
// fake in tests.
type x11Session interface {
	Motion(x, y int) error
	Button(button byte, press bool) error
	Key(keycode byte, press bool) error
	Size() (ScreenSize, error)
	Close()
}

type x11Controller struct {
	connect func() (x11Session, error)
}

func newController() Controller {
	return &x11Controller{connect: openX11}
}

func (c *x11Controller) MouseMove(x, y int) error {
	s, err := c.connect()
	if err != nil {
		return err
	}
	defer s.Close()

	return s.Motion(x, y)
}

func (c *x11Controller) MouseClick(x, y int, button MouseButton) error {
	s, err := c.connect()
	if err != nil {
		return err
	}
	defer s.Close()

	num := x11Button(button)
	if err := s.Motion(x, y); err != nil {
		return err
	}
	time.Sleep(stepDelay)

	if err := s.Button(num, true); err != nil {
		return err
	}
	time.Sleep(stepDelay)

	return s.Button(num, false)
}

func (c *x11Controller) MouseDoubleClick(x, y int) error {
	if err := c.MouseClick(x, y, ButtonLeft); err != nil {
		return err
	}
	time.Sleep(doubleClickGap)
	return c.MouseClick(x, y, ButtonLeft)
}

func (c *x11Controller) MouseDrag(fromX, fromY, toX, toY int) error {
	s, err := c.connect()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Motion(fromX, fromY); err != nil {
		return err
	}
	time.Sleep(dragPause)

	if err := s.Button(x11ButtonLeft, true); err != nil {
		return err
	}
	time.Sleep(dragDwell)

	if err := s.Motion(toX, toY); err != nil {
		return err
	}
	time.Sleep(dragPause)

	return s.Button(x11ButtonLeft, false)
}

// MouseScroll emulates the wheel as press/release cycles of button 4 or 5;
// the X core protocol has no wheel primitive on this path. One cycle per
// logical scroll unit. Horizontal deltas are accepted but not emitted.
func (c *x11Controller) MouseScroll(x, y, scrollX, scrollY int) error {
	s, err := c.connect()
	if err != nil {
		return err
	}
	defer s.Close()

	button := byte(x11ScrollUp)
	count := scrollY
	if scrollY < 0 {
		button = x11ScrollDown
		count = -scrollY
	}

	for i := 0; i < count; i++ {
		if err := s.Button(button, true); err != nil {
			return err
		}
		if err := s.Button(button, false); err != nil {
			return err
		}
		time.Sleep(stepDelay)
	}
	return nil
}

// KeyboardType covers ASCII letters and the space character only: keycodes
// are derived by arithmetic offset from the letter row rather than through
// keysym resolution, so anything else is silently skipped.
func (c *x11Controller) KeyboardType(text string) error {
	s, err := c.connect()
	if err != nil {
		return err
	}
	defer s.Close()

	for _, ch := range text {
		keycode, ok := x11CharKeycode(ch)
		if !ok {
			continue
		}
		if err := s.Key(keycode, true); err != nil {
			return err
		}
		if err := s.Key(keycode, false); err != nil {
			return err
		}
		time.Sleep(stepDelay)
	}
	return nil
}

func (c *x11Controller) KeyboardKey(spec string) error {
	keycode, ok := x11NamedKeys[strings.ToLower(spec)]
	if !ok {
		return newError(KindUnrecognizedToken, "Unknown key: %s", spec)
	}

	s, err := c.connect()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Key(keycode, true); err != nil {
		return err
	}
	time.Sleep(stepDelay)

	return s.Key(keycode, false)
}

func (c *x11Controller) ScreenSize() (ScreenSize, error) {
	s, err := c.connect()
	if err != nil {
		return ScreenSize{}, err
	}
	defer s.Close()

	return s.Size()
}

func x11Button(button MouseButton) byte {
	switch button {
	case ButtonRight:
		return x11ButtonRight
	case ButtonMiddle:
		return x11ButtonMiddle
	default:
		return x11ButtonLeft
	}
}

func x11CharKeycode(ch rune) (byte, bool) {
	switch {
	case ch >= 'a' && ch <= 'z':
		return byte(38 + ch - 'a'), true
	case ch >= 'A' && ch <= 'Z':
		return byte(38 + ch - 'A'), true
	case ch == ' ':
		return 65, true
	}
	return 0, false
}

// xgbSession backs x11Session with a real display connection.
type xgbSession struct {
	conn   *xgb.Conn
	root   xproto.Window
	screen *xproto.ScreenInfo
}

func openX11() (x11Session, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, newError(KindChannelUnavailable, "Failed to open X display: %v", err)
	}
	if err := xtest.Init(conn); err != nil {
		conn.Close()
		return nil, newError(KindChannelUnavailable, "XTest extension unavailable: %v", err)
	}

	screen := xproto.Setup(conn).DefaultScreen(conn)
	return &xgbSession{conn: conn, root: screen.Root, screen: screen}, nil
}

func (s *xgbSession) Motion(x, y int) error {
	return s.fake(xproto.MotionNotify, 0, x, y)
}

func (s *xgbSession) Button(button byte, press bool) error {
	typ := byte(xproto.ButtonPress)
	if !press {
		typ = xproto.ButtonRelease
	}
	return s.fake(typ, button, 0, 0)
}

func (s *xgbSession) Key(keycode byte, press bool) error {
	typ := byte(xproto.KeyPress)
	if !press {
		typ = xproto.KeyRelease
	}
	return s.fake(typ, keycode, 0, 0)
}

// fake posts one synthetic event and waits for the server round trip, which
// both forces delivery and surfaces any protocol error immediately.
func (s *xgbSession) fake(typ, detail byte, x, y int) error {
	cookie := xtest.FakeInputChecked(s.conn, typ, detail, 0, s.root, int16(x), int16(y), 0)
	if err := cookie.Check(); err != nil {
		return newError(KindEventConstructionFailed, "Failed to post synthetic X event: %v", err)
	}
	return nil
}

func (s *xgbSession) Size() (ScreenSize, error) {
	return ScreenSize{
		Width:  uint32(s.screen.WidthInPixels),
		Height: uint32(s.screen.HeightInPixels),
	}, nil
}

func (s *xgbSession) Close() {
	s.conn.Close()
}
