//go:build linux

package shortcuts

import (
	"context"
	"fmt"
	"strings"

	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"deskhand/config"
)

// x11Listener implements Listener with a passive key grab on the root
// window.
type x11Listener struct{}

func newListener() Listener {
	return &x11Listener{}
}

// Listen registers the combo as a global X11 hotkey and runs the event
// loop until the context is cancelled.
func (l *x11Listener) Listen(ctx context.Context, combo config.KeyCombo) (<-chan Event, error) {
	seq, err := keySequence(combo)
	if err != nil {
		return nil, err
	}

	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}

	keybind.Initialize(xu)

	events := make(chan Event, 10)

	press := keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		select {
		case events <- Event{Type: Pressed}:
		default:
		}
	})
	if err := press.Connect(xu, xu.RootWin(), seq, true); err != nil {
		xu.Conn().Close()
		return nil, fmt.Errorf("failed to grab key %q: %w", seq, err)
	}

	release := keybind.KeyReleaseFun(func(xu *xgbutil.XUtil, ev xevent.KeyReleaseEvent) {
		select {
		case events <- Event{Type: Released}:
		default:
		}
	})
	if err := release.Connect(xu, xu.RootWin(), seq, true); err != nil {
		xu.Conn().Close()
		return nil, fmt.Errorf("failed to grab key release %q: %w", seq, err)
	}

	go xevent.Main(xu)

	go func() {
		<-ctx.Done()
		xevent.Quit(xu)
	}()

	return events, nil
}

// keySequence converts a combo to xgbutil's grab syntax, e.g.
// "Control-Shift-space".
func keySequence(combo config.KeyCombo) (string, error) {
	if combo.Key == "" {
		return "", fmt.Errorf("modifier-only shortcuts are not supported on X11")
	}

	var parts []string
	if combo.Ctrl {
		parts = append(parts, "Control")
	}
	if combo.Shift {
		parts = append(parts, "Shift")
	}
	if combo.Alt {
		parts = append(parts, "Mod1")
	}
	if combo.Win {
		parts = append(parts, "Mod4")
	}

	parts = append(parts, keysymName(combo.Key))
	return strings.Join(parts, "-"), nil
}

func keysymName(key string) string {
	switch key {
	case "enter":
		return "Return"
	case "esc":
		return "Escape"
	case "tab":
		return "Tab"
	case "backspace":
		return "BackSpace"
	default:
		return key
	}
}
