//go:build !darwin && !windows && !linux

package computeruse

import "runtime"

// unsupportedController rejects every operation on targets that have no
// native automation backend.
type unsupportedController struct{}

func newController() Controller {
	return unsupportedController{}
}

func errUnsupported() error {
	return newError(KindUnsupportedPlatform, "computer control is not available on %s", runtime.GOOS)
}

func (unsupportedController) MouseMove(x, y int) error { return errUnsupported() }

func (unsupportedController) MouseClick(x, y int, button MouseButton) error { return errUnsupported() }

func (unsupportedController) MouseDoubleClick(x, y int) error { return errUnsupported() }

func (unsupportedController) MouseDrag(fromX, fromY, toX, toY int) error { return errUnsupported() }

func (unsupportedController) MouseScroll(x, y, scrollX, scrollY int) error { return errUnsupported() }

func (unsupportedController) KeyboardType(text string) error { return errUnsupported() }

func (unsupportedController) KeyboardKey(spec string) error { return errUnsupported() }
func (unsupportedController) ScreenSize() (ScreenSize, error) {
	return ScreenSize{}, errUnsupported()
}
