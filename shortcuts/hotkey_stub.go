//go:build !windows && !linux

package shortcuts

import (
	"context"
	"fmt"
	"runtime"

	"deskhand/config"
)

type stubListener struct{}

func newListener() Listener {
	return &stubListener{}
}

func (l *stubListener) Listen(ctx context.Context, combo config.KeyCombo) (<-chan Event, error) {
	return nil, fmt.Errorf("global shortcuts are not supported on %s", runtime.GOOS)
}
