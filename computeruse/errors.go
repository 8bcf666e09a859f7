package computeruse

import (
	"errors"
	"fmt"
)

// Kind classifies controller failures.
type Kind int

const (
	// KindUnsupportedPlatform means no backend exists for the running target.
	KindUnsupportedPlatform Kind = iota
	// KindChannelUnavailable means the native automation connection could
	// not be established.
	KindChannelUnavailable
	// KindEventConstructionFailed means the platform refused to build or
	// post a synthetic event.
	KindEventConstructionFailed
	// KindUnrecognizedToken means a key specification named an unknown key.
	KindUnrecognizedToken
)

// Error is a controller failure carrying a machine-inspectable kind and a
// human-readable detail. Operations are never retried internally; an Error
// means the call failed atomically, though earlier steps of a multi-step
// gesture may already have had native side effects.
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	return e.Detail
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// KindOf reports the kind of err if it is a controller Error.
func KindOf(err error) (Kind, bool) {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Kind, true
	}
	return 0, false
}
