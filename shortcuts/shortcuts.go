// Package shortcuts provides global keyboard shortcut detection.
package shortcuts

import (
	"context"

	"deskhand/config"
)

// EventType represents the type of shortcut event
type EventType int

const (
	Pressed EventType = iota
	Released
)

// Event represents a shortcut event
type Event struct {
	Type EventType
}

// Listener watches for a global key combination
type Listener interface {
	Listen(ctx context.Context, combo config.KeyCombo) (<-chan Event, error)
}

// New returns the shortcut listener for the current platform
func New() Listener {
	return newListener()
}
