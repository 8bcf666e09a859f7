//go:build linux

package shortcuts

import (
	"testing"

	"deskhand/config"
)

func TestKeySequence(t *testing.T) {
	tests := []struct {
		combo config.KeyCombo
		want  string
	}{
		{config.KeyCombo{Ctrl: true, Shift: true, Key: "space"}, "Control-Shift-space"},
		{config.KeyCombo{Ctrl: true, Key: "v"}, "Control-v"},
		{config.KeyCombo{Alt: true, Key: "enter"}, "Mod1-Return"},
		{config.KeyCombo{Win: true, Key: "esc"}, "Mod4-Escape"},
	}

	for _, tt := range tests {
		got, err := keySequence(tt.combo)
		if err != nil {
			t.Errorf("keySequence(%+v): %v", tt.combo, err)
			continue
		}
		if got != tt.want {
			t.Errorf("keySequence(%+v) = %q, want %q", tt.combo, got, tt.want)
		}
	}
}

func TestKeySequenceModifierOnly(t *testing.T) {
	if _, err := keySequence(config.KeyCombo{Ctrl: true, Win: true}); err == nil {
		t.Error("expected error for modifier-only combo")
	}
}
