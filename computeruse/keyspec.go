package computeruse

import "strings"

// keyCombo is a parsed key specification: a base key token plus the modifier
// names that accompanied it. Tokens are case-insensitive and joined with '+'.
type keyCombo struct {
	key   string
	cmd   bool
	shift bool
	ctrl  bool
	alt   bool
}

// parseKeyCombo splits a spec such as "cmd+shift+a" into its modifier flags
// and base key token. Modifier order does not matter. The base key is not
// validated here; each backend resolves it against its own table.
func parseKeyCombo(spec string) keyCombo {
	var combo keyCombo
	for _, part := range strings.Split(strings.ToLower(spec), "+") {
		switch strings.TrimSpace(part) {
		case "cmd", "command", "meta":
			combo.cmd = true
		case "shift":
			combo.shift = true
		case "ctrl", "control":
			combo.ctrl = true
		case "alt", "option":
			combo.alt = true
		default:
			combo.key = strings.TrimSpace(part)
		}
	}
	return combo
}
