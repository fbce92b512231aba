package monaco

// KeyMod values combine with a KeyCode into a keybinding.
const (
	KeyModCtrlCmd = 1 << 11
	KeyModShift   = 1 << 10
	KeyModAlt     = 1 << 9
	KeyModWinCtrl = 1 << 8
)

// KeyCode values used by the host (monaco.KeyCode numbering).
const (
	KeyEnter  = 3
	KeyEscape = 9
	KeyF1     = 59
	KeyF2     = 60
	KeyF12    = 70
	KeyA      = 31
)

// Letter returns the KeyCode for an ASCII letter, or 0 if c is not one.
func Letter(c byte) int {
	switch {
	case c >= 'a' && c <= 'z':
		return KeyA + int(c-'a')
	case c >= 'A' && c <= 'Z':
		return KeyA + int(c-'A')
	}
	return 0
}

// Chord builds a keybinding from modifiers and a key code.
func Chord(mods int, key int) int {
	return mods | key
}
