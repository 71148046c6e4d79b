package display

import (
	"fmt"
	"strings"
)

// ParseMode validates and normalizes a render mode name.
func ParseMode(value string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto":
		return ModeAuto, nil
	case "interactive":
		return ModeInteractive, nil
	case "append":
		return ModeAppend, nil
	default:
		return 0, fmt.Errorf("invalid render mode %q (valid: auto, interactive, append)", value)
	}
}

// ParseColorMode validates and normalizes a color mode name.
func ParseColorMode(value string) (ColorMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	default:
		return 0, fmt.Errorf("invalid color mode %q (valid: auto, always, never)", value)
	}
}
