package models

// Theme is the persisted color scheme preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme maps a raw cookie value to a Theme. Unrecognized values are
// treated as absent, not as errors.
func ParseTheme(raw string) (Theme, bool) {
	switch Theme(raw) {
	case ThemeLight, ThemeDark:
		return Theme(raw), true
	default:
		return "", false
	}
}
