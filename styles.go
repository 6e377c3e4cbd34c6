package cppguts

// ColorPair represents a foreground and background color combination.
// Colors are hex strings in "#RRGGBB" format. Empty strings leave the
// terminal default in place.
type ColorPair struct {
	Foreground string
	Background string
}

// Styles contains color pairs for every element of a rendered report.
type Styles struct {
	Unchanged  ColorPair // Records with status unchanged
	Modified   ColorPair // Records with status modified
	Added      ColorPair // Records with status added
	Removed    ColorPair // Records with status removed
	Inserted   ColorPair // Statement text that only the new body has
	Deleted    ColorPair // Statement text that only the old body has
	Header     ColorPair // Report header naming both buffers
	LineNumber ColorPair // Span line numbers
	Selected   ColorPair // Cursor row in the interactive viewer
}

// Status returns the color pair used for records with status s.
func (s Styles) Status(st Status) ColorPair {
	switch st {
	case Modified:
		return s.Modified
	case Added:
		return s.Added
	case Removed:
		return s.Removed
	default:
		return s.Unchanged
	}
}

// Color is a hex color such as "#cba6f7".
type Color string

// Palette holds the semantic colors a theme is built from, including the
// syntax colors used to highlight statement text.
type Palette struct {
	Background Color
	Foreground Color

	Added     Color
	Removed   Color
	Modified  Color
	Unchanged Color

	Keyword     Color
	String      Color
	Number      Color
	Comment     Color
	Operator    Color
	Function    Color
	Type        Color
	Constant    Color
	Punctuation Color

	UIBackground Color
	UIForeground Color
	UIAccent     Color
}

// Theme provides styles for rendering reports.
// Different implementations can provide light/dark variants.
type Theme interface {
	Styles() Styles
	Palette() Palette
}
