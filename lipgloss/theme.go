// Package lipgloss provides report themes and colored report rendering
// using the Lipgloss styling library.
package lipgloss

import (
	"fmt"

	"github.com/fwojciec/cppguts"
)

// Compile-time interface verification.
var _ cppguts.Theme = (*Theme)(nil)

// Theme implements cppguts.Theme with Lipgloss-compatible colors.
type Theme struct {
	styles  cppguts.Styles
	palette cppguts.Palette
}

// Styles returns the color styles for this theme.
func (t *Theme) Styles() cppguts.Styles {
	return t.styles
}

// Palette returns the semantic color palette for this theme.
func (t *Theme) Palette() cppguts.Palette {
	return t.palette
}

// DefaultTheme returns the default theme (dark background optimized).
func DefaultTheme() *Theme {
	return DarkTheme()
}

// ThemeByName returns the theme called "dark" or "light".
func ThemeByName(name string) (*Theme, error) {
	switch name {
	case "", "dark":
		return DarkTheme(), nil
	case "light":
		return LightTheme(), nil
	default:
		return nil, fmt.Errorf("unknown theme %q", name)
	}
}

// DarkTheme returns a theme optimized for dark terminal backgrounds.
func DarkTheme() *Theme {
	p := cppguts.Palette{
		// Catppuccin Mocha
		Background: "#1e1e2e",
		Foreground: "#cdd6f4",

		Added:     "#a6e3a1",
		Removed:   "#f38ba8",
		Modified:  "#f9e2af",
		Unchanged: "#6c7086",

		Keyword:     "#cba6f7",
		String:      "#a6e3a1",
		Number:      "#fab387",
		Comment:     "#6c7086",
		Operator:    "#89dceb",
		Function:    "#89b4fa",
		Type:        "#f9e2af",
		Constant:    "#fab387",
		Punctuation: "#9399b2",

		UIBackground: "#313244",
		UIForeground: "#a6adc8",
		UIAccent:     "#89b4fa",
	}
	return &Theme{
		palette: p,
		styles: cppguts.Styles{
			Unchanged:  cppguts.ColorPair{Foreground: string(p.Unchanged)},
			Modified:   cppguts.ColorPair{Foreground: string(p.Modified)},
			Added:      cppguts.ColorPair{Foreground: string(p.Added)},
			Removed:    cppguts.ColorPair{Foreground: string(p.Removed)},
			Inserted:   cppguts.ColorPair{Foreground: string(p.Added), Background: "#004000"},
			Deleted:    cppguts.ColorPair{Foreground: string(p.Removed), Background: "#3f0001"},
			Header:     cppguts.ColorPair{Foreground: "#f9e2af", Background: string(p.UIBackground)},
			LineNumber: cppguts.ColorPair{Foreground: "#6c7086"},
			Selected:   cppguts.ColorPair{Foreground: string(p.Foreground), Background: "#45475a"},
		},
	}
}

// LightTheme returns a theme optimized for light terminal backgrounds.
func LightTheme() *Theme {
	p := cppguts.Palette{
		// Catppuccin Latte
		Background: "#eff1f5",
		Foreground: "#4c4f69",

		Added:     "#40a02b",
		Removed:   "#d20f39",
		Modified:  "#df8e1d",
		Unchanged: "#9ca0b0",

		Keyword:     "#8839ef",
		String:      "#40a02b",
		Number:      "#fe640b",
		Comment:     "#9ca0b0",
		Operator:    "#04a5e5",
		Function:    "#1e66f5",
		Type:        "#df8e1d",
		Constant:    "#fe640b",
		Punctuation: "#6c6f85",

		UIBackground: "#e6e9ef",
		UIForeground: "#6c6f85",
		UIAccent:     "#1e66f5",
	}
	return &Theme{
		palette: p,
		styles: cppguts.Styles{
			Unchanged:  cppguts.ColorPair{Foreground: string(p.Unchanged)},
			Modified:   cppguts.ColorPair{Foreground: string(p.Modified)},
			Added:      cppguts.ColorPair{Foreground: string(p.Added)},
			Removed:    cppguts.ColorPair{Foreground: string(p.Removed)},
			Inserted:   cppguts.ColorPair{Foreground: string(p.Added), Background: "#d4f4d4"},
			Deleted:    cppguts.ColorPair{Foreground: string(p.Removed), Background: "#f4d4d4"},
			Header:     cppguts.ColorPair{Foreground: "#df8e1d", Background: string(p.UIBackground)},
			LineNumber: cppguts.ColorPair{Foreground: "#9ca0b0"},
			Selected:   cppguts.ColorPair{Foreground: string(p.Foreground), Background: "#ccd0da"},
		},
	}
}
