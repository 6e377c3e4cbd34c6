package lipgloss_test

import (
	"testing"

	"github.com/fwojciec/cppguts"
	"github.com/fwojciec/cppguts/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThemes(t *testing.T) {
	t.Parallel()

	themes := map[string]*lipgloss.Theme{
		"dark":  lipgloss.DarkTheme(),
		"light": lipgloss.LightTheme(),
	}

	for name, theme := range themes {
		theme := theme
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var _ cppguts.Theme = theme
			styles := theme.Styles()
			for _, st := range []cppguts.Status{cppguts.Unchanged, cppguts.Modified, cppguts.Added, cppguts.Removed} {
				assert.NotEmpty(t, styles.Status(st).Foreground, "status %s", st)
			}
			assert.NotEmpty(t, styles.Inserted.Background)
			assert.NotEmpty(t, styles.Deleted.Background)
			assert.NotEmpty(t, styles.Selected.Background)

			palette := theme.Palette()
			assert.NotEmpty(t, palette.Keyword)
			assert.NotEmpty(t, palette.Number)
			assert.Equal(t, string(palette.Added), styles.Added.Foreground)
		})
	}
}

func TestDefaultTheme_IsDark(t *testing.T) {
	t.Parallel()

	assert.Equal(t, lipgloss.DarkTheme().Palette(), lipgloss.DefaultTheme().Palette())
}

func TestThemeByName(t *testing.T) {
	t.Parallel()

	light, err := lipgloss.ThemeByName("light")
	require.NoError(t, err)
	assert.Equal(t, lipgloss.LightTheme().Palette(), light.Palette())

	dark, err := lipgloss.ThemeByName("")
	require.NoError(t, err)
	assert.Equal(t, lipgloss.DarkTheme().Palette(), dark.Palette())

	_, err = lipgloss.ThemeByName("neon")
	assert.ErrorContains(t, err, `"neon"`)
}
