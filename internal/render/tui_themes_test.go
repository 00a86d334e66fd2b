package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailableTUIThemesComplete(t *testing.T) {
	for _, theme := range AvailableTUIThemes() {
		colors := map[string]string{
			"surface":   string(theme.Surface),
			"border":    string(theme.Border),
			"primary":   string(theme.Primary),
			"secondary": string(theme.Secondary),
			"accent":    string(theme.Accent),
			"error":     string(theme.Error),
			"text":      string(theme.Text),
			"textDim":   string(theme.TextDim),
			"textMute":  string(theme.TextMute),
		}
		for field, value := range colors {
			assert.NotEmpty(t, value, "theme %s has empty %s color", theme.Name, field)
		}
		assert.NotEmpty(t, theme.Description, "theme %s", theme.Name)
	}
}

func TestSetTUITheme(t *testing.T) {
	defer SetTUITheme(TokyoNightTheme.Name)

	require.True(t, SetTUITheme("catppuccin"))
	assert.Equal(t, "catppuccin", GetTUITheme().Name)

	assert.False(t, SetTUITheme("nope"))
	assert.Equal(t, "catppuccin", GetTUITheme().Name, "failed lookup must not change the active theme")
}

func TestTUIThemeNames(t *testing.T) {
	names := TUIThemeNames()
	require.Len(t, names, len(AvailableTUIThemes()))
	assert.Equal(t, "tokyonight", names[0])
}
