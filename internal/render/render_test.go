package render

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	assert.Equal(t, 80, opts.Width)
	assert.Equal(t, StyleDark, opts.Style)
	assert.True(t, opts.PreserveNewLines)
	assert.True(t, opts.TableWrap)
	assert.False(t, opts.InlineTableLinks)
}

func TestOptionsChaining(t *testing.T) {
	opts := DefaultOptions().
		WithWidth(100).
		WithStyle(StyleLight).
		WithEmoji(false).
		WithPreserveNewLines(false).
		WithTableWrap(false).
		WithInlineTableLinks(true)

	assert.Equal(t, 100, opts.Width)
	assert.Equal(t, StyleLight, opts.Style)
	assert.False(t, opts.EnableEmoji)
	assert.False(t, opts.PreserveNewLines)
	assert.False(t, opts.TableWrap)
	assert.True(t, opts.InlineTableLinks)
}

func TestWithWidthClamps(t *testing.T) {
	assert.Equal(t, MinWidth, DefaultOptions().WithWidth(-6).Width)
}

func TestIsBuiltinStyle(t *testing.T) {
	for _, name := range StyleNames() {
		assert.True(t, IsBuiltinStyle(name), name)
	}
	assert.False(t, IsBuiltinStyle("/tmp/custom.json"), "file paths are not builtin styles")
}

func TestMarkdownBold(t *testing.T) {
	out, err := MarkdownWithWidth("Hi **there**", 80)
	require.NoError(t, err)

	plain := ansi.Strip(out)
	assert.NotContains(t, plain, "**", "emphasis markers should be consumed")
	assert.Contains(t, plain, "Hi")
	assert.Contains(t, plain, "there")
	assert.NotEqual(t, plain, out, "bold text should be styled")
}

func TestMarkdownHardBreaks(t *testing.T) {
	out, err := MarkdownWithWidth("line one\nline two", 80)
	require.NoError(t, err)

	plain := ansi.Strip(out)
	one, two := lineOf(plain, "line one"), lineOf(plain, "line two")
	require.NotEqual(t, -1, one)
	assert.NotEqual(t, one, two, "single newline should produce a hard break")
}

func TestMarkdownInvalidStyle(t *testing.T) {
	freshPool(t)

	_, err := Markdown("# Test", DefaultOptions().WithStyle("invalid_style_path"))
	assert.Error(t, err)
}

func TestMarkdownOrPlainFallsBack(t *testing.T) {
	freshPool(t)

	got := MarkdownOrPlain("**x**\x1b[2J", DefaultOptions().WithStyle("invalid_style_path"))
	assert.Equal(t, "**x**", got, "fallback is sanitised plain text")

	rendered := MarkdownOrPlain("# Title", DefaultOptions())
	assert.False(t, strings.HasSuffix(rendered, "\n"), "trailing newlines should be trimmed")
}
