package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTMLBold(t *testing.T) {
	out, err := HTML("Hi **there**")
	require.NoError(t, err)
	assert.Equal(t, "<p>Hi <strong>there</strong></p>\n", out)
}

func TestHTMLHardBreaks(t *testing.T) {
	out, err := HTML("line one\nline two")
	require.NoError(t, err)
	assert.Contains(t, out, "line one<br>")
}

func TestHTMLHeadingsHaveNoIDs(t *testing.T) {
	out, err := HTML("# Title")
	require.NoError(t, err)
	assert.Equal(t, "<h1>Title</h1>\n", out)
}

func TestHTMLEmailNotObfuscated(t *testing.T) {
	out, err := HTML("mail me at someone@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "someone@example.com")
	assert.NotContains(t, out, "&#")
}

func TestHTMLGFM(t *testing.T) {
	out, err := HTML("| a | b |\n|---|---|\n| 1 | 2 |\n\n~~gone~~")
	require.NoError(t, err)
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<del>gone</del>")
}

func TestHTMLDropsScripts(t *testing.T) {
	out, err := HTML("hello <script>alert(1)</script> [x](javascript:alert(1))")
	require.NoError(t, err)
	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "javascript:")
}
