package render

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldhtml "github.com/yuin/goldmark/renderer/html"
)

// htmlMarkdown mirrors the terminal renderer's dialect: GFM extensions and
// hard line breaks. Heading ids are not generated and raw HTML is omitted.
var htmlMarkdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(goldhtml.WithHardWraps()),
)

var htmlPolicy = bluemonday.UGCPolicy()

// HTML renders assistant markdown to sanitised HTML.
func HTML(content string) (string, error) {
	var buf bytes.Buffer
	if err := htmlMarkdown.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return htmlPolicy.Sanitize(buf.String()), nil
}
