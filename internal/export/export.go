// Package export writes a chat transcript to Markdown, JSON or HTML.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/diogo/chatwidget/internal/chat"
	"github.com/diogo/chatwidget/internal/render"
)

// Format represents the format for exporting a transcript
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatHTML     Format = "html"
)

// Meta describes the session a transcript belongs to
type Meta struct {
	Model    string
	Endpoint string
	Exported time.Time
}

// FormatFromPath picks a format from the file extension.
// Unknown extensions fall back to Markdown.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".html", ".htm":
		return FormatHTML
	default:
		return FormatMarkdown
	}
}

// DefaultFilename returns the file name used when /save has no argument
func DefaultFilename(now time.Time) string {
	return "chatwidget-" + now.Format("20060102-150405") + ".md"
}

// exportable drops the placeholder, which is never part of a saved transcript
func exportable(entries []chat.Entry) []chat.Entry {
	out := make([]chat.Entry, 0, len(entries))
	for _, e := range entries {
		if e.Kind != chat.EntryPlaceholder {
			out = append(out, e)
		}
	}
	return out
}

func roleTitle(kind chat.EntryKind) string {
	switch kind {
	case chat.EntryUser:
		return "User"
	case chat.EntryAssistant:
		return "Assistant"
	default:
		return "Error"
	}
}

// Markdown renders entries as a Markdown document
func Markdown(entries []chat.Entry, meta Meta) string {
	entries = exportable(entries)

	var sb strings.Builder
	sb.WriteString("# Chat transcript\n\n")
	if meta.Model != "" {
		sb.WriteString("**Model:** " + meta.Model + "\n")
	}
	if meta.Endpoint != "" {
		sb.WriteString("**Endpoint:** " + meta.Endpoint + "\n")
	}
	if !meta.Exported.IsZero() {
		sb.WriteString("**Exported:** " + meta.Exported.Format("2006-01-02 15:04:05") + "\n")
	}
	sb.WriteString(fmt.Sprintf("**Messages:** %d\n\n---\n\n", len(entries)))

	for i, e := range entries {
		sb.WriteString("## " + roleTitle(e.Kind))
		if !e.Time.IsZero() {
			sb.WriteString(" (" + e.Time.Format("15:04:05") + ")")
		}
		sb.WriteString("\n\n")

		switch e.Kind {
		case chat.EntryError:
			sb.WriteString("> ❌ " + e.Content + "\n")
		default:
			sb.WriteString(e.Content + "\n")
		}

		if i < len(entries)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return sb.String()
}

type jsonEntry struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type jsonTranscript struct {
	Model    string      `json:"model,omitempty"`
	Endpoint string      `json:"endpoint,omitempty"`
	Exported time.Time   `json:"exported_at"`
	Entries  []jsonEntry `json:"entries"`
}

// JSON renders entries as an indented JSON document
func JSON(entries []chat.Entry, meta Meta) ([]byte, error) {
	entries = exportable(entries)

	out := jsonTranscript{
		Model:    meta.Model,
		Endpoint: meta.Endpoint,
		Exported: meta.Exported,
		Entries:  make([]jsonEntry, len(entries)),
	}
	for i, e := range entries {
		out.Entries[i] = jsonEntry{
			ID:        e.ID,
			Role:      e.Kind.String(),
			Content:   e.Content,
			Timestamp: e.Time,
		}
	}

	return json.MarshalIndent(out, "", "  ")
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Chat transcript</title>
<style>
body { font-family: sans-serif; max-width: 48rem; margin: 2rem auto; }
.message { margin: 1rem 0; padding: 0.75rem 1rem; border-radius: 0.5rem; }
.user { background: #e8f0fe; white-space: pre-wrap; }
.assistant { background: #f1f3f4; }
.error { background: #fce8e6; color: #a50e0e; }
</style>
</head>
<body>
<h1>Chat transcript</h1>
{{- if .Model}}
<p><strong>Model:</strong> {{.Model}}</p>
{{- end}}
{{- range .Entries}}
<div class="message {{.Class}}" id="{{.ID}}">{{.Body}}</div>
{{- end}}
</body>
</html>
`))

type htmlEntry struct {
	ID    string
	Class string
	Body  template.HTML
}

// HTML renders entries as a standalone page. User text is escaped, assistant
// markdown is rendered and sanitised, errors carry the ❌ prefix.
func HTML(entries []chat.Entry, meta Meta) ([]byte, error) {
	entries = exportable(entries)

	rows := make([]htmlEntry, 0, len(entries))
	for _, e := range entries {
		row := htmlEntry{ID: e.ID, Class: e.Kind.String()}
		switch e.Kind {
		case chat.EntryAssistant:
			body, err := render.HTML(e.Content)
			if err != nil {
				return nil, err
			}
			// Sanitised by render.HTML
			row.Body = template.HTML(body)
		case chat.EntryError:
			row.Body = template.HTML("❌ " + template.HTMLEscapeString(e.Content))
		default:
			row.Body = template.HTML(template.HTMLEscapeString(e.Content))
		}
		rows = append(rows, row)
	}

	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, struct {
		Model   string
		Entries []htmlEntry
	}{meta.Model, rows})
	if err != nil {
		return nil, fmt.Errorf("failed to render html: %w", err)
	}
	return buf.Bytes(), nil
}

// Render encodes entries in the given format
func Render(entries []chat.Entry, meta Meta, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return JSON(entries, meta)
	case FormatHTML:
		return HTML(entries, meta)
	case FormatMarkdown:
		return []byte(Markdown(entries, meta)), nil
	default:
		return nil, fmt.Errorf("unknown export format: %s", format)
	}
}

// WriteFile exports entries to path, choosing the format from its extension
func WriteFile(path string, entries []chat.Entry, meta Meta) error {
	data, err := Render(entries, meta, FormatFromPath(path))
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}
