// Package chat implements the chat widget: a linear transcript and the
// single-flight submit cycle that feeds it.
package chat

import (
	"strconv"
	"time"

	"github.com/diogo/chatwidget/internal/models"
)

// EntryKind classifies a transcript row
type EntryKind int

const (
	EntryUser EntryKind = iota
	EntryAssistant
	EntryError
	EntryPlaceholder
)

func (k EntryKind) String() string {
	switch k {
	case EntryUser:
		return "user"
	case EntryAssistant:
		return "assistant"
	case EntryError:
		return "error"
	case EntryPlaceholder:
		return "placeholder"
	default:
		return "unknown"
	}
}

// Entry is one row of the transcript
type Entry struct {
	ID      string
	Kind    EntryKind
	Content string
	Time    time.Time
}

// Transcript is the ordered list of displayed entries.
// Insertion order is display order is chronological order.
type Transcript struct {
	entries []Entry
	welcome bool
	seq     int
}

// NewTranscript returns an empty transcript showing the welcome message
func NewTranscript() *Transcript {
	return &Transcript{welcome: true}
}

// ShowsWelcome reports whether the one-time welcome message is still displayed
func (t *Transcript) ShowsWelcome() bool {
	return t.welcome
}

// Append adds an entry and dismisses the welcome message
func (t *Transcript) Append(kind EntryKind, content string, now time.Time) Entry {
	t.welcome = false
	t.seq++
	e := Entry{
		ID:      kind.String() + "-" + strconv.Itoa(t.seq),
		Kind:    kind,
		Content: content,
		Time:    now,
	}
	t.entries = append(t.entries, e)
	return e
}

// OpenPlaceholder appends a thinking placeholder identified by its timestamp
func (t *Transcript) OpenPlaceholder(now time.Time) string {
	t.welcome = false
	id := "thinking-" + strconv.FormatInt(now.UnixMilli(), 10)
	t.entries = append(t.entries, Entry{
		ID:   id,
		Kind: EntryPlaceholder,
		Time: now,
	})
	return id
}

// Remove deletes the entry with the given id, reporting whether it existed
func (t *Transcript) Remove(id string) bool {
	for i, e := range t.entries {
		if e.ID == id {
			t.entries = append(t.entries[:i], t.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Entries returns a copy of all entries in display order
func (t *Transcript) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of entries
func (t *Transcript) Len() int {
	return len(t.entries)
}

// Count returns how many entries of kind are present
func (t *Transcript) Count(kind EntryKind) int {
	n := 0
	for _, e := range t.entries {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Messages returns the user and assistant entries as wire messages
func (t *Transcript) Messages() []models.Message {
	var out []models.Message
	for _, e := range t.entries {
		switch e.Kind {
		case EntryUser:
			out = append(out, models.NewUserMessage(e.Content))
		case EntryAssistant:
			out = append(out, models.NewAssistantMessage(e.Content))
		}
	}
	return out
}

// LastAssistant returns the most recent assistant reply
func (t *Transcript) LastAssistant() (string, bool) {
	for i := len(t.entries) - 1; i >= 0; i-- {
		if t.entries[i].Kind == EntryAssistant {
			return t.entries[i].Content, true
		}
	}
	return "", false
}

// Clear drops every entry and brings the welcome message back
func (t *Transcript) Clear() {
	t.entries = nil
	t.welcome = true
}
