package commands

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/diogo/chatwidget/internal/chat"
	"github.com/diogo/chatwidget/internal/models"
	"github.com/diogo/chatwidget/internal/tui"
)

// isolateHome points HOME at a temp dir so no real config is read or written
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("GLAMOUR_STYLE", "")
	return home
}

type fakeTUI struct {
	calls  int
	widget *chat.Widget
	opts   tui.Options
}

func (f *fakeTUI) RunChat(widget *chat.Widget, opts tui.Options) error {
	f.calls++
	f.widget = widget
	f.opts = opts
	return nil
}

type fakeClipboard struct {
	text string
	err  error
}

func (c *fakeClipboard) copy(s string) error {
	c.text = s
	return c.err
}

func testDeps(tty bool) (*Dependencies, *fakeTUI, *fakeClipboard) {
	ui := &fakeTUI{}
	clip := &fakeClipboard{}
	deps := NewDependencies()
	deps.TUI = ui
	deps.Copy = clip.copy
	deps.IsTerminal = func(io.Writer) bool { return tty }
	deps.TerminalWidth = func() int { return 100 }
	return deps, ui, clip
}

// backend is a fake POST /chat server recording decoded requests
type backend struct {
	*httptest.Server
	mu       sync.Mutex
	requests []models.ChatRequest
}

func newBackend(t *testing.T, status int, body string) *backend {
	t.Helper()
	b := &backend{}
	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req models.ChatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.mu.Lock()
		b.requests = append(b.requests, req)
		b.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(b.Close)
	return b
}

func (b *backend) Requests() []models.ChatRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.ChatRequest(nil), b.requests...)
}

const helloReply = `{"choices":[{"message":{"role":"assistant","content":"Hi **there**"}}]}`

// execute runs a fresh command tree. A nil stdin behaves like a terminal.
func execute(t *testing.T, deps *Dependencies, stdin io.Reader, args ...string) (string, string, error) {
	t.Helper()
	if stdin == nil {
		f, err := os.Open(os.DevNull)
		require.NoError(t, err)
		t.Cleanup(func() { f.Close() })
		stdin = f
	}

	root := NewRootCmd(deps)
	// stderr is shared with the spinner goroutine
	var stdout bytes.Buffer
	stderr := &syncBuffer{}
	root.SetOut(&stdout)
	root.SetErr(stderr)
	root.SetIn(stdin)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}
