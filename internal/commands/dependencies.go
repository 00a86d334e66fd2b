package commands

import (
	"io"
	"os"

	"github.com/atotto/clipboard"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/diogo/chatwidget/internal/api"
	"github.com/diogo/chatwidget/internal/chat"
	"github.com/diogo/chatwidget/internal/config"
	"github.com/diogo/chatwidget/internal/tui"
)

// TUIInterface defines the methods required from the TUI package.
type TUIInterface interface {
	RunChat(widget *chat.Widget, opts tui.Options) error
}

// ClientFactory builds the backend client for a resolved configuration
type ClientFactory func(cfg config.Config, logger zerolog.Logger) (api.ChatClientInterface, error)

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// NewClient builds the chat backend client.
	NewClient ClientFactory

	// TUI is the terminal user interface.
	TUI TUIInterface

	// Copy writes text to the system clipboard.
	Copy func(string) error

	// IsTerminal reports whether w is attached to a terminal.
	IsTerminal func(w io.Writer) bool

	// TerminalWidth returns the width used to wrap rendered replies.
	TerminalWidth func() int
}

// DefaultTUI is the production implementation of TUIInterface.
type DefaultTUI struct{}

func (d *DefaultTUI) RunChat(widget *chat.Widget, opts tui.Options) error {
	return tui.RunChat(widget, opts)
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		NewClient:     newHTTPClient,
		TUI:           &DefaultTUI{},
		Copy:          clipboard.WriteAll,
		IsTerminal:    isTerminal,
		TerminalWidth: getTerminalWidth,
	}
}

func newHTTPClient(cfg config.Config, logger zerolog.Logger) (api.ChatClientInterface, error) {
	client, err := api.NewClient(cfg.BaseURL,
		api.WithTimeout(cfg.Timeout()),
		api.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// isTerminal returns true if w is a file connected to a terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}
