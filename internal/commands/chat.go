package commands

import (
	"github.com/spf13/cobra"

	"github.com/diogo/chatwidget/internal/render"
	"github.com/diogo/chatwidget/internal/tui"
)

func newChatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session.

Enter sends the message; Alt+Enter or Ctrl+J inserts a newline.
Type /clear to start over, /copy to copy the last reply, /save [file]
to export the conversation (.md, .json or .html).
Type 'exit', 'quit', or press Ctrl+C to end the session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runChat(cmd)
		},
	}
}

// runChat starts the TUI. Logs only go to the configured log file because
// the TUI owns the terminal.
func (a *app) runChat(cmd *cobra.Command) error {
	widget, endpoint, closeLog, err := a.newWidget(nil)
	if err != nil {
		return err
	}
	defer closeLog()

	if a.cfg.TUITheme != "" && render.SetTUITheme(a.cfg.TUITheme) {
		tui.UpdateTheme()
	}

	return a.deps.TUI.RunChat(widget, tui.Options{
		Endpoint: endpoint,
		Render:   render.OptionsFromConfig(a.cfg.Markdown),
		Copy:     a.deps.Copy,
		Context:  cmd.Context(),
	})
}
