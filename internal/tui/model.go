package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/chatwidget/internal/chat"
	"github.com/diogo/chatwidget/internal/export"
	"github.com/diogo/chatwidget/internal/models"
	"github.com/diogo/chatwidget/internal/render"
)

// replyMsg carries the outcome of a turn back to the UI goroutine
type replyMsg struct {
	turn *chat.Turn
	resp *models.ChatResponse
	err  error
}

// Options configures the chat model
type Options struct {
	// Endpoint is shown in the header and recorded in exports
	Endpoint string
	// Render configures assistant markdown; Width is managed by the model
	Render render.Options
	// Copy writes text to the system clipboard
	Copy func(string) error
	// Context bounds every request issued from the TUI
	Context context.Context
	// Now is the clock used for default export names
	Now func() time.Time
}

// Model represents the TUI state
type Model struct {
	widget *chat.Widget
	opts   Options
	keys   keyMap

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// State
	ready     bool
	usage     *models.Usage
	notice    string
	noticeErr bool

	// Dimensions
	width  int
	height int
}

// NewChatModel creates a chat TUI model driving widget
func NewChatModel(widget *chat.Widget, opts Options) Model {
	if opts.Copy == nil {
		opts.Copy = clipboard.WriteAll
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Render.Style == "" {
		opts.Render = render.DefaultOptions()
	}

	keys := defaultKeyMap()

	ta := textarea.New()
	ta.Placeholder = "Type your message here..."
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.KeyMap.InsertNewline = keys.Newline
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	return Model{
		widget:   widget,
		opts:     opts,
		keys:     keys,
		textarea: ta,
		spinner:  s,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Escape):
			// There is no cancellation; esc only quits when idle
			if m.widget.Busy() {
				return m, nil
			}
			return m, tea.Quit

		case key.Matches(msg, m.keys.Send):
			if m.widget.Busy() {
				return m, nil
			}
			return m.submit()
		}

	case replyMsg:
		entry := msg.turn.Finish(msg.resp, msg.err)
		if entry.Kind == chat.EntryAssistant && msg.resp != nil && msg.resp.Usage != nil {
			m.usage = msg.resp.Usage
		}
		m.updateViewport()
		m.viewport.GotoBottom()

	case spinner.TickMsg:
		if m.widget.Busy() {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
			m.updateViewport()
		}
	}

	// Only pass KeyMsg to textarea to prevent escape sequence leaks.
	// The input stays editable while a reply is pending; only sending waits.
	if _, ok := msg.(tea.KeyMsg); ok {
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	headerHeight := 4 // Header panel with border
	inputHeight := 6  // Input panel with border
	statusHeight := 2 // Status bar and notice line
	padding := 2

	vpHeight := m.height - headerHeight - inputHeight - statusHeight - padding
	if vpHeight < 5 {
		vpHeight = 5
	}
	contentWidth := m.width - 4

	if !m.ready {
		m.viewport = viewport.New(contentWidth, vpHeight)
		m.viewport.KeyMap = scrollKeyMap()
		m.ready = true
	} else {
		m.viewport.Width = contentWidth
		m.viewport.Height = vpHeight
	}
	m.textarea.SetWidth(contentWidth - 4)
	m.updateViewport()
}

// scrollKeyMap keeps letter keys for the textarea; the transcript scrolls
// with the page keys and the mouse wheel only.
func scrollKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageUp:   key.NewBinding(key.WithKeys("pgup")),
		PageDown: key.NewBinding(key.WithKeys("pgdown")),
	}
}

// submit handles the text in the input: local commands first, otherwise a
// new turn is started and its request dispatched.
func (m Model) submit() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.textarea.Value())
	if input == "" {
		return m, nil
	}

	if handled, cmd := m.runCommand(input); handled {
		m.textarea.Reset()
		return m, cmd
	}

	turn, ok := m.widget.Begin(input)
	if !ok {
		return m, nil
	}

	m.textarea.Reset()
	m.notice = ""
	m.updateViewport()
	m.viewport.GotoBottom()

	return m, tea.Batch(
		m.sendMessage(turn),
		m.spinner.Tick,
	)
}

// runCommand executes the local slash commands. They never issue requests.
func (m *Model) runCommand(input string) (bool, tea.Cmd) {
	name, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case "exit", "quit", "/exit", "/quit":
		if arg != "" {
			return false, nil
		}
		return true, tea.Quit

	case "/clear":
		if err := m.widget.Reset(); err != nil {
			m.setNotice(err.Error(), true)
			return true, nil
		}
		m.usage = nil
		m.setNotice("Conversation cleared", false)

	case "/copy":
		reply, ok := m.widget.Transcript().LastAssistant()
		if !ok {
			m.setNotice("Nothing to copy yet", true)
			return true, nil
		}
		if err := m.opts.Copy(reply); err != nil {
			m.setNotice("Copy failed: "+err.Error(), true)
			return true, nil
		}
		m.setNotice("Last reply copied to clipboard", false)

	case "/save":
		path := arg
		if path == "" {
			path = export.DefaultFilename(m.opts.Now())
		}
		meta := export.Meta{
			Model:    m.widget.Params().Model,
			Endpoint: m.opts.Endpoint,
			Exported: m.opts.Now(),
		}
		if err := export.WriteFile(path, m.widget.Transcript().Entries(), meta); err != nil {
			m.setNotice("Save failed: "+err.Error(), true)
			return true, nil
		}
		m.setNotice("Saved to "+path, false)

	default:
		return false, nil
	}

	m.updateViewport()
	return true, nil
}

func (m *Model) setNotice(text string, isErr bool) {
	m.notice = text
	m.noticeErr = isErr
}

// sendMessage creates a command that runs the turn off the UI goroutine
func (m Model) sendMessage(turn *chat.Turn) tea.Cmd {
	ctx := m.opts.Context
	return func() tea.Msg {
		resp, err := turn.Run(ctx)
		return replyMsg{turn: turn, resp: resp, err: err}
	}
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	var sections []string
	contentWidth := m.width - 4

	// Header
	headerParts := []string{
		titleStyle.Render("✦ Chat"),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(m.widget.Params().Model),
	}
	if m.opts.Endpoint != "" {
		headerParts = append(headerParts,
			hintStyle.Render("  •  "),
			hintStyle.Render(m.opts.Endpoint),
		)
	}
	header := headerStyle.Width(contentWidth).Render(
		lipgloss.JoinHorizontal(lipgloss.Center, headerParts...),
	)
	sections = append(sections, header)

	// Messages
	var messagesContent string
	if m.widget.Transcript().ShowsWelcome() {
		messagesContent = m.renderWelcome()
	} else {
		messagesContent = m.viewport.View()
	}
	sections = append(sections, messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(messagesContent))

	// Input
	label := inputLabelStyle.Render("You")
	if m.widget.Busy() {
		label = loadingStyle.Render(m.spinner.View() + " Waiting for reply")
	}
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, label, m.textarea.View()),
	))

	sections = append(sections, m.renderStatusBar(contentWidth))

	if m.notice != "" {
		style := noticeStyle
		if m.noticeErr {
			style = errorStyle.PaddingLeft(2)
		}
		sections = append(sections, style.Render(m.notice))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderWelcome renders the welcome screen shown until the first message
func (m Model) renderWelcome() string {
	width := m.viewport.Width - 4
	height := m.viewport.Height

	icon := welcomeIconStyle.Width(width).Render("✦")
	title := welcomeTitleStyle.Width(width).Render("Hello! How can I help you today?")
	subtitle := welcomeStyle.Width(width).Render("Type a message below and press Enter to send")

	content := lipgloss.JoinVertical(lipgloss.Center, "", icon, "", title, "", subtitle, "")

	topPadding := (height - lipgloss.Height(content)) / 2
	if topPadding < 0 {
		topPadding = 0
	}
	return strings.Repeat("\n", topPadding) + content
}

// renderStatusBar renders the bottom status bar with shortcuts and usage
func (m Model) renderStatusBar(width int) string {
	shortcuts := []key.Binding{m.keys.Send, m.keys.Newline, m.keys.Escape}

	var items []string
	for _, b := range shortcuts {
		h := b.Help()
		items = append(items, statusKeyStyle.Render(h.Key)+statusDescStyle.Render(" "+h.Desc))
	}
	items = append(items, statusKeyStyle.Render("PgUp/PgDn")+statusDescStyle.Render(" Scroll"))

	if m.usage != nil {
		items = append(items, statusDescStyle.Render(fmt.Sprintf(
			"tokens %d in / %d out", m.usage.PromptTokens, m.usage.CompletionTokens)))
	}

	bar := strings.Join(items, "  │  ")
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(bar)
}

// updateViewport refreshes the viewport content with styled entries
func (m *Model) updateViewport() {
	if !m.ready {
		return
	}

	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6
	opts := m.opts.Render.WithWidth(bubbleWidth - 4)

	for i, e := range m.widget.Transcript().Entries() {
		if i > 0 {
			content.WriteString("\n")
		}
		content.WriteString(m.renderEntry(e, bubbleWidth, opts))
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

func (m Model) renderEntry(e chat.Entry, bubbleWidth int, opts render.Options) string {
	switch e.Kind {
	case chat.EntryUser:
		label := userLabelStyle.Render("● You")
		return label + "\n" + userBubbleStyle.Width(bubbleWidth).Render(render.PlainText(e.Content))

	case chat.EntryAssistant:
		label := assistantLabelStyle.Render("✦ Assistant")
		rendered := render.MarkdownOrPlain(e.Content, opts)
		return label + "\n" + assistantBubbleStyle.Width(bubbleWidth).Render(rendered)

	case chat.EntryError:
		label := assistantLabelStyle.Render("✦ Assistant")
		return label + "\n" + errorBubbleStyle.Width(bubbleWidth).Render("❌ "+render.PlainText(e.Content))

	default:
		label := assistantLabelStyle.Render("✦ Assistant")
		return label + "\n" + thinkingStyle.Render(m.spinner.View()+" Thinking...")
	}
}

// RunChat starts the chat TUI
func RunChat(widget *chat.Widget, opts Options) error {
	m := NewChatModel(widget, opts)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err := p.Run()
	return err
}
