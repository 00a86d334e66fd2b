// Package commands provides CLI commands for chatwidget.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/diogo/chatwidget/internal/chat"
	"github.com/diogo/chatwidget/internal/config"
	"github.com/diogo/chatwidget/internal/logging"
)

var (
	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// flags holds every command-line flag value
type flags struct {
	// Global
	endpoint    string
	model       string
	temperature float64
	history     bool
	system      string
	logLevel    string
	logFile     string

	// One-shot query
	file    string
	output  string
	raw     bool
	copy    bool
	version bool
}

// app is the state shared by the command tree of one invocation
type app struct {
	deps  *Dependencies
	flags flags
	cfg   config.Config
}

// NewRootCmd builds the command tree around deps
func NewRootCmd(deps *Dependencies) *cobra.Command {
	if deps == nil {
		deps = NewDependencies()
	}
	a := &app{deps: deps, cfg: config.DefaultConfig()}

	root := &cobra.Command{
		Use:   "chatwidget [prompt]",
		Short: "Terminal chat client for a POST /chat backend",
		Long: `chatwidget sends messages to a chat backend exposing POST /chat and
renders the markdown replies in the terminal.

Examples:
  chatwidget                              Start interactive chat
  chatwidget chat                         Start interactive chat
  chatwidget "What is Go?"                Send a single query
  chatwidget -f prompt.md                 Read prompt from file
  cat prompt.md | chatwidget              Read prompt from stdin
  chatwidget "Hello" -o reply.md          Save the reply to a file
  chatwidget -e http://10.0.0.2:8000 chat Use another backend
  chatwidget config set send_history true`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.flags.version {
				return nil
			}
			return a.loadConfig(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.flags.version {
				fmt.Fprintf(cmd.OutOrStdout(), "chatwidget %s (built %s)\n", Version, BuildTime)
				return nil
			}

			prompt, ok, err := a.readPrompt(cmd, args)
			if err != nil {
				return err
			}
			if !ok {
				return a.runChat(cmd)
			}
			return a.runQuery(cmd, prompt)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.flags.endpoint, "endpoint", "e", "", "Backend base URL (e.g., http://localhost:8000)")
	pf.StringVarP(&a.flags.model, "model", "m", "", "Model name sent with each request")
	pf.Float64VarP(&a.flags.temperature, "temperature", "t", 0, "Sampling temperature (0-2)")
	pf.BoolVar(&a.flags.history, "history", false, "Send the whole conversation instead of only the latest message")
	pf.StringVar(&a.flags.system, "system", "", "System prompt prepended to every request")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&a.flags.logFile, "log-file", "", "Append JSON logs to this file")

	f := root.Flags()
	f.StringVarP(&a.flags.file, "file", "f", "", "Read prompt from file")
	f.StringVarP(&a.flags.output, "output", "o", "", "Save reply to file")
	f.BoolVar(&a.flags.raw, "raw", false, "Print the raw reply without rendering")
	f.BoolVar(&a.flags.copy, "copy", false, "Copy the reply to the clipboard")
	f.BoolVarP(&a.flags.version, "version", "v", false, "Show version and exit")

	root.AddCommand(newChatCmd(a))
	root.AddCommand(newConfigCmd())

	return root
}

var rootCmd = NewRootCmd(nil)

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, formatErrorMessage(err, "Error"))
		os.Exit(1)
	}
}

// loadConfig resolves the configuration: defaults, config file, .env and
// CHATWIDGET_* variables, then flags
func (a *app) loadConfig(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	fs := cmd.Flags()
	if fs.Changed("endpoint") {
		cfg.BaseURL = a.flags.endpoint
	}
	if fs.Changed("model") {
		cfg.Model = a.flags.model
	}
	if fs.Changed("temperature") {
		cfg.Temperature = a.flags.temperature
	}
	if fs.Changed("history") {
		cfg.SendHistory = a.flags.history
	}
	if fs.Changed("system") {
		cfg.SystemPrompt = a.flags.system
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = a.flags.logLevel
	}
	if fs.Changed("log-file") {
		cfg.LogFile = a.flags.logFile
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	a.cfg = cfg
	return nil
}

// readPrompt returns the one-shot prompt from --file, the argument or piped
// stdin. ok is false when there is none and the chat TUI should start.
func (a *app) readPrompt(cmd *cobra.Command, args []string) (string, bool, error) {
	if a.flags.file != "" {
		data, err := os.ReadFile(a.flags.file)
		if err != nil {
			return "", false, fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), true, nil
	}

	if len(args) > 0 {
		return args[0], true, nil
	}

	in := cmd.InOrStdin()
	if stdinPiped(in) {
		data, err := io.ReadAll(in)
		if err != nil {
			return "", false, fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), true, nil
	}

	return "", false, nil
}

// stdinPiped reports whether r carries redirected input rather than a terminal
func stdinPiped(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return r != nil
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice == 0
}

func (a *app) params() chat.Params {
	return chat.Params{
		Model:        a.cfg.Model,
		Temperature:  a.cfg.Temperature,
		MaxTokens:    a.cfg.MaxTokens,
		SystemPrompt: a.cfg.SystemPrompt,
		SendHistory:  a.cfg.SendHistory,
	}
}

// newWidget builds the client and the widget, logging to console when set
func (a *app) newWidget(console io.Writer) (*chat.Widget, string, func() error, error) {
	logger, closeLog, err := logging.Setup(a.cfg.LogLevel, a.cfg.LogFile, console)
	if err != nil {
		return nil, "", nil, err
	}

	client, err := a.deps.NewClient(a.cfg, logger.With().Str("component", "api").Logger())
	if err != nil {
		_ = closeLog()
		return nil, "", nil, fmt.Errorf("failed to create client: %w", err)
	}

	logger.Debug().
		Str("endpoint", client.Endpoint()).
		Str("model", a.cfg.Model).
		Bool("send_history", a.cfg.SendHistory).
		Msg("client ready")

	widget := chat.NewWidget(client,
		chat.WithParams(a.params()),
		chat.WithLogger(logger.With().Str("component", "widget").Logger()),
	)
	return widget, client.Endpoint(), closeLog, nil
}
