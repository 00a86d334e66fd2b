package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/diogo/chatwidget/internal/api"
	apierrors "github.com/diogo/chatwidget/internal/errors"
	"github.com/diogo/chatwidget/internal/models"
)

// Params are the fixed request parameters sent with every message
type Params struct {
	Model        string
	Temperature  float64
	MaxTokens    int
	SystemPrompt string
	// SendHistory sends every user/assistant entry instead of only the latest message
	SendHistory bool
}

// DefaultParams returns the parameters of the stock widget
func DefaultParams() Params {
	return Params{
		Model:       models.DefaultModel,
		Temperature: models.DefaultTemperature,
	}
}

// Widget owns the transcript and the busy flag. It is not safe for
// concurrent use: Begin, Finish and Reset must run on the UI goroutine.
// Only Turn.Run may execute elsewhere.
type Widget struct {
	client     api.ChatClientInterface
	params     Params
	transcript *Transcript
	busy       bool
	now        func() time.Time
	logger     zerolog.Logger
}

// Option configures a Widget
type Option func(*Widget)

// WithParams overrides the request parameters
func WithParams(p Params) Option {
	return func(w *Widget) {
		w.params = p
	}
}

// WithClock sets the time source used for entry timestamps and placeholder ids
func WithClock(now func() time.Time) Option {
	return func(w *Widget) {
		w.now = now
	}
}

// WithLogger sets the widget logger
func WithLogger(logger zerolog.Logger) Option {
	return func(w *Widget) {
		w.logger = logger
	}
}

// NewWidget creates a widget sending through client
func NewWidget(client api.ChatClientInterface, opts ...Option) *Widget {
	w := &Widget{
		client:     client,
		params:     DefaultParams(),
		transcript: NewTranscript(),
		now:        time.Now,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Busy reports whether a request is in flight
func (w *Widget) Busy() bool {
	return w.busy
}

// Transcript returns the widget transcript
func (w *Widget) Transcript() *Transcript {
	return w.transcript
}

// Params returns the request parameters
func (w *Widget) Params() Params {
	return w.params
}

// Reset clears the transcript. It is refused while a request is in flight.
func (w *Widget) Reset() error {
	if w.busy {
		return apierrors.ErrBusy
	}
	w.transcript.Clear()
	return nil
}

// Begin validates text and, when accepted, appends the user entry, opens the
// placeholder, marks the widget busy and returns the turn that must be finished.
// Empty input or an in-flight request make Begin a silent no-op.
func (w *Widget) Begin(text string) (*Turn, bool) {
	text = strings.TrimSpace(text)
	if text == "" || w.busy {
		return nil, false
	}

	now := w.now()
	user := w.transcript.Append(EntryUser, text, now)
	placeholder := w.transcript.OpenPlaceholder(now)
	w.busy = true

	turn := &Turn{
		widget:        w,
		client:        w.client,
		placeholderID: placeholder,
		User:          user,
		Request:       w.buildRequest(text),
	}

	w.logger.Debug().
		Str("placeholder", placeholder).
		Int("messages", len(turn.Request.Messages)).
		Msg("turn started")

	return turn, true
}

// Submit runs a whole turn synchronously and returns its terminal entry.
// It returns false when the input was rejected.
func (w *Widget) Submit(ctx context.Context, text string) (Entry, bool) {
	turn, ok := w.Begin(text)
	if !ok {
		return Entry{}, false
	}

	resp, err := turn.Run(ctx)
	return turn.Finish(resp, err), true
}

func (w *Widget) buildRequest(latest string) *models.ChatRequest {
	var msgs []models.Message
	if w.params.SystemPrompt != "" {
		msgs = append(msgs, models.NewSystemMessage(w.params.SystemPrompt))
	}
	if w.params.SendHistory {
		msgs = append(msgs, w.transcript.Messages()...)
	} else {
		msgs = append(msgs, models.NewUserMessage(latest))
	}

	req := &models.ChatRequest{
		Messages:    msgs,
		Model:       w.params.Model,
		Temperature: w.params.Temperature,
	}
	if w.params.MaxTokens > 0 {
		limit := w.params.MaxTokens
		req.MaxTokens = &limit
	}
	return req
}

// Turn is one accepted submission. It holds the busy flag from Begin until
// Finish; every exit path must call Finish exactly once.
type Turn struct {
	widget        *Widget
	client        api.ChatClientInterface
	placeholderID string

	// User is the entry appended for the submitted text
	User Entry
	// Request is the immutable payload sent for this turn
	Request *models.ChatRequest

	once   sync.Once
	result Entry
}

// PlaceholderID returns the id of the turn's thinking placeholder
func (t *Turn) PlaceholderID() string {
	return t.placeholderID
}

// Run issues the network call. It touches no widget state and may run on
// any goroutine. A panicking client is reported as an error.
func (t *Turn) Run(ctx context.Context) (resp *models.ChatResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			resp = nil
			err = fmt.Errorf("send panicked: %v", r)
		}
	}()
	return t.client.SendChat(ctx, t.Request)
}

// Finish removes the placeholder, appends the reply or the error and
// releases the busy flag. Later calls return the first result unchanged.
func (t *Turn) Finish(resp *models.ChatResponse, err error) Entry {
	t.once.Do(func() {
		w := t.widget
		defer func() { w.busy = false }()

		w.transcript.Remove(t.placeholderID)

		var content string
		if err == nil {
			content, err = resp.FirstContent()
		}

		now := w.now()
		if err != nil {
			w.logger.Warn().Err(err).Msg("turn failed")
			t.result = w.transcript.Append(EntryError, apierrors.UserMessage(err), now)
			return
		}

		w.logger.Debug().Int("length", len(content)).Msg("turn completed")
		t.result = w.transcript.Append(EntryAssistant, content, now)
	})
	return t.result
}
