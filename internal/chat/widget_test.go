package chat

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diogo/chatwidget/internal/api"
	apierrors "github.com/diogo/chatwidget/internal/errors"
	"github.com/diogo/chatwidget/internal/models"
)

func fixedClock() func() time.Time {
	t0 := time.UnixMilli(1700000000000)
	return func() time.Time { return t0 }
}

func TestSubmitRejectsEmptyInput(t *testing.T) {
	mock := api.NewMockReply("unused")
	w := NewWidget(mock)

	for _, input := range []string{"", "   ", "\n\t  \n"} {
		_, ok := w.Submit(context.Background(), input)
		assert.False(t, ok, "input %q should be rejected", input)
	}

	assert.Equal(t, 0, mock.CallCount())
	assert.Equal(t, 0, w.Transcript().Len())
	assert.True(t, w.Transcript().ShowsWelcome())
	assert.False(t, w.Busy())
}

func TestBeginRejectsWhileBusy(t *testing.T) {
	mock := api.NewMockReply("first reply")
	w := NewWidget(mock)

	turn, ok := w.Begin("first")
	require.True(t, ok)
	assert.True(t, w.Busy())

	_, ok = w.Begin("second")
	assert.False(t, ok)
	assert.Equal(t, 1, w.Transcript().Count(EntryUser))
	assert.Equal(t, 1, w.Transcript().Count(EntryPlaceholder))

	resp, err := turn.Run(context.Background())
	turn.Finish(resp, err)
	assert.False(t, w.Busy())

	_, ok = w.Begin("second")
	assert.True(t, ok)
}

func TestUserEntryIsLiteral(t *testing.T) {
	inputs := []string{"Hello", "**not bold**", "<script>alert(1)</script>", "line one\nline two", "\x1b[31mred\x1b[0m"}

	for _, input := range inputs {
		w := NewWidget(api.NewMockReply("ok"))
		_, ok := w.Submit(context.Background(), input)
		require.True(t, ok)

		entries := w.Transcript().Entries()
		require.Len(t, entries, 2)
		assert.Equal(t, EntryUser, entries[0].Kind)
		assert.Equal(t, input, entries[0].Content)
	}
}

func TestSubmitTrimsInput(t *testing.T) {
	mock := api.NewMockReply("ok")
	w := NewWidget(mock)

	_, ok := w.Submit(context.Background(), "  padded  \n")
	require.True(t, ok)

	assert.Equal(t, "padded", w.Transcript().Entries()[0].Content)
	assert.Equal(t, "padded", mock.Requests()[0].Messages[0].Content)
}

func TestPendingTurnShowsOnePlaceholder(t *testing.T) {
	w := NewWidget(api.NewMockReply("done"), WithClock(fixedClock()))

	turn, ok := w.Begin("Hello")
	require.True(t, ok)

	entries := w.Transcript().Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, EntryPlaceholder, entries[1].Kind)
	assert.Equal(t, "thinking-1700000000000", turn.PlaceholderID())
	assert.Equal(t, turn.PlaceholderID(), entries[1].ID)

	resp, err := turn.Run(context.Background())
	entry := turn.Finish(resp, err)

	entries = w.Transcript().Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, 0, w.Transcript().Count(EntryPlaceholder))
	assert.Equal(t, EntryAssistant, entries[1].Kind)
	assert.Equal(t, entry, entries[1])
}

func TestSubmitHelloScenario(t *testing.T) {
	mock := api.NewMockReply("Hi **there**")
	w := NewWidget(mock)

	entry, ok := w.Submit(context.Background(), "Hello")
	require.True(t, ok)
	assert.Equal(t, EntryAssistant, entry.Kind)
	assert.Equal(t, "Hi **there**", entry.Content)

	entries := w.Transcript().Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, EntryUser, entries[0].Kind)
	assert.Equal(t, "Hello", entries[0].Content)
	assert.Equal(t, "Hi **there**", entries[1].Content)

	require.Equal(t, 1, mock.CallCount())
	req := mock.Requests()[0]
	assert.Equal(t, []models.Message{models.NewUserMessage("Hello")}, req.Messages)
	assert.Equal(t, "gpt-5", req.Model)
	assert.Equal(t, 0.7, req.Temperature)
	assert.Nil(t, req.MaxTokens)
}

func TestSubmitBackendDetailThenRetry(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, `{"detail":"rate limited"}`)
			return
		}
		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"recovered"}}]}`)
	}))
	defer server.Close()

	client, err := api.NewClient(server.URL)
	require.NoError(t, err)
	w := NewWidget(client)

	entry, ok := w.Submit(context.Background(), "first")
	require.True(t, ok)
	assert.Equal(t, EntryError, entry.Kind)
	assert.Contains(t, entry.Content, "rate limited")
	assert.False(t, w.Busy())

	entry, ok = w.Submit(context.Background(), "second")
	require.True(t, ok)
	assert.Equal(t, EntryAssistant, entry.Kind)
	assert.Equal(t, "recovered", entry.Content)
	assert.Equal(t, 0, w.Transcript().Count(EntryPlaceholder))
}

func TestSubmitStatusWithoutJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := api.NewClient(server.URL)
	require.NoError(t, err)
	w := NewWidget(client)

	entry, ok := w.Submit(context.Background(), "Hello")
	require.True(t, ok)
	assert.Equal(t, EntryError, entry.Kind)
	assert.Equal(t, "HTTP error! status: 500", entry.Content)
}

func TestFinishFailurePaths(t *testing.T) {
	tests := []struct {
		name string
		resp *models.ChatResponse
		err  error
		want string
	}{
		{"network error", nil, apierrors.NewNetworkError("send chat", io.ErrUnexpectedEOF), "network error during send chat: unexpected EOF"},
		{"no choices", &models.ChatResponse{}, nil, "parse error: response has no choices (at choices.0.message.content)"},
		{"nil response", nil, nil, "parse error: response has no choices (at choices.0.message.content)"},
		{"empty message", nil, emptyErr{}, apierrors.FallbackMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWidget(api.NewMockReply(""))
			turn, ok := w.Begin("Hello")
			require.True(t, ok)

			entry := turn.Finish(tt.resp, tt.err)
			assert.Equal(t, EntryError, entry.Kind)
			assert.Equal(t, tt.want, entry.Content)
			assert.False(t, w.Busy())
			assert.Equal(t, 0, w.Transcript().Count(EntryPlaceholder))
		})
	}
}

type emptyErr struct{}

func (emptyErr) Error() string { return "" }

func TestRunRecoversPanics(t *testing.T) {
	mock := &api.MockChatClient{
		SendFunc: func(ctx context.Context, req *models.ChatRequest) (*models.ChatResponse, error) {
			panic("transport exploded")
		},
	}
	w := NewWidget(mock)

	entry, ok := w.Submit(context.Background(), "Hello")
	require.True(t, ok)
	assert.Equal(t, EntryError, entry.Kind)
	assert.Contains(t, entry.Content, "transport exploded")
	assert.False(t, w.Busy())
}

func TestFinishIsIdempotent(t *testing.T) {
	w := NewWidget(api.NewMockReply("ok"))
	turn, ok := w.Begin("Hello")
	require.True(t, ok)

	first := turn.Finish(api.NewMockReply("ok").Response, nil)
	second := turn.Finish(nil, apierrors.ErrNoContent)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, w.Transcript().Len())
	assert.Equal(t, 0, w.Transcript().Count(EntryError))
}

func TestRequestParams(t *testing.T) {
	mock := api.NewMockReply("reply")
	w := NewWidget(mock, WithParams(Params{
		Model:        "gpt-4o",
		Temperature:  1.2,
		MaxTokens:    500,
		SystemPrompt: "Be brief.",
	}))

	_, ok := w.Submit(context.Background(), "Hello")
	require.True(t, ok)

	req := mock.Requests()[0]
	assert.Equal(t, "gpt-4o", req.Model)
	assert.Equal(t, 1.2, req.Temperature)
	require.NotNil(t, req.MaxTokens)
	assert.Equal(t, 500, *req.MaxTokens)
	assert.Equal(t, []models.Message{
		models.NewSystemMessage("Be brief."),
		models.NewUserMessage("Hello"),
	}, req.Messages)
}

func TestLatestMessageOnlyByDefault(t *testing.T) {
	mock := api.NewMockReply("reply")
	w := NewWidget(mock)

	w.Submit(context.Background(), "one")
	w.Submit(context.Background(), "two")

	reqs := mock.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, []models.Message{models.NewUserMessage("two")}, reqs[1].Messages)
}

func TestSendHistory(t *testing.T) {
	mock := api.NewMockReply("reply")
	params := DefaultParams()
	params.SendHistory = true
	w := NewWidget(mock, WithParams(params))

	w.Submit(context.Background(), "one")
	mock.Err = apierrors.NewAPIError(500, "/chat", "boom")
	w.Submit(context.Background(), "two")
	mock.Err = nil
	w.Submit(context.Background(), "three")

	reqs := mock.Requests()
	require.Len(t, reqs, 3)
	// Error entries are not part of the history
	assert.Equal(t, []models.Message{
		models.NewUserMessage("one"),
		models.NewAssistantMessage("reply"),
		models.NewUserMessage("two"),
		models.NewUserMessage("three"),
	}, reqs[2].Messages)
}

func TestReset(t *testing.T) {
	w := NewWidget(api.NewMockReply("reply"))
	w.Submit(context.Background(), "one")

	turn, ok := w.Begin("two")
	require.True(t, ok)
	assert.ErrorIs(t, w.Reset(), apierrors.ErrBusy)

	turn.Finish(nil, apierrors.ErrNoContent)
	require.NoError(t, w.Reset())
	assert.Equal(t, 0, w.Transcript().Len())
	assert.True(t, w.Transcript().ShowsWelcome())
}

func TestRunUsesContext(t *testing.T) {
	mock := &api.MockChatClient{
		SendFunc: func(ctx context.Context, req *models.ChatRequest) (*models.ChatResponse, error) {
			<-ctx.Done()
			return nil, apierrors.NewNetworkError("send chat", ctx.Err())
		},
	}
	w := NewWidget(mock)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	entry, ok := w.Submit(ctx, "Hello")
	require.True(t, ok)
	assert.Equal(t, EntryError, entry.Kind)
	assert.Contains(t, entry.Content, "context canceled")
}
