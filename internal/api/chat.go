package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/chatwidget/internal/errors"
	"github.com/diogo/chatwidget/internal/models"
)

// maxErrorBody caps how much of a failed response is kept for diagnostics
const maxErrorBody = 4096

// SendChat posts req to the chat endpoint and returns the parsed reply.
// Any non-2xx status is an *errors.APIError; a 2xx body without
// choices[0].message.content is an *errors.ParseError.
func (c *Client) SendChat(ctx context.Context, req *models.ChatRequest) (*models.ChatResponse, error) {
	if req == nil || len(req.Messages) == 0 {
		return nil, apierrors.ErrEmptyPrompt
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	endpoint := c.Endpoint()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range c.headers {
		httpReq.Header.Set(key, value)
	}

	start := time.Now()
	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("model", req.Model).
		Int("messages", len(req.Messages)).
		Msg("sending chat request")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("chat request failed")
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return nil, apierrors.NewTimeoutError("no response from " + endpoint)
		}
		return nil, apierrors.NewNetworkErrorWithEndpoint("send chat", endpoint, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		detail := extractDetail(body)
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Str("detail", detail).
			Dur("elapsed", time.Since(start)).
			Msg("chat request rejected")
		return nil, apierrors.NewAPIErrorWithBody(resp.StatusCode, endpoint, "chat request failed", detail, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierrors.NewNetworkErrorWithEndpoint("read chat response", endpoint, err)
	}

	out, err := parseChatResponse(body)
	if err != nil {
		c.logger.Warn().Err(err).Msg("chat response malformed")
		return nil, err
	}

	c.logger.Debug().
		Int("status", resp.StatusCode).
		Str("id", out.ID).
		Dur("elapsed", time.Since(start)).
		Msg("chat reply received")

	return out, nil
}

// extractDetail returns the backend's "detail" field. String details are
// used verbatim, any other JSON value is returned as raw JSON text.
func extractDetail(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	detail := gjson.GetBytes(body, "detail")
	switch {
	case !detail.Exists(), detail.Type == gjson.Null:
		return ""
	case detail.Type == gjson.String:
		return detail.Str
	default:
		return detail.Raw
	}
}

// parseChatResponse extracts the reply fields from a success body
func parseChatResponse(body []byte) (*models.ChatResponse, error) {
	if !gjson.ValidBytes(body) {
		return nil, apierrors.NewParseError("response is not valid JSON", "")
	}

	root := gjson.ParseBytes(body)
	content := root.Get("choices.0.message.content")
	if !content.Exists() {
		return nil, apierrors.NewParseError("missing reply content", "choices.0.message.content")
	}
	if content.Type != gjson.String {
		return nil, apierrors.NewParseError("reply content is not a string", "choices.0.message.content")
	}

	out := &models.ChatResponse{
		ID:      root.Get("id").String(),
		Object:  root.Get("object").String(),
		Created: root.Get("created").Int(),
		Model:   root.Get("model").String(),
	}

	root.Get("choices").ForEach(func(_, choice gjson.Result) bool {
		role := choice.Get("message.role").String()
		if role == "" {
			role = string(models.RoleAssistant)
		}
		out.Choices = append(out.Choices, models.Choice{
			Index: int(choice.Get("index").Int()),
			Message: models.Message{
				Role:    models.Role(role),
				Content: choice.Get("message.content").String(),
			},
			FinishReason: choice.Get("finish_reason").String(),
		})
		return true
	})

	if usage := root.Get("usage"); usage.IsObject() {
		out.Usage = &models.Usage{
			PromptTokens:     int(usage.Get("prompt_tokens").Int()),
			CompletionTokens: int(usage.Get("completion_tokens").Int()),
			TotalTokens:      int(usage.Get("total_tokens").Int()),
		}
	}

	return out, nil
}
