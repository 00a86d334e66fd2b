package api

import (
	"context"
	"sync"

	"github.com/diogo/chatwidget/internal/models"
)

// MockChatClient is a mock implementation of ChatClientInterface for testing
type MockChatClient struct {
	// Mock return values
	Response *models.ChatResponse
	Err      error
	// SendFunc, when set, replaces Response/Err
	SendFunc    func(ctx context.Context, req *models.ChatRequest) (*models.ChatResponse, error)
	EndpointVal string

	mu       sync.Mutex
	requests []*models.ChatRequest
}

// Ensure MockChatClient implements ChatClientInterface
var _ ChatClientInterface = (*MockChatClient)(nil)

// NewMockReply returns a mock that answers every request with content
func NewMockReply(content string) *MockChatClient {
	return &MockChatClient{
		Response: &models.ChatResponse{
			Choices: []models.Choice{{Message: models.NewAssistantMessage(content)}},
		},
	}
}

func (m *MockChatClient) SendChat(ctx context.Context, req *models.ChatRequest) (*models.ChatResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.SendFunc != nil {
		return m.SendFunc(ctx, req)
	}
	return m.Response, m.Err
}

func (m *MockChatClient) Endpoint() string {
	if m.EndpointVal == "" {
		return models.DefaultBaseURL + models.EndpointChat
	}
	return m.EndpointVal
}

// Requests returns every request received so far
func (m *MockChatClient) Requests() []*models.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.ChatRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// CallCount returns how many requests were received
func (m *MockChatClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}
