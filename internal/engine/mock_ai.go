package engine

import (
	"context"
	"sync"

	"github.com/finwell-app/finwell/internal/llm"
)

// MockAIClient is a configurable llm.Client for tests and dry runs.
type MockAIClient struct {
	// ClassifyFunc, when set, handles each call. Otherwise Responses are
	// replayed in order, then the zero response.
	ClassifyFunc func(ctx context.Context, req llm.BatchRequest) (llm.BatchResponse, error)
	Responses    []llm.BatchResponse
	Err          error

	mu       sync.Mutex
	requests []llm.BatchRequest
}

// ClassifyTransactions implements llm.Client.
func (m *MockAIClient) ClassifyTransactions(ctx context.Context, req llm.BatchRequest) (llm.BatchResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	call := len(m.requests) - 1
	m.mu.Unlock()

	if m.ClassifyFunc != nil {
		return m.ClassifyFunc(ctx, req)
	}
	if m.Err != nil {
		return llm.BatchResponse{}, m.Err
	}
	if call < len(m.Responses) {
		return m.Responses[call], nil
	}
	return llm.BatchResponse{Success: true}, nil
}

// Requests returns the batch requests seen so far.
func (m *MockAIClient) Requests() []llm.BatchRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]llm.BatchRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// CallCount returns how many batches were sent.
func (m *MockAIClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}
