package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is one scripted reply: content or an error.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// Reply scripts a successful answer.
func Reply(content string) MockResponse {
	return MockResponse{Content: json.RawMessage(content)}
}

// Fail scripts an error.
func Fail(err error) MockResponse {
	return MockResponse{Err: err}
}

// MockProvider replays scripted replies in order and records requests.
// Once the script runs out it answers with KindUnavailable errors. Replies
// are not checked against the request schema.
type MockProvider struct {
	mu       sync.Mutex
	script   []MockResponse
	requests []Request
}

func NewMockProvider(script ...MockResponse) *MockProvider {
	return &MockProvider{script: script}
}

func (m *MockProvider) ModelID() string { return "mock" }

func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)

	if len(m.script) == 0 {
		return nil, &Error{Kind: KindUnavailable}
	}
	next := m.script[0]
	m.script = m.script[1:]
	if next.Err != nil {
		return nil, next.Err
	}
	return &Response{Content: next.Content, Usage: next.Usage, Model: "mock", StopReason: StopEnd}, nil
}

// Push appends replies to the script.
func (m *MockProvider) Push(replies ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, replies...)
}

// Requests returns a copy of every request received so far.
func (m *MockProvider) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.requests...)
}
