package llm

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// MockResponse is one scripted reply. Err, when set, is returned as is.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockProvider replays scripted replies in order and records every request.
// With Synthesize set, a structured request arriving after the script runs
// out is answered with a minimal document built from its schema, so the
// debrief flow works offline.
type MockProvider struct {
	Synthesize bool

	mu     sync.Mutex
	script []MockResponse
	Calls  []Request
}

func NewMockProvider(script ...MockResponse) *MockProvider {
	return &MockProvider{script: script}
}

func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, req)

	var next MockResponse
	switch {
	case len(m.script) > 0:
		next, m.script = m.script[0], m.script[1:]
	case m.Synthesize && req.Schema != nil:
		body, err := json.Marshal(sample(req.Schema.Definition, req.Schema.Name))
		if err != nil {
			return nil, err
		}
		next.Content = body
	default:
		return nil, &Error{Kind: KindUnavailable, Provider: ProviderMock, Err: errors.New("script exhausted")}
	}
	if next.Err != nil {
		return nil, next.Err
	}
	return finish(ProviderMock, req, next.Content, next.Usage, "mock", StopEnd)
}

func (m *MockProvider) ModelID() string { return "mock" }

func (m *MockProvider) Name() string { return ProviderMock }

// Push appends replies to the script.
func (m *MockProvider) Push(replies ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, replies...)
}

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// sample builds the smallest value def accepts: the first enum value, the
// minimum for numbers, minItems copies for arrays and every declared
// property for objects.
func sample(def map[string]any, label string) any {
	if enum := stringList(def["enum"]); len(enum) > 0 {
		return enum[0]
	}
	switch def["type"] {
	case "object":
		out := map[string]any{}
		props, _ := def["properties"].(map[string]any)
		for name, p := range props {
			if pd, ok := p.(map[string]any); ok {
				out[name] = sample(pd, name)
			}
		}
		return out
	case "array":
		items, _ := def["items"].(map[string]any)
		n := 1
		if min, ok := number(def["minItems"]); ok && min > 1 {
			n = int(min)
		}
		out := make([]any, n)
		for i := range out {
			out[i] = sample(items, label)
		}
		return out
	case "integer", "number":
		if min, ok := number(def["minimum"]); ok {
			return min
		}
		return 0
	case "boolean":
		return false
	}
	return "sample " + label
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// stringList accepts both []any and []string, the two shapes schema
// literals use.
func stringList(v any) []string {
	switch l := v.(type) {
	case []string:
		return l
	case []any:
		out := make([]string, 0, len(l))
		for _, e := range l {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
