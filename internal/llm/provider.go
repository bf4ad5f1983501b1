package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Provider generates a response from one model. Implementations return
// *Error for every failure they classify.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the configured model.
	ModelID() string

	// Name is one of the Provider* constants.
	Name() string
}

// Request is a single-shot prompt. With Schema set the provider asks for
// structured output and the response is validated against it.
type Request struct {
	System      string
	Messages    []Message
	Schema      *Schema
	MaxTokens   int
	Temperature float64 // zero leaves the provider default
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema. Name is kebab-case; it doubles as the
// OpenAI schema name and the validator cache key.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// StopReason is the normalized reason generation ended.
type StopReason string

const (
	StopEnd       StopReason = "end"
	StopMaxTokens StopReason = "max_tokens"
)

type Response struct {
	// Content is validated JSON when the request had a Schema, raw text
	// otherwise.
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason StopReason
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// finish turns a provider's raw output into a Response. Structured output
// cut short is reported as KindTruncated rather than as a schema failure.
func finish(provider string, req Request, content json.RawMessage, usage Usage, model string, stop StopReason) (*Response, error) {
	if req.Schema != nil && stop == StopMaxTokens {
		return nil, &Error{
			Kind:     KindTruncated,
			Provider: provider,
			Content:  content,
			Err:      fmt.Errorf("hit %d max tokens", req.MaxTokens),
		}
	}
	if verr := validateResponse(req.Schema, content); verr != nil {
		verr.Provider = provider
		return nil, verr
	}
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.InputTokens + usage.OutputTokens
	}
	return &Response{Content: content, Usage: usage, Model: model, StopReason: stop}, nil
}

// transcript renders a request as plain text for the event log.
func (r Request) transcript() string {
	var b strings.Builder
	if r.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", r.System)
	}
	for _, m := range r.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}
	if r.Schema != nil {
		if def, err := json.Marshal(r.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n%s\n", r.Schema.Name, def)
		}
	}
	return b.String()
}

// resolveModel expands a short alias; unknown names are used as given.
func resolveModel(name string, aliases map[string]string) string {
	if id, ok := aliases[name]; ok {
		return id
	}
	return name
}
