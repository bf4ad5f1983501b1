package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

	// Sent to OpenRouter for app attribution.
	appTitle   = "prepwise"
	appReferer = "https://github.com/abhisek/prepwise"
)

var openaiAliases = map[string]string{
	"gpt-mini": "gpt-4o-mini",
	"gpt":      "gpt-4o",
}

// ChatProvider speaks the Chat Completions protocol. It serves OpenAI,
// OpenAI-compatible endpoints and OpenRouter.
type ChatProvider struct {
	client *openai.Client
	model  string
	name   string
}

// NewOpenAIProvider creates a provider for OpenAI or a compatible BaseURL.
func NewOpenAIProvider(cfg OpenAIConfig) (*ChatProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai API key is required")
	}
	return newChatProvider(ProviderOpenAI, cfg.APIKey, cfg.BaseURL, resolveModel(cfg.Model, openaiAliases), nil), nil
}

// NewOpenRouterProvider creates a provider for OpenRouter. Model IDs such
// as "openai/gpt-4o-mini" pass through unchanged.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*ChatProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openrouter API key is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}
	client := &http.Client{Transport: attribution{next: http.DefaultTransport}}
	return newChatProvider(ProviderOpenRouter, cfg.APIKey, baseURL, cfg.Model, client), nil
}

func newChatProvider(name, apiKey, baseURL, model string, hc *http.Client) *ChatProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if hc != nil {
		cfg.HTTPClient = hc
	}
	return &ChatProvider{client: openai.NewClientWithConfig(cfg), model: model, name: name}
}

func (p *ChatProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	chatReq, err := p.request(req)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, p.classify(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &Error{Kind: KindInvalid, Provider: p.name, Err: errors.New("no choices in response")}
	}

	choice := resp.Choices[0]
	stop := StopEnd
	if choice.FinishReason == openai.FinishReasonLength {
		stop = StopMaxTokens
	}
	usage := Usage{
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}
	return finish(p.name, req, json.RawMessage(choice.Message.Content), usage, resp.Model, stop)
}

func (p *ChatProvider) request(req Request) (openai.ChatCompletionRequest, error) {
	out := openai.ChatCompletionRequest{
		Model:               p.model,
		MaxCompletionTokens: req.MaxTokens,
		Temperature:         float32(req.Temperature),
	}
	if req.System != "" {
		out.Messages = append(out.Messages, openai.ChatCompletionMessage{
			Role: openai.ChatMessageRoleSystem, Content: req.System,
		})
	}
	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		out.Messages = append(out.Messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	if req.Schema != nil {
		def, err := json.Marshal(req.Schema.Definition)
		if err != nil {
			return out, fmt.Errorf("encode schema %s: %w", req.Schema.Name, err)
		}
		out.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   req.Schema.Name,
				Schema: json.RawMessage(def),
				Strict: true,
			},
		}
	}
	return out, nil
}

// classify maps both JSON API errors and bare HTTP failures.
func (p *ChatProvider) classify(err error) error {
	var (
		apiErr *openai.APIError
		reqErr *openai.RequestError
	)
	switch {
	case errors.As(err, &apiErr):
		return fromStatus(p.name, apiErr.HTTPStatusCode, nil, err)
	case errors.As(err, &reqErr):
		return fromStatus(p.name, reqErr.HTTPStatusCode, nil, err)
	}
	return fromStatus(p.name, 0, nil, err)
}

func (p *ChatProvider) ModelID() string { return p.model }

func (p *ChatProvider) Name() string { return p.name }

// attribution adds OpenRouter's app headers to every request.
type attribution struct {
	next http.RoundTripper
}

func (a attribution) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Set("X-Title", appTitle)
	r.Header.Set("HTTP-Referer", appReferer)
	return a.next.RoundTrip(r)
}
