// Package goopenai implements llms.Model on top of github.com/sashabaranov/go-openai.
// Unlike the langchaingo OpenAI provider it maps JSONMode onto the
// json_object response format, which the grading calls rely on.
package goopenai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/tmc/langchaingo/llms"
)

var (
	ErrEmptyResponse = errors.New("no response")
	ErrNoAPIKey      = errors.New("OPENAI_API_KEY not set")
)

// LLM is an OpenAI chat-completions client.
type LLM struct {
	client *openai.Client
	model  string
}

var _ llms.Model = (*LLM)(nil)

// New returns an OpenAI client. The API key falls back to OPENAI_API_KEY.
//
//	llm, err := goopenai.New(goopenai.WithModel("gpt-4o-mini"))
func New(opts ...Option) (*LLM, error) {
	o := &options{
		apiKey: getEnvOrDefault("OPENAI_API_KEY", ""),
		model:  DefaultModel,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	cfg := openai.DefaultConfig(o.apiKey)
	if o.baseURL != "" {
		cfg.BaseURL = o.baseURL
	}
	if o.httpClient != nil {
		cfg.HTTPClient = o.httpClient
	}

	return &LLM{
		client: openai.NewClientWithConfig(cfg),
		model:  o.model,
	}, nil
}

// Call generates a response from the LLM for the given prompt.
func (o *LLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, o, prompt, options...)
}

// GenerateContent implements the Model interface.
func (o *LLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := &llms.CallOptions{}
	for _, opt := range options {
		opt(opts)
	}

	req := openai.ChatCompletionRequest{
		Model:     o.model,
		Messages:  convertMessages(messages),
		MaxTokens: opts.MaxTokens,
		Stop:      opts.StopWords,
	}
	if opts.Model != "" {
		req.Model = opts.Model
	}
	// go-openai drops a zero temperature from the request body.
	req.Temperature = float32(opts.Temperature)
	if req.Temperature == 0 {
		req.Temperature = math.SmallestNonzeroFloat32
	}
	if opts.JSONMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	out := &llms.ContentResponse{Choices: make([]*llms.ContentChoice, 0, len(resp.Choices))}
	for _, c := range resp.Choices {
		out.Choices = append(out.Choices, &llms.ContentChoice{
			Content:    c.Message.Content,
			StopReason: string(c.FinishReason),
			GenerationInfo: map[string]any{
				"prompt_tokens":     resp.Usage.PromptTokens,
				"completion_tokens": resp.Usage.CompletionTokens,
				"total_tokens":      resp.Usage.TotalTokens,
			},
		})
	}
	return out, nil
}

func convertMessages(messages []llms.MessageContent) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		role := openai.ChatMessageRoleUser
		switch msg.Role {
		case llms.ChatMessageTypeSystem:
			role = openai.ChatMessageRoleSystem
		case llms.ChatMessageTypeAI:
			role = openai.ChatMessageRoleAssistant
		}

		var content strings.Builder
		for _, part := range msg.Parts {
			if text, ok := part.(llms.TextContent); ok {
				content.WriteString(text.Text)
			}
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: content.String()})
	}
	return out
}
