// Package llm holds the helpers every agent node uses to talk to a language
// model: plain completions, validated structured extraction and provider
// construction.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mahmoud-mohsen97/Chat-Agents/capability"
	"github.com/tmc/langchaingo/llms"
)

// Capability is the name used when attributing model failures.
const Capability = "llm"

// Prompt is a system instruction plus the user turn.
type Prompt struct {
	System string
	User   string
}

// Messages converts the prompt into langchaingo message content.
func (p Prompt) Messages() []llms.MessageContent {
	msgs := make([]llms.MessageContent, 0, 2)
	if p.System != "" {
		msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeSystem, p.System))
	}
	return append(msgs, llms.TextParts(llms.ChatMessageTypeHuman, p.User))
}

// Validator is implemented by structured outputs.
type Validator interface {
	Validate() error
}

// Complete runs one generation and returns the first choice's text. A transport
// or provider error is reported as capability.ErrCapabilityUnavailable and an
// empty answer as capability.ErrMalformedOutput.
func Complete(ctx context.Context, model llms.Model, p Prompt, opts ...llms.CallOption) (string, error) {
	if model == nil {
		return "", capability.Unavailable(Capability, errors.New("no model configured"))
	}
	resp, err := model.GenerateContent(ctx, p.Messages(), opts...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", capability.Unavailable(Capability, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", capability.Malformed(Capability, errors.New("no choices returned"))
	}
	text := strings.TrimSpace(resp.Choices[0].Content)
	if text == "" {
		return "", capability.Malformed(Capability, errors.New("empty completion"))
	}
	return text, nil
}

// Extract asks the model for JSON matching T, decodes it and validates it.
// Decoding and validation failures are reported as capability.ErrMalformedOutput.
func Extract[T Validator](ctx context.Context, model llms.Model, p Prompt, opts ...llms.CallOption) (T, error) {
	var out T
	text, err := Complete(ctx, model, p, append([]llms.CallOption{llms.WithJSONMode()}, opts...)...)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal([]byte(CleanJSON(text)), &out); err != nil {
		return out, capability.Malformed(Capability, fmt.Errorf("decode %q: %w", truncate(text, 80), err))
	}
	if err := out.Validate(); err != nil {
		return out, capability.Malformed(Capability, err)
	}
	return out, nil
}

// CleanJSON strips markdown code fences and any prose around the first JSON
// object or array in s.
func CleanJSON(s string) string {
	s = StripFences(s)
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	closer := byte('}')
	if s[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(s, closer)
	if end < start {
		return s[start:]
	}
	return s[start : end+1]
}

// StripFences removes a surrounding ``` or ```lang fence.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "{[") {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// BinaryScore is the {"binary_score": "yes"|"no"} shape used by the graders.
type BinaryScore struct {
	Score string `json:"binary_score"`
}

func (b BinaryScore) Validate() error {
	switch strings.ToLower(strings.TrimSpace(b.Score)) {
	case "yes", "no":
		return nil
	}
	return fmt.Errorf("binary_score must be yes or no, got %q", b.Score)
}

// Yes reports whether the score is affirmative.
func (b BinaryScore) Yes() bool {
	return strings.EqualFold(strings.TrimSpace(b.Score), "yes")
}
