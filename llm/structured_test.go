package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/mahmoud-mohsen97/Chat-Agents/capability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

// MockLLM returns a fixed response and records the call options it saw.
type MockLLM struct {
	response string
	err      error
	opts     llms.CallOptions
	messages []llms.MessageContent
}

func (m *MockLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.messages = messages
	for _, o := range options {
		o(&m.opts)
	}
	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: m.response}},
	}, nil
}

func (m *MockLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func TestCleanJSON(t *testing.T) {
	cases := map[string]string{
		`{"a":1}`:                          `{"a":1}`,
		"```json\n{\"a\":1}\n```":          `{"a":1}`,
		"```\n{\"a\":1}\n```":              `{"a":1}`,
		"```{\"a\":1}```":                  `{"a":1}`,
		"Sure! Here it is: {\"a\":1} done": `{"a":1}`,
		"```json\n[\"x\", \"y\"]\n```":     `["x", "y"]`,
		"no json here":                     "no json here",
	}
	for in, want := range cases {
		assert.Equal(t, want, CleanJSON(in), in)
	}
}

func TestComplete(t *testing.T) {
	m := &MockLLM{response: "  an answer  "}
	out, err := Complete(context.Background(), m, Prompt{System: "sys", User: "question"}, llms.WithTemperature(0.2))
	require.NoError(t, err)
	assert.Equal(t, "an answer", out)
	assert.Equal(t, 0.2, m.opts.Temperature)
	require.Len(t, m.messages, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, m.messages[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, m.messages[1].Role)
}

func TestComplete_Errors(t *testing.T) {
	_, err := Complete(context.Background(), &MockLLM{err: errors.New("503")}, Prompt{User: "q"})
	assert.ErrorIs(t, err, capability.ErrCapabilityUnavailable)

	_, err = Complete(context.Background(), &MockLLM{response: "   "}, Prompt{User: "q"})
	assert.ErrorIs(t, err, capability.ErrMalformedOutput)

	_, err = Complete(context.Background(), nil, Prompt{User: "q"})
	assert.ErrorIs(t, err, capability.ErrCapabilityUnavailable)
}

func TestComplete_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Complete(ctx, &MockLLM{err: errors.New("request aborted")}, Prompt{User: "q"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtract_BinaryScore(t *testing.T) {
	m := &MockLLM{response: "```json\n{\"binary_score\": \"Yes\"}\n```"}
	score, err := Extract[BinaryScore](context.Background(), m, Prompt{User: "grade"})
	require.NoError(t, err)
	assert.True(t, score.Yes())
	assert.True(t, m.opts.JSONMode)
}

func TestExtract_Malformed(t *testing.T) {
	_, err := Extract[BinaryScore](context.Background(), &MockLLM{response: "maybe"}, Prompt{User: "grade"})
	assert.ErrorIs(t, err, capability.ErrMalformedOutput)

	_, err = Extract[BinaryScore](context.Background(), &MockLLM{response: `{"binary_score":"perhaps"}`}, Prompt{User: "grade"})
	assert.ErrorIs(t, err, capability.ErrMalformedOutput)
}

func TestNewModel_UnknownProvider(t *testing.T) {
	_, err := NewModel(context.Background(), ProviderConfig{Provider: "ernie"})
	assert.Error(t, err)
}

func TestNewModel_Native(t *testing.T) {
	m, err := NewModel(context.Background(), ProviderConfig{Provider: ProviderOpenAINative, APIKey: "k", Model: "gpt-test"})
	require.NoError(t, err)
	assert.NotNil(t, m)
}
