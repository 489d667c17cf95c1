package agenticrag

import (
	"context"
	"testing"

	"github.com/mahmoud-mohsen97/Chat-Agents/capability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

// fixedLLM returns the same completion for every call.
type fixedLLM struct {
	response string
	opts     llms.CallOptions
}

func (m *fixedLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	for _, o := range options {
		o(&m.opts)
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.response}}}, nil
}

func (m *fixedLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func TestRouteQuestion(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		response string
		want     Route
		wantErr  bool
	}{
		{`{"datasource":"vectorstore"}`, RouteDocument, false},
		{`{"datasource":"websearch"}`, RouteWeb, false},
		{"```json\n{\"datasource\": \"WebSearch\"}\n```", RouteWeb, false},
		{`{"datasource":"database"}`, RouteDocument, true},
		{`{}`, RouteDocument, true},
	}
	for _, tc := range cases {
		model := &fixedLLM{response: tc.response}
		route, err := RouteQuestion(ctx, model, "q")
		assert.Equal(t, tc.want, route, tc.response)
		if tc.wantErr {
			assert.ErrorIs(t, err, capability.ErrMalformedOutput, tc.response)
		} else {
			assert.NoError(t, err, tc.response)
		}
		assert.True(t, model.opts.JSONMode)
		assert.Zero(t, model.opts.Temperature)
	}
}

func TestGradeDocument(t *testing.T) {
	ok, err := GradeDocument(context.Background(), &fixedLLM{response: `{"binary_score":"yes"}`}, "q", capability.Document{Text: "t"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = GradeDocument(context.Background(), &fixedLLM{response: `yes`}, "q", capability.Document{Text: "t"})
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestCheckGrounded(t *testing.T) {
	v, err := CheckGrounded(context.Background(), &fixedLLM{response: `{"binary_score":"no"}`}, "a", nil)
	require.NoError(t, err)
	assert.Equal(t, VerdictUngrounded, v)

	_, err = CheckGrounded(context.Background(), &fixedLLM{response: ``}, "a", nil)
	assert.ErrorIs(t, err, capability.ErrMalformedOutput)
}

func TestFormatDocuments(t *testing.T) {
	out := formatDocuments([]capability.Document{
		{Text: "alpha", Source: "a.pdf", Page: 2},
		capability.WebDocument([]capability.SearchResult{{Snippet: "beta"}}),
	})
	assert.Equal(t, "[1] a.pdf, page 2\nalpha\n\n[2] web search\nbeta", out)
	assert.Equal(t, "(no context available)", formatDocuments(nil))
}
