package graph

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/mahmoud-mohsen97/Chat-Agents/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildChain(t *testing.T, failAt string) *StateRunnable[TestState] {
	t.Helper()
	g := NewStateGraph[TestState]()
	for _, name := range []string{"one", "two", "three"} {
		n := name
		g.AddNode(n, "", func(ctx context.Context, s TestState) (TestState, error) {
			if n == failAt {
				return s, errors.New("broken " + n)
			}
			s.Count++
			return s, nil
		})
	}
	g.SetEntryPoint("one")
	g.AddEdge("one", "two")
	g.AddEdge("two", "three")
	g.AddEdge("three", END)

	r, err := g.Compile()
	require.NoError(t, err)
	return r
}

func TestListeners_EventOrder(t *testing.T) {
	var (
		mu     sync.Mutex
		events []string
	)
	r := buildChain(t, "")
	r.AddListener(NodeListenerFunc[TestState](func(ctx context.Context, event NodeEvent, nodeName string, state TestState, err error) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, string(event)+":"+nodeName)
	}))

	_, err := r.Invoke(context.Background(), TestState{})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"node_start:one", "node_complete:one",
		"node_start:two", "node_complete:two",
		"node_start:three", "node_complete:three",
	}, events)
}

func TestPathRecorder_PerRun(t *testing.T) {
	r := buildChain(t, "")

	first := &PathRecorder[TestState]{}
	_, err := r.InvokeWithListeners(context.Background(), TestState{}, first)
	require.NoError(t, err)

	second := &PathRecorder[TestState]{}
	_, err = r.InvokeWithListeners(context.Background(), TestState{}, second)
	require.NoError(t, err)

	assert.Equal(t, []string{"one", "two", "three"}, first.Path())
	assert.Equal(t, []string{"one", "two", "three"}, second.Path())
}

func TestLoggingListener(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewCustomLogger(&buf, log.LogLevelDebug)

	r := buildChain(t, "two")
	_, err := r.InvokeWithListeners(context.Background(), TestState{}, NewLoggingListener[TestState](logger, "[rag] "))
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, "[rag] ---one---")
	assert.Contains(t, out, "[rag] node one completed in")
	assert.Contains(t, out, "[rag] node two failed after")
	assert.Contains(t, out, "broken two")
	assert.NotContains(t, out, "---three---")
}
