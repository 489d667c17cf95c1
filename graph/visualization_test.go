package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVisualization(t *testing.T) {
	noop := func(ctx context.Context, state TestState) (TestState, error) { return state, nil }

	g := NewStateGraph[TestState]()
	g.AddNode("A", "first", noop)
	g.AddNode("B", "", noop)
	g.AddNode("C", "", noop)
	g.AddNode("D", "", noop)

	g.SetEntryPoint("A")
	g.AddEdge("A", "B")
	g.AddConditionalEdge("B", func(ctx context.Context, state TestState) string { return "C" }, "C", "D")
	g.AddEdge("C", END)
	g.AddConditionalEdge("D", func(ctx context.Context, state TestState) string { return END })

	_, err := g.Compile()
	assert.NoError(t, err)

	exporter := NewExporter(g)

	mermaid := exporter.DrawMermaid()
	assert.Contains(t, mermaid, "flowchart TD")
	assert.Contains(t, mermaid, "START --> A")
	assert.Contains(t, mermaid, "A --> B")
	assert.Contains(t, mermaid, "B -.->|C| C")
	assert.Contains(t, mermaid, "B -.->|D| D")
	assert.Contains(t, mermaid, "D -.-> D_condition((?))")
	assert.Contains(t, mermaid, "C --> END")
	assert.Contains(t, mermaid, "<small>first</small>")

	mermaidLR := exporter.DrawMermaidWithOptions(MermaidOptions{Direction: "LR"})
	assert.Contains(t, mermaidLR, "flowchart LR")

	dot := exporter.DrawDOT()
	assert.Contains(t, dot, "A -> B;")
	assert.Contains(t, dot, "B -> C [style=dashed];")
	assert.Contains(t, dot, "D -> D_condition [style=dashed, label=\"?\"];")

	ascii := exporter.DrawASCII()
	assert.Contains(t, ascii, "├── START")
	assert.Contains(t, ascii, "A")
	assert.Contains(t, ascii, "C")
	assert.Contains(t, ascii, "D")
	assert.Contains(t, ascii, "(?)")
}

func TestVisualization_NoEntryPoint(t *testing.T) {
	g := NewStateGraph[TestState]()
	assert.Equal(t, "No entry point set\n", NewExporter(g).DrawASCII())
}
