package graph

import (
	"fmt"
	"sort"
	"strings"
)

// Exporter renders a graph as Mermaid, DOT or an ASCII tree.
type Exporter[S any] struct {
	graph *StateGraph[S]
}

// NewExporter creates a new graph exporter for the given graph
func NewExporter[S any](graph *StateGraph[S]) *Exporter[S] {
	return &Exporter[S]{graph: graph}
}

// MermaidOptions defines configuration for Mermaid diagram generation
type MermaidOptions struct {
	// Direction of the flowchart (e.g., "TD", "LR")
	Direction string
}

// DrawMermaid generates a Mermaid diagram representation of the graph
func (ge *Exporter[S]) DrawMermaid() string {
	return ge.DrawMermaidWithOptions(MermaidOptions{Direction: "TD"})
}

// DrawMermaidWithOptions generates a Mermaid diagram with custom options.
// Conditional edges with declared targets are drawn as dashed arrows to each
// target; undeclared ones point at a "?" placeholder.
func (ge *Exporter[S]) DrawMermaidWithOptions(opts MermaidOptions) string {
	var sb strings.Builder

	direction := opts.Direction
	if direction == "" {
		direction = "TD"
	}
	fmt.Fprintf(&sb, "flowchart %s\n", direction)

	g := ge.graph
	if g.entryPoint != "" {
		sb.WriteString("    START([\"START\"])\n")
		fmt.Fprintf(&sb, "    START --> %s\n", g.entryPoint)
	}

	for _, node := range g.Nodes() {
		label := node.Name
		if node.Description != "" {
			label = node.Name + "<br/><small>" + node.Description + "</small>"
		}
		fmt.Fprintf(&sb, "    %s[\"%s\"]\n", node.Name, label)
	}

	if ge.referencesEnd() {
		sb.WriteString("    END([\"END\"])\n")
	}

	for _, edge := range g.edges {
		fmt.Fprintf(&sb, "    %s --> %s\n", edge.From, edge.To)
	}

	for _, from := range ge.conditionalSources() {
		ce := g.conditionalEdges[from]
		if len(ce.Targets) == 0 {
			fmt.Fprintf(&sb, "    %s -.-> %s_condition((?))\n", from, from)
			continue
		}
		for _, to := range ce.Targets {
			fmt.Fprintf(&sb, "    %s -.->|%s| %s\n", from, to, to)
		}
	}

	if g.entryPoint != "" {
		sb.WriteString("    style START fill:#90EE90\n")
		fmt.Fprintf(&sb, "    style %s fill:#87CEEB\n", g.entryPoint)
	}
	if ge.referencesEnd() {
		sb.WriteString("    style END fill:#FFB6C1\n")
	}

	return sb.String()
}

// DrawDOT generates a DOT (Graphviz) representation of the graph
func (ge *Exporter[S]) DrawDOT() string {
	var sb strings.Builder
	g := ge.graph

	sb.WriteString("digraph G {\n")
	sb.WriteString("    rankdir=TD;\n")
	sb.WriteString("    node [shape=box];\n")

	if g.entryPoint != "" {
		sb.WriteString("    START [label=\"START\", shape=ellipse, style=filled, fillcolor=lightgreen];\n")
		fmt.Fprintf(&sb, "    START -> %s;\n", g.entryPoint)
		fmt.Fprintf(&sb, "    %s [style=filled, fillcolor=lightblue];\n", g.entryPoint)
	}
	if ge.referencesEnd() {
		sb.WriteString("    END [label=\"END\", shape=ellipse, style=filled, fillcolor=lightpink];\n")
	}

	for _, edge := range g.edges {
		fmt.Fprintf(&sb, "    %s -> %s;\n", edge.From, edge.To)
	}
	for _, from := range ge.conditionalSources() {
		ce := g.conditionalEdges[from]
		if len(ce.Targets) == 0 {
			fmt.Fprintf(&sb, "    %s -> %s_condition [style=dashed, label=\"?\"];\n", from, from)
			fmt.Fprintf(&sb, "    %s_condition [label=\"?\", shape=diamond];\n", from)
			continue
		}
		for _, to := range ce.Targets {
			fmt.Fprintf(&sb, "    %s -> %s [style=dashed];\n", from, to)
		}
	}

	sb.WriteString("}\n")
	return sb.String()
}

// DrawASCII generates an ASCII tree of the graph following every edge,
// including each declared conditional target.
func (ge *Exporter[S]) DrawASCII() string {
	if ge.graph.entryPoint == "" {
		return "No entry point set\n"
	}

	var sb strings.Builder
	sb.WriteString("Graph Execution Flow:\n")
	sb.WriteString("├── START\n")
	ge.drawASCIINode(ge.graph.entryPoint, "│   ", true, map[string]bool{}, &sb)
	return sb.String()
}

func (ge *Exporter[S]) drawASCIINode(nodeName, prefix string, isLast bool, visited map[string]bool, sb *strings.Builder) {
	connector := "├──"
	nextPrefix := prefix + "│   "
	if isLast {
		connector = "└──"
		nextPrefix = prefix + "    "
	}

	if visited[nodeName] {
		fmt.Fprintf(sb, "%s%s %s (cycle)\n", prefix, connector, nodeName)
		return
	}
	visited[nodeName] = true

	fmt.Fprintf(sb, "%s%s %s\n", prefix, connector, nodeName)
	if nodeName == END {
		return
	}

	var children []string
	for _, edge := range ge.graph.edges {
		if edge.From == nodeName {
			children = append(children, edge.To)
		}
	}
	conditional := false
	if ce, ok := ge.graph.conditionalEdges[nodeName]; ok {
		conditional = true
		children = append(children, ce.Targets...)
	}
	sort.Strings(children)

	if conditional && len(children) == 0 {
		fmt.Fprintf(sb, "%s└── (?)\n", nextPrefix)
		return
	}

	for i, target := range children {
		ge.drawASCIINode(target, nextPrefix, i == len(children)-1, visited, sb)
	}
}

func (ge *Exporter[S]) referencesEnd() bool {
	for _, edge := range ge.graph.edges {
		if edge.To == END {
			return true
		}
	}
	for _, ce := range ge.graph.conditionalEdges {
		for _, t := range ce.Targets {
			if t == END {
				return true
			}
		}
	}
	return false
}

func (ge *Exporter[S]) conditionalSources() []string {
	sources := make([]string, 0, len(ge.graph.conditionalEdges))
	for from := range ge.graph.conditionalEdges {
		sources = append(sources, from)
	}
	sort.Strings(sources)
	return sources
}
