package graph

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"
)

// StateGraph is a directed graph of nodes over a typed state value S.
// S is normally a struct; nodes receive the current state and return the
// next one.
//
//	g := graph.NewStateGraph[State]()
//	g.AddNode("route", "Pick a datasource", routeFn, graph.Writes("Route"))
//	g.AddConditionalEdge("route", pickNext, "retrieve", "web_search")
type StateGraph[S any] struct {
	nodes map[string]TypedNode[S]
	order []string

	edges []Edge

	conditionalEdges map[string]ConditionalEdge[S]

	entryPoint string

	retryPolicy    *RetryPolicy
	recursionLimit int

	err error
}

// TypedNode represents a typed node in the graph.
type TypedNode[S any] struct {
	Name        string
	Description string
	Function    func(ctx context.Context, state S) (S, error)

	// writes lists the state fields the node may change. nil means unchecked.
	writes []string
	retry  *RetryPolicy
}

// Writes returns the fields the node is allowed to change, or nil when the
// node is unchecked.
func (n TypedNode[S]) Writes() []string {
	return n.writes
}

// ConditionalEdge picks the next node at runtime from a declared target set.
type ConditionalEdge[S any] struct {
	From      string
	Condition func(ctx context.Context, state S) string
	Targets   []string
}

// NodeOption configures a node when it is added.
type NodeOption func(*nodeOptions)

type nodeOptions struct {
	writes    []string
	hasWrites bool
	retry     *RetryPolicy
}

// Writes declares the exported state fields a node may change. After the node
// runs the executor compares every other field against the input state and
// fails the run with a ContractViolation if any differ. Writes() with no
// arguments declares a read-only node.
func Writes(fields ...string) NodeOption {
	return func(o *nodeOptions) {
		o.writes = append(o.writes, fields...)
		o.hasWrites = true
	}
}

// WithNodeRetry overrides the graph retry policy for one node.
func WithNodeRetry(policy *RetryPolicy) NodeOption {
	return func(o *nodeOptions) {
		o.retry = policy
	}
}

// NewStateGraph creates a new instance of StateGraph with type safety.
func NewStateGraph[S any]() *StateGraph[S] {
	return &StateGraph[S]{
		nodes:            make(map[string]TypedNode[S]),
		conditionalEdges: make(map[string]ConditionalEdge[S]),
		recursionLimit:   DefaultRecursionLimit,
	}
}

// AddNode adds a new node to the state graph with the given name, description and function.
func (g *StateGraph[S]) AddNode(name string, description string, fn func(ctx context.Context, state S) (S, error), opts ...NodeOption) {
	if _, exists := g.nodes[name]; exists || name == END {
		g.err = errors.Join(g.err, fmt.Errorf("%w: %s", ErrDuplicateNode, name))
		return
	}

	var o nodeOptions
	for _, opt := range opts {
		opt(&o)
	}

	node := TypedNode[S]{
		Name:        name,
		Description: description,
		Function:    fn,
		retry:       o.retry,
	}
	if o.hasWrites {
		node.writes = append([]string{}, o.writes...)
	}

	g.nodes[name] = node
	g.order = append(g.order, name)
}

// AddEdge adds a new edge to the state graph between the "from" and "to" nodes.
func (g *StateGraph[S]) AddEdge(from, to string) {
	g.edges = append(g.edges, Edge{
		From: from,
		To:   to,
	})
}

// AddConditionalEdge adds an edge whose target is chosen by condition after
// the "from" node runs. When targets are given the returned name must be one
// of them; otherwise the run fails with ErrInvalidRoute.
func (g *StateGraph[S]) AddConditionalEdge(from string, condition func(ctx context.Context, state S) string, targets ...string) {
	g.conditionalEdges[from] = ConditionalEdge[S]{
		From:      from,
		Condition: condition,
		Targets:   targets,
	}
}

// SetEntryPoint sets the entry point node name for the state graph.
func (g *StateGraph[S]) SetEntryPoint(name string) {
	g.entryPoint = name
}

// SetRetryPolicy sets the retry policy applied to nodes without their own.
func (g *StateGraph[S]) SetRetryPolicy(policy *RetryPolicy) {
	g.retryPolicy = policy
}

// SetRecursionLimit bounds the number of node executions per run.
func (g *StateGraph[S]) SetRecursionLimit(limit int) {
	g.recursionLimit = limit
}

// Nodes returns the nodes in registration order.
func (g *StateGraph[S]) Nodes() []TypedNode[S] {
	out := make([]TypedNode[S], 0, len(g.order))
	for _, name := range g.order {
		out = append(out, g.nodes[name])
	}
	return out
}

// Compile validates the graph and returns a StateRunnable instance.
func (g *StateGraph[S]) Compile() (*StateRunnable[S], error) {
	if g.err != nil {
		return nil, g.err
	}
	if g.entryPoint == "" {
		return nil, ErrEntryPointNotSet
	}
	if _, ok := g.nodes[g.entryPoint]; !ok {
		return nil, fmt.Errorf("%w: entry point %s", ErrNodeNotFound, g.entryPoint)
	}

	known := func(name string) bool {
		_, ok := g.nodes[name]
		return ok || name == END
	}

	outgoing := make(map[string]int)
	for _, e := range g.edges {
		if !known(e.From) || e.From == END {
			return nil, fmt.Errorf("%w: edge source %s", ErrNodeNotFound, e.From)
		}
		if !known(e.To) {
			return nil, fmt.Errorf("%w: edge target %s", ErrNodeNotFound, e.To)
		}
		outgoing[e.From]++
	}
	for from, ce := range g.conditionalEdges {
		if !known(from) || from == END {
			return nil, fmt.Errorf("%w: conditional edge source %s", ErrNodeNotFound, from)
		}
		for _, t := range ce.Targets {
			if !known(t) {
				return nil, fmt.Errorf("%w: conditional target %s", ErrNodeNotFound, t)
			}
		}
		outgoing[from]++
	}
	for from, n := range outgoing {
		if n > 1 {
			return nil, fmt.Errorf("%w: %s", ErrAmbiguousEdge, from)
		}
	}

	fields, err := stateFields[S]()
	if err != nil {
		for _, n := range g.nodes {
			if n.writes != nil {
				return nil, fmt.Errorf("node %s declares writes: %w", n.Name, err)
			}
		}
	}
	for _, n := range g.nodes {
		for _, f := range n.writes {
			if !slices.Contains(fields, f) {
				return nil, fmt.Errorf("node %s declares unknown field %q", n.Name, f)
			}
		}
	}

	return &StateRunnable[S]{graph: g}, nil
}

// StateRunnable represents a compiled state graph that can be invoked with type safety.
type StateRunnable[S any] struct {
	graph     *StateGraph[S]
	listeners []NodeListener[S]
}

// Graph returns the graph the runnable was compiled from.
func (r *StateRunnable[S]) Graph() *StateGraph[S] {
	return r.graph
}

// AddListener registers a listener notified around every node execution.
func (r *StateRunnable[S]) AddListener(l NodeListener[S]) *StateRunnable[S] {
	r.listeners = append(r.listeners, l)
	return r
}

// Config carries per-invocation settings.
type Config struct {
	// RecursionLimit overrides the graph limit when positive.
	RecursionLimit int
}

// Invoke runs the graph from the entry point until END.
func (r *StateRunnable[S]) Invoke(ctx context.Context, initialState S) (S, error) {
	return r.InvokeWithConfig(ctx, initialState, nil)
}

// InvokeWithConfig runs the graph with the given config. On failure the state
// reached before the failing step is returned together with the error.
func (r *StateRunnable[S]) InvokeWithConfig(ctx context.Context, initialState S, config *Config) (S, error) {
	return r.run(ctx, initialState, config, nil)
}

// InvokeWithListeners runs the graph with extra listeners scoped to this run.
func (r *StateRunnable[S]) InvokeWithListeners(ctx context.Context, initialState S, listeners ...NodeListener[S]) (S, error) {
	return r.run(ctx, initialState, nil, listeners)
}

func (r *StateRunnable[S]) run(ctx context.Context, initialState S, config *Config, extra []NodeListener[S]) (S, error) {
	listeners := append(slices.Clip(r.listeners), extra...)

	limit := r.graph.recursionLimit
	if config != nil && config.RecursionLimit > 0 {
		limit = config.RecursionLimit
	}
	if limit <= 0 {
		limit = DefaultRecursionLimit
	}

	state := initialState
	current := r.graph.entryPoint

	for steps := 0; current != END; steps++ {
		if steps >= limit {
			return state, fmt.Errorf("%w: %d steps, next node %s", ErrRecursionLimit, limit, current)
		}
		if err := ctx.Err(); err != nil {
			return state, err
		}

		node, ok := r.graph.nodes[current]
		if !ok {
			return state, fmt.Errorf("%w: %s", ErrNodeNotFound, current)
		}

		next, err := r.executeNode(ctx, listeners, node, state)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return state, ctxErr
			}
			return state, err
		}
		state = next

		current, err = r.nextNode(ctx, node.Name, state)
		if err != nil {
			return state, err
		}
	}

	return state, nil
}

// executeNode runs one node with retries, listener notification and the
// write-contract check.
func (r *StateRunnable[S]) executeNode(ctx context.Context, listeners []NodeListener[S], node TypedNode[S], state S) (S, error) {
	policy := r.graph.retryPolicy
	if node.retry != nil {
		policy = node.retry
	}

	notify(ctx, listeners, NodeEventStart, node.Name, state, nil)

	var (
		result S
		err    error
	)
	attempts := policy.attempts()
	for attempt := 0; attempt < attempts; attempt++ {
		result, err = safeCall(ctx, node, state)
		if err == nil {
			break
		}
		if attempt == attempts-1 || !policy.retryable(err) || ctx.Err() != nil {
			break
		}
		notify(ctx, listeners, NodeEventRetry, node.Name, state, err)
		if d := policy.delay(attempt); d > 0 {
			select {
			case <-time.After(d):
			case <-ctx.Done():
				return state, ctx.Err()
			}
		}
	}

	if err == nil && node.writes != nil {
		if changed := changedFields(state, result, node.writes); len(changed) > 0 {
			err = &ContractViolation{Node: node.Name, Fields: changed}
		}
	}

	if err != nil {
		var nodeErr *NodeError
		if !errors.As(err, &nodeErr) {
			err = &NodeError{Node: node.Name, Err: err}
		}
		notify(ctx, listeners, NodeEventError, node.Name, state, err)
		return state, err
	}

	notify(ctx, listeners, NodeEventComplete, node.Name, result, nil)
	return result, nil
}

func safeCall[S any](ctx context.Context, node TypedNode[S], state S) (result S, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic in node %s: %v", node.Name, p)
		}
	}()
	return node.Function(ctx, state)
}

// nextNode resolves the single successor of a node.
func (r *StateRunnable[S]) nextNode(ctx context.Context, from string, state S) (string, error) {
	if ce, ok := r.graph.conditionalEdges[from]; ok {
		next := ce.Condition(ctx, state)
		if next == "" {
			return "", fmt.Errorf("conditional edge returned empty next node from %s", from)
		}
		if len(ce.Targets) > 0 && !slices.Contains(ce.Targets, next) {
			return "", fmt.Errorf("%w: %s -> %s", ErrInvalidRoute, from, next)
		}
		if _, ok := r.graph.nodes[next]; !ok && next != END {
			return "", fmt.Errorf("%w: %s", ErrNodeNotFound, next)
		}
		return next, nil
	}

	for _, edge := range r.graph.edges {
		if edge.From == from {
			return edge.To, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNoOutgoingEdge, from)
}

func notify[S any](ctx context.Context, listeners []NodeListener[S], event NodeEvent, node string, state S, err error) {
	for _, l := range listeners {
		l.OnNodeEvent(ctx, event, node, state, err)
	}
}
