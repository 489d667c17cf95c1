package researcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mahmoud-mohsen97/Chat-Agents/capability"
	"github.com/mahmoud-mohsen97/Chat-Agents/graph"
	"github.com/mahmoud-mohsen97/Chat-Agents/log"
	"github.com/tmc/langchaingo/llms"
)

// ErrEmptyQuestion is returned for a blank research question.
var ErrEmptyQuestion = errors.New("question must not be empty")

// Result is a finished research run.
type Result struct {
	Question    string             `json:"question"`
	Markdown    string             `json:"markdown"`
	Persona     string             `json:"persona"`
	Queries     [QueryCount]string `json:"queries"`
	ResultCount int                `json:"result_count"`
}

// Agent runs the Task -> Planner -> Researcher -> Publisher graph.
type Agent struct {
	model  llms.Model
	search capability.WebSearcher

	logger    log.Logger
	retry     bool
	now       func() time.Time
	listeners []graph.NodeListener[State]

	runnable *graph.StateRunnable[State]
}

// Option configures an Agent.
type Option func(*Agent)

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(a *Agent) { a.logger = l }
}

// WithRetry re-runs a node once when a collaborator is unavailable.
func WithRetry(enabled bool) Option {
	return func(a *Agent) { a.retry = enabled }
}

// WithClock sets the time source used for the date in query prompts.
func WithClock(now func() time.Time) Option {
	return func(a *Agent) { a.now = now }
}

// WithListener registers a listener on every run.
func WithListener(l graph.NodeListener[State]) Option {
	return func(a *Agent) { a.listeners = append(a.listeners, l) }
}

// New builds and compiles the research graph.
func New(model llms.Model, search capability.WebSearcher, opts ...Option) (*Agent, error) {
	a := &Agent{
		model:  model,
		search: search,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = log.OrDefault(a.logger)

	g := graph.NewStateGraph[State]()
	g.AddNode(NodeTask, "Accept the research question", a.task, graph.Writes("Phase"))
	g.AddNode(NodePlanner, "Choose a researcher persona", a.planner, graph.Writes("Persona", "Phase"))
	g.AddNode(NodeResearcher, "Generate 4 queries and search them concurrently", a.researcher,
		graph.Writes("Queries", "Results", "Phase"))
	g.AddNode(NodePublisher, "Synthesize the markdown report", a.publisher, graph.Writes("Markdown", "Phase"))

	g.SetEntryPoint(NodeTask)
	g.AddEdge(NodeTask, NodePlanner)
	g.AddEdge(NodePlanner, NodeResearcher)
	g.AddEdge(NodeResearcher, NodePublisher)
	g.AddEdge(NodePublisher, graph.END)

	if a.retry {
		g.SetRetryPolicy(&graph.RetryPolicy{
			MaxRetries:      1,
			RetryableErrors: []error{capability.ErrCapabilityUnavailable},
		})
	}

	runnable, err := g.Compile()
	if err != nil {
		return nil, fmt.Errorf("failed to compile research graph: %w", err)
	}
	runnable.AddListener(graph.NewLoggingListener[State](a.logger, "research "))
	for _, l := range a.listeners {
		runnable.AddListener(l)
	}
	a.runnable = runnable
	return a, nil
}

// Graph returns the graph definition, for visualisation.
func (a *Agent) Graph() *graph.StateGraph[State] {
	return a.runnable.Graph()
}

// Invoke runs the graph and returns the final state.
func (a *Agent) Invoke(ctx context.Context, question string) (State, error) {
	return a.runnable.Invoke(ctx, State{Question: question})
}

// Run researches question and returns the report.
func (a *Agent) Run(ctx context.Context, question string) (Result, error) {
	final, err := a.Invoke(ctx, question)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Question:    final.Question,
		Markdown:    final.Markdown,
		Persona:     final.Persona,
		Queries:     final.Queries,
		ResultCount: final.ResultCount(),
	}, nil
}
