package agenticrag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mahmoud-mohsen97/Chat-Agents/capability"
	"github.com/mahmoud-mohsen97/Chat-Agents/graph"
	"github.com/mahmoud-mohsen97/Chat-Agents/log"
	"github.com/tmc/langchaingo/llms"
)

// DefaultTopK is the number of chunks retrieved per question.
const DefaultTopK = 4

// ErrEmptyQuestion is returned by Run for a blank question.
var ErrEmptyQuestion = errors.New("question must not be empty")

// Result is what a caller sees of a finished run.
type Result struct {
	Answer       string  `json:"answer"`
	Route        Route   `json:"route"`
	Verdict      Verdict `json:"verdict"`
	FallbackUsed bool    `json:"fallback_used"`
	// WebSearchUsed is true whenever the answer was grounded on web results,
	// including web-routed runs.
	WebSearchUsed bool `json:"web_search_used"`
	DocumentsUsed int  `json:"documents_used"`
	// LowConfidence is set when the final answer was still judged ungrounded.
	LowConfidence bool     `json:"low_confidence"`
	Attempts      int      `json:"attempts"`
	Path          []string `json:"path"`
}

// Agent answers questions over a vector index, grading what it retrieves and
// falling back to web search at most once.
type Agent struct {
	model  llms.Model
	index  capability.VectorIndex
	search capability.WebSearcher

	topK           int
	retry          bool
	recursionLimit int
	logger         log.Logger
	listeners      []graph.NodeListener[State]

	runnable *graph.StateRunnable[State]
}

// Option configures an Agent.
type Option func(*Agent)

// WithTopK sets how many chunks are retrieved.
func WithTopK(k int) Option {
	return func(a *Agent) {
		if k > 0 {
			a.topK = k
		}
	}
}

// WithLogger sets the logger used for node decisions.
func WithLogger(l log.Logger) Option {
	return func(a *Agent) { a.logger = l }
}

// WithRetry re-runs a node once when a collaborator is unavailable.
func WithRetry(enabled bool) Option {
	return func(a *Agent) { a.retry = enabled }
}

// WithRecursionLimit overrides the executor step limit.
func WithRecursionLimit(n int) Option {
	return func(a *Agent) { a.recursionLimit = n }
}

// WithListener registers a listener on every run.
func WithListener(l graph.NodeListener[State]) Option {
	return func(a *Agent) { a.listeners = append(a.listeners, l) }
}

// New builds and compiles the RAG graph. Nil collaborators are tolerated at
// construction; a run reports them when they are needed.
func New(model llms.Model, index capability.VectorIndex, search capability.WebSearcher, opts ...Option) (*Agent, error) {
	a := &Agent{
		model:  model,
		index:  index,
		search: search,
		topK:   DefaultTopK,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = log.OrDefault(a.logger)

	runnable, err := a.buildGraph().Compile()
	if err != nil {
		return nil, fmt.Errorf("failed to compile rag graph: %w", err)
	}
	runnable.AddListener(graph.NewLoggingListener[State](a.logger, "rag "))
	for _, l := range a.listeners {
		runnable.AddListener(l)
	}
	a.runnable = runnable
	return a, nil
}

func (a *Agent) buildGraph() *graph.StateGraph[State] {
	g := graph.NewStateGraph[State]()

	g.AddNode(NodeRouteQuestion, "Route question to vectorstore or web search", a.routeQuestion,
		graph.Writes("Route", "Phase"))
	g.AddNode(NodeRetrieve, "Retrieve chunks from the vector index", a.retrieve,
		graph.Writes("Retrieved", "Phase"))
	g.AddNode(NodeGradeDocuments, "Grade retrieved chunks for relevance", a.gradeDocuments,
		graph.Writes("Graded", "Phase"))
	g.AddNode(NodeGenerate, "Generate an answer from the grounding material", a.generate,
		graph.Writes("Answer", "Attempts", "Phase"))
	g.AddNode(NodeCheckHallucination, "Check the answer is grounded", a.checkHallucination,
		graph.Writes("Verdict", "UngroundedCount", "Phase"))
	g.AddNode(NodeWebSearch, "Search the web for grounding material", a.webSearch,
		graph.Writes("WebResults", "FallbackUsed"))

	g.SetEntryPoint(NodeRouteQuestion)
	g.AddConditionalEdge(NodeRouteQuestion, routeAfterRouter, NodeRetrieve, NodeWebSearch)
	g.AddEdge(NodeRetrieve, NodeGradeDocuments)
	g.AddConditionalEdge(NodeGradeDocuments, routeAfterGrading, NodeGenerate, NodeWebSearch)
	g.AddEdge(NodeGenerate, NodeCheckHallucination)
	g.AddConditionalEdge(NodeCheckHallucination, routeAfterCheck, NodeWebSearch, graph.END)
	g.AddEdge(NodeWebSearch, NodeGenerate)

	if a.retry {
		g.SetRetryPolicy(&graph.RetryPolicy{
			MaxRetries:      1,
			RetryableErrors: []error{capability.ErrCapabilityUnavailable},
		})
	}
	if a.recursionLimit > 0 {
		g.SetRecursionLimit(a.recursionLimit)
	}
	return g
}

// Graph returns the compiled graph definition, for visualisation.
func (a *Agent) Graph() *graph.StateGraph[State] {
	return a.runnable.Graph()
}

// Invoke runs the graph for question and returns the final state. On failure
// the state reached before the failing node is returned with the error.
func (a *Agent) Invoke(ctx context.Context, question string, listeners ...graph.NodeListener[State]) (State, error) {
	if strings.TrimSpace(question) == "" {
		return State{}, ErrEmptyQuestion
	}
	final, err := a.runnable.InvokeWithListeners(ctx, NewState(question), listeners...)
	if err != nil {
		return final, err
	}
	final.Phase = PhaseDone
	return final, nil
}

// Run answers question.
func (a *Agent) Run(ctx context.Context, question string) (Result, error) {
	path := &graph.PathRecorder[State]{}
	final, err := a.Invoke(ctx, question, path)
	if err != nil {
		return Result{}, err
	}

	if final.Verdict == VerdictUngrounded {
		a.logger.Warn("answer for %q is still ungrounded after fallback", question)
	}
	return Result{
		Answer:        final.Answer,
		Route:         final.Route,
		Verdict:       final.Verdict,
		FallbackUsed:  final.FallbackUsed,
		WebSearchUsed: final.webGrounded(),
		DocumentsUsed: final.documentsUsed(),
		LowConfidence: final.Verdict == VerdictUngrounded,
		Attempts:      final.Attempts,
		Path:          path.Path(),
	}, nil
}
