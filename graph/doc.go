// Package graph is the executor both agent workflows run on.
//
// A StateGraph[S] is a set of named nodes over a typed state value S, joined
// by static edges and conditional edges. Every node has exactly one way out:
// either one static edge or one conditional edge whose possible targets are
// declared up front. Compile checks this shape and returns a StateRunnable
// that drives a run from the entry point to END.
//
// # Building a Graph
//
//	g := graph.NewStateGraph[State]()
//
//	g.AddNode("retrieve", "Fetch candidate documents", retrieve, graph.Writes("Retrieved"))
//	g.AddNode("grade", "Keep relevant documents", grade, graph.Writes("Graded"))
//	g.AddNode("generate", "Draft an answer", generate, graph.Writes("Answer", "Attempts"))
//
//	g.SetEntryPoint("retrieve")
//	g.AddEdge("retrieve", "grade")
//	g.AddConditionalEdge("grade", func(ctx context.Context, s State) string {
//		if len(s.Graded) == 0 {
//			return "web_search"
//		}
//		return "generate"
//	}, "generate", "web_search")
//
//	runnable, err := g.Compile()
//	final, err := runnable.Invoke(ctx, State{Question: q})
//
// # Run Guarantees
//
// The executor enforces a few properties regardless of what the nodes do:
//
//   - Termination: a run fails with ErrRecursionLimit after the configured
//     number of steps (DefaultRecursionLimit unless overridden).
//   - Write contracts: a node added with Writes(...) may only change the
//     fields it names. Any other changed field fails the run with a
//     ContractViolation, which matches ErrContractViolation under errors.Is.
//   - Routing: a conditional edge returning a target it did not declare fails
//     the run with ErrInvalidRoute.
//   - Cancellation: the context is checked before every step and a cancelled
//     run returns ctx.Err().
//   - Retries: with a RetryPolicy, a node whose error matches one of
//     RetryableErrors is re-run at most MaxNodeRetries times.
//
// Node failures are returned as *NodeError carrying the node name. The state
// reached before the failing step is returned alongside the error.
//
// # Observing Runs
//
// Listeners receive start, complete, retry and error events. LoggingListener
// writes them to a log.Logger with node durations, and PathRecorder collects the
// executed node names for a single run:
//
//	rec := &graph.PathRecorder[State]{}
//	final, err := runnable.InvokeWithListeners(ctx, initial, rec)
//	fmt.Println(rec.Path())
//
// # Visualization
//
// Exporter renders a graph as Mermaid, Graphviz DOT or an ASCII tree. Declared
// conditional targets are drawn as labelled dashed edges.
package graph
