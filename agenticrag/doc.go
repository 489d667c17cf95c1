// Package agenticrag implements the retrieval-augmented question answering
// graph.
//
// The graph is:
//
//	route_question -> retrieve -> grade_documents -> generate -> check_hallucination -> END
//	       |                             |                              |
//	       +-------> web_search <--------+------------------------------+
//	                     |
//	                     +--> generate
//
// The router sends a question to the vector index or straight to web search;
// a failed classification defaults to the index. Retrieved chunks are graded
// one by one and only relevant ones ground the answer. When nothing relevant
// survives, or when the first answer is judged ungrounded, the agent performs
// a single web search fallback and answers again. The second verdict is
// final: Result.LowConfidence reports an answer that is still ungrounded.
//
//	agent, err := agenticrag.New(model, index, search, agenticrag.WithTopK(4))
//	if err != nil {
//		return err
//	}
//	res, err := agent.Run(ctx, "What does section 3 say about termination?")
package agenticrag
