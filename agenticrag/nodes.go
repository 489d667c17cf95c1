package agenticrag

import (
	"context"
	"errors"
	"fmt"

	"github.com/mahmoud-mohsen97/Chat-Agents/capability"
	"github.com/mahmoud-mohsen97/Chat-Agents/graph"
	"github.com/mahmoud-mohsen97/Chat-Agents/llm"
	"github.com/tmc/langchaingo/llms"
	"golang.org/x/sync/errgroup"
)

// Node names.
const (
	NodeRouteQuestion      = "route_question"
	NodeRetrieve           = "retrieve"
	NodeGradeDocuments     = "grade_documents"
	NodeGenerate           = "generate"
	NodeCheckHallucination = "check_hallucination"
	NodeWebSearch          = "web_search"
)

const generateSystemPrompt = `You are an assistant for question-answering tasks.
Use the following pieces of retrieved context to answer the question.
Be specific and reference details from the context when possible.
If the context does not contain the information needed to answer, say so clearly.`

// maxConcurrentGrades bounds parallel retrieval-grader calls.
const maxConcurrentGrades = 4

func (a *Agent) routeQuestion(ctx context.Context, s State) (State, error) {
	a.logger.Info("---ROUTE QUESTION---")
	route, err := RouteQuestion(ctx, a.model, s.Question)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return s, ctxErr
		}
		a.logger.Warn("router failed, defaulting to document route: %v", err)
	}
	if route == RouteWeb {
		a.logger.Info("---ROUTE QUESTION TO WEB SEARCH---")
	} else {
		a.logger.Info("---ROUTE QUESTION TO RAG---")
	}
	s.Route = route
	s.Phase = PhaseRouted
	return s, nil
}

func (a *Agent) retrieve(ctx context.Context, s State) (State, error) {
	a.logger.Info("---RETRIEVE---")
	var docs []capability.Document
	if a.index == nil {
		a.logger.Error("retrieve: no vector index configured")
	} else {
		found, err := a.index.Search(ctx, s.Question, a.topK)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return s, ctxErr
			}
			a.logger.Error("retrieve failed, continuing with no documents: %v", err)
		} else {
			docs = found
		}
	}
	s.Retrieved = docs
	s.Phase = PhaseRetrieved
	return s, nil
}

func (a *Agent) gradeDocuments(ctx context.Context, s State) (State, error) {
	a.logger.Info("---CHECK DOCUMENT RELEVANCE TO QUESTION---")

	relevant := make([]bool, len(s.Retrieved))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentGrades)
	for i, doc := range s.Retrieved {
		g.Go(func() error {
			ok, err := GradeDocument(gctx, a.model, s.Question, doc)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				a.logger.Warn("grading document %d failed, treating as irrelevant: %v", i, err)
			}
			relevant[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return s, err
	}

	var graded []capability.Document
	for i, doc := range s.Retrieved {
		if relevant[i] {
			a.logger.Info("---GRADE: DOCUMENT %d RELEVANT---", i)
			graded = append(graded, doc)
		} else {
			a.logger.Info("---GRADE: DOCUMENT %d NOT RELEVANT---", i)
		}
	}
	if len(graded) == 0 {
		a.logger.Info("---DECISION: NO RELEVANT DOCUMENTS, INCLUDE WEB SEARCH---")
	} else {
		a.logger.Info("---DECISION: GENERATE---")
	}

	s.Graded = graded
	s.Phase = PhaseGraded
	return s, nil
}

func (a *Agent) generate(ctx context.Context, s State) (State, error) {
	a.logger.Info("---GENERATE---")
	if s.Attempts >= MaxAttempts {
		return s, fmt.Errorf("generation attempts exhausted after %d", s.Attempts)
	}

	answer, err := llm.Complete(ctx, a.model, llm.Prompt{
		System: generateSystemPrompt,
		User:   fmt.Sprintf("Context:\n\n%s\n\nQuestion: %s\n\nAnswer:", formatDocuments(s.grounding()), s.Question),
	}, llms.WithTemperature(0.2))
	if err != nil {
		return s, err
	}

	s.Answer = answer
	s.Attempts++
	if s.webGrounded() {
		s.Phase = PhaseFallbackGenerated
	} else {
		s.Phase = PhaseGenerated
	}
	return s, nil
}

func (a *Agent) checkHallucination(ctx context.Context, s State) (State, error) {
	a.logger.Info("---CHECK HALLUCINATIONS---")
	verdict, err := CheckGrounded(ctx, a.model, s.Answer, s.grounding())
	if err != nil {
		return s, err
	}

	if verdict == VerdictGrounded {
		a.logger.Info("---DECISION: GENERATION IS GROUNDED IN DOCUMENTS---")
	} else {
		a.logger.Info("---DECISION: GENERATION IS NOT GROUNDED IN DOCUMENTS---")
		s.UngroundedCount++
	}
	s.Verdict = verdict
	if s.webGrounded() {
		s.Phase = PhaseFallbackChecked
	} else {
		s.Phase = PhaseChecked
	}
	return s, nil
}

func (a *Agent) webSearch(ctx context.Context, s State) (State, error) {
	a.logger.Info("---WEB SEARCH---")
	if a.search == nil {
		return s, capability.Unavailable("web_search", errors.New("no web searcher configured"))
	}

	results, err := a.search.Search(ctx, s.Question)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return s, ctxErr
		}
		if !errors.Is(err, capability.ErrCapabilityUnavailable) && !errors.Is(err, capability.ErrMalformedOutput) {
			err = capability.Unavailable("web_search", err)
		}
		return s, err
	}
	a.logger.Info("web search returned %d result(s)", len(results))

	s.WebResults = results
	if s.Route == RouteDocument {
		s.FallbackUsed = true
	}
	return s, nil
}

func routeAfterRouter(_ context.Context, s State) string {
	if s.Route == RouteWeb {
		return NodeWebSearch
	}
	return NodeRetrieve
}

func routeAfterGrading(_ context.Context, s State) string {
	if len(s.Graded) == 0 {
		return NodeWebSearch
	}
	return NodeGenerate
}

// routeAfterCheck takes the single fallback when a document-grounded answer
// was judged ungrounded.
func routeAfterCheck(_ context.Context, s State) string {
	if s.Verdict == VerdictUngrounded && s.Route == RouteDocument && !s.FallbackUsed {
		return NodeWebSearch
	}
	return graph.END
}
