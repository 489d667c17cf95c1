package agenticrag

import (
	"github.com/mahmoud-mohsen97/Chat-Agents/capability"
)

// Route is where the router sends a question.
type Route string

const (
	// RouteDocument answers from the vector index.
	RouteDocument Route = "document"
	// RouteWeb answers from web search.
	RouteWeb Route = "web"
)

// Verdict is the outcome of the hallucination check.
type Verdict string

const (
	// VerdictUnchecked is the verdict before any answer was checked.
	VerdictUnchecked Verdict = "unchecked"
	// VerdictGrounded means the answer is supported by its sources.
	VerdictGrounded Verdict = "grounded"
	// VerdictUngrounded means the answer is not supported by its sources.
	VerdictUngrounded Verdict = "ungrounded"
)

// Phase tracks how far a run has progressed.
type Phase string

const (
	// PhaseRouted is set once the router picked a route.
	PhaseRouted Phase = "routed"
	// PhaseRetrieved is set after the index was queried.
	PhaseRetrieved Phase = "retrieved"
	// PhaseGraded is set after retrieved chunks were graded.
	PhaseGraded Phase = "graded"
	// PhaseGenerated is set after the first answer.
	PhaseGenerated Phase = "generated"
	// PhaseChecked is set after the first hallucination check.
	PhaseChecked Phase = "checked"
	// PhaseFallbackGenerated is set after an answer grounded on web results.
	PhaseFallbackGenerated Phase = "fallback_generated"
	// PhaseFallbackChecked is set after the web answer was checked.
	PhaseFallbackChecked Phase = "fallback_checked"
	// PhaseDone marks a finished run.
	PhaseDone Phase = "done"
)

// MaxAttempts bounds the number of Generate steps in one run.
const MaxAttempts = 2

// State is threaded through the RAG graph. Question never changes after the
// run starts; every other field is owned by the node that declares it.
type State struct {
	Question string

	Route Route

	// Retrieved is replaced wholesale by each retrieval.
	Retrieved []capability.Document
	// Graded is the relevant subset of Retrieved, in Retrieved's order.
	Graded []capability.Document

	WebResults []capability.SearchResult

	Answer  string
	Verdict Verdict

	FallbackUsed    bool
	Attempts        int
	UngroundedCount int

	Phase Phase
}

// NewState creates the initial state for question.
func NewState(question string) State {
	return State{
		Question: question,
		Verdict:  VerdictUnchecked,
	}
}

// webGrounded reports whether generation grounds on web results rather than
// graded documents.
func (s State) webGrounded() bool {
	return s.Route == RouteWeb || s.FallbackUsed
}

// documentsUsed counts the sources behind the answer: web hits on the web
// path, graded chunks otherwise.
func (s State) documentsUsed() int {
	if s.webGrounded() {
		return len(s.WebResults)
	}
	return len(s.Graded)
}

// grounding returns the material the answer must be supported by.
func (s State) grounding() []capability.Document {
	if s.webGrounded() {
		return []capability.Document{capability.WebDocument(s.WebResults)}
	}
	return s.Graded
}
