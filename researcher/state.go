package researcher

import (
	"github.com/mahmoud-mohsen97/Chat-Agents/capability"
)

// QueryCount is the number of web searches every run performs.
const QueryCount = 4

// Phase tracks how far a run has progressed.
type Phase string

const (
	// PhaseTasked is set once the question was accepted.
	PhaseTasked Phase = "tasked"
	// PhasePlanned is set once a persona was chosen.
	PhasePlanned Phase = "planned"
	// PhaseResearched is set after all searches returned.
	PhaseResearched Phase = "researched"
	// PhasePublished is set once the report was written.
	PhasePublished Phase = "published"
)

// State is threaded through the research graph. Each field after Question is
// written once, by the node that owns it.
type State struct {
	Question string
	Persona  string
	Queries  [QueryCount]string
	// Results holds one result set per query, in query order.
	Results  [QueryCount][]capability.SearchResult
	Markdown string
	Phase    Phase
}

// ResultCount is the total number of search hits across all queries.
func (s State) ResultCount() int {
	n := 0
	for _, r := range s.Results {
		n += len(r)
	}
	return n
}
