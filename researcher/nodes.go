package researcher

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mahmoud-mohsen97/Chat-Agents/capability"
	"github.com/mahmoud-mohsen97/Chat-Agents/llm"
	"github.com/tmc/langchaingo/llms"
	"golang.org/x/sync/errgroup"
)

// Node names.
const (
	NodeTask       = "task"
	NodePlanner    = "planner"
	NodeResearcher = "researcher"
	NodePublisher  = "publisher"
)

func (a *Agent) task(_ context.Context, s State) (State, error) {
	a.logger.Info("---TASK NODE---")
	if strings.TrimSpace(s.Question) == "" {
		return s, ErrEmptyQuestion
	}
	a.logger.Info("Processing query: %s", s.Question)
	s.Phase = PhaseTasked
	return s, nil
}

func (a *Agent) planner(ctx context.Context, s State) (State, error) {
	a.logger.Info("---PLANNER NODE---")
	persona, err := llm.Complete(ctx, a.model, llm.Prompt{User: plannerPrompt(s.Question)}, llms.WithTemperature(0.3))
	if err != nil {
		return s, err
	}
	a.logger.Info("Generated persona: %s", truncate(persona, 100))
	s.Persona = persona
	s.Phase = PhasePlanned
	return s, nil
}

func (a *Agent) researcher(ctx context.Context, s State) (State, error) {
	a.logger.Info("---RESEARCHER NODE---")

	response, err := llm.Complete(ctx, a.model, llm.Prompt{
		System: s.Persona,
		User:   queriesPrompt(s.Question, a.now()),
	}, llms.WithTemperature(0.2))
	if err != nil {
		return s, fmt.Errorf("query generation failed: %w", err)
	}
	queries, parsed := parseQueries(response, s.Question)
	if parsed < QueryCount {
		a.logger.Warn("model produced %d usable queries, padded with variations", parsed)
	}

	var results [QueryCount][]capability.SearchResult
	var g errgroup.Group
	for i, q := range queries {
		g.Go(func() error {
			a.logger.Info("Searching: %s", q)
			hits, err := a.searchOne(ctx, q)
			if err != nil {
				a.logger.Warn("search %d (%q) failed: %v", i, q, err)
				return nil
			}
			results[i] = hits
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return s, err
	}

	s.Queries = queries
	s.Results = results
	s.Phase = PhaseResearched
	a.logger.Info("Collected %d search results", s.ResultCount())
	return s, nil
}

func (a *Agent) publisher(ctx context.Context, s State) (State, error) {
	a.logger.Info("---PUBLISHER NODE---")
	if s.ResultCount() == 0 {
		a.logger.Warn("every search came back empty, publishing without sources")
	}

	md, err := llm.Complete(ctx, a.model, llm.Prompt{
		System: publisherSystemPrompt,
		User:   publisherPrompt(s.Persona, s.Question, s.Queries, s.Results),
	}, llms.WithTemperature(0.3))
	if err != nil {
		return s, err
	}

	s.Markdown = ensureReferences(llm.StripFences(md), s.Results)
	s.Phase = PhasePublished
	a.logger.Info("Generated markdown report (%d characters)", len(s.Markdown))
	return s, nil
}

func (a *Agent) searchOne(ctx context.Context, q string) ([]capability.SearchResult, error) {
	if a.search == nil {
		return nil, capability.Unavailable("web_search", errors.New("no web searcher configured"))
	}
	return a.search.Search(ctx, q)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
