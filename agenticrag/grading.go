package agenticrag

import (
	"context"
	"fmt"
	"strings"

	"github.com/mahmoud-mohsen97/Chat-Agents/capability"
	"github.com/mahmoud-mohsen97/Chat-Agents/llm"
	"github.com/tmc/langchaingo/llms"
)

const routerSystemPrompt = `You are an expert at routing a user question to a vectorstore or web search.
The vectorstore contains the documents the user uploaded (PDFs, CVs, reports, papers).
Use the vectorstore for questions about those documents, personal information, qualifications, experience, skills, or any content typically found in documents.
Use websearch for general knowledge questions, current events, or information not typically found in personal or professional documents.

Return a JSON object: {"datasource": "vectorstore"} or {"datasource": "websearch"}.`

const retrievalGraderSystemPrompt = `You are a grader assessing relevance of a retrieved document to a user question.
If the document contains keywords or semantic meaning related to the question, grade it as relevant.
Give a binary score 'yes' or 'no' to indicate whether the document is relevant to the question.

Return a JSON object: {"binary_score": "yes"} or {"binary_score": "no"}.`

const hallucinationGraderSystemPrompt = `You are a grader assessing whether an LLM generation is grounded in / supported by a set of retrieved facts.
Look for specific details in the facts that support or contradict the generation.
Give a binary score 'yes' or 'no'. 'yes' means that the answer is grounded in / supported by the facts.

Return a JSON object: {"binary_score": "yes"} or {"binary_score": "no"}.`

const datasourceVectorstore = "vectorstore"
const datasourceWebsearch = "websearch"

type routeDecision struct {
	Datasource string `json:"datasource"`
}

func (r routeDecision) Validate() error {
	switch strings.ToLower(strings.TrimSpace(r.Datasource)) {
	case datasourceVectorstore, datasourceWebsearch:
		return nil
	}
	return fmt.Errorf("datasource must be %q or %q, got %q", datasourceVectorstore, datasourceWebsearch, r.Datasource)
}

// RouteQuestion classifies question. Any failure yields RouteDocument together
// with the error so the caller can log it.
func RouteQuestion(ctx context.Context, model llms.Model, question string) (Route, error) {
	decision, err := llm.Extract[routeDecision](ctx, model, llm.Prompt{
		System: routerSystemPrompt,
		User:   question,
	}, llms.WithTemperature(0))
	if err != nil {
		return RouteDocument, err
	}
	if strings.EqualFold(strings.TrimSpace(decision.Datasource), datasourceWebsearch) {
		return RouteWeb, nil
	}
	return RouteDocument, nil
}

// GradeDocument reports whether doc is relevant to question. Any failure
// counts as irrelevant and is returned alongside false.
func GradeDocument(ctx context.Context, model llms.Model, question string, doc capability.Document) (bool, error) {
	score, err := llm.Extract[llm.BinaryScore](ctx, model, llm.Prompt{
		System: retrievalGraderSystemPrompt,
		User:   fmt.Sprintf("Retrieved document:\n\n%s\n\nUser question: %s", doc.Text, question),
	}, llms.WithTemperature(0))
	if err != nil {
		return false, err
	}
	return score.Yes(), nil
}

// CheckGrounded grades answer against the grounding documents. Errors are
// returned as-is; the caller treats them as fatal.
func CheckGrounded(ctx context.Context, model llms.Model, answer string, docs []capability.Document) (Verdict, error) {
	score, err := llm.Extract[llm.BinaryScore](ctx, model, llm.Prompt{
		System: hallucinationGraderSystemPrompt,
		User:   fmt.Sprintf("Set of facts:\n\n%s\n\nLLM generation: %s", formatDocuments(docs), answer),
	}, llms.WithTemperature(0))
	if err != nil {
		return VerdictUnchecked, err
	}
	if score.Yes() {
		return VerdictGrounded, nil
	}
	return VerdictUngrounded, nil
}

// formatDocuments renders documents as numbered context blocks.
func formatDocuments(docs []capability.Document) string {
	if len(docs) == 0 {
		return "(no context available)"
	}
	var sb strings.Builder
	for i, d := range docs {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		switch {
		case d.Source == capability.WebSource:
			fmt.Fprintf(&sb, "[%d] web search\n", i+1)
		case d.Source != "":
			fmt.Fprintf(&sb, "[%d] %s, page %d\n", i+1, d.Source, d.Page)
		default:
			fmt.Fprintf(&sb, "[%d]\n", i+1)
		}
		sb.WriteString(d.Text)
	}
	return sb.String()
}
