package researcher

import (
	"fmt"
	"strings"
	"time"

	"github.com/mahmoud-mohsen97/Chat-Agents/capability"
)

func plannerPrompt(question string) string {
	return fmt.Sprintf(`Based on the user query: %q

Determine the most appropriate researcher persona and create a concise instruction prompt.
Consider the field or domain of the question and craft a "You are a..." prompt that would help
a researcher provide the most relevant and expert perspective.

Examples:
- For finance questions: "You are a seasoned finance analyst..."
- For technology questions: "You are an experienced tech researcher..."
- For travel questions: "You are a knowledgeable travel expert..."

Return ONLY the persona prompt starting with "You are..." and ending with relevant expertise.`, question)
}

func queriesPrompt(question string, now time.Time) string {
	return fmt.Sprintf(`Generate exactly %d distinct web search queries to research the following question: %q
Current date: %s

The queries should:
1. Cover different angles or aspects of the question
2. Be specific and focused
3. Help form an objective, comprehensive understanding
4. Include relevant keywords and context

IMPORTANT: Each query must be different and explore a different aspect of the topic.

Return a JSON array of exactly %d strings, for example:
["climate change effects on agriculture", "global warming sea level rise impacts", "climate change economic consequences developing countries", "renewable energy solutions climate crisis"]`,
		QueryCount, question, now.UTC().Format("January 02, 2006"), QueryCount)
}

const publisherSystemPrompt = `You write well structured, objective research reports in Markdown.`

func publisherPrompt(persona, question string, queries [QueryCount]string, results [QueryCount][]capability.SearchResult) string {
	var sb strings.Builder
	for i, q := range queries {
		fmt.Fprintf(&sb, "### Search %d: %s\n", i+1, q)
		if len(results[i]) == 0 {
			sb.WriteString("No results.\n\n")
			continue
		}
		for _, r := range results[i] {
			fmt.Fprintf(&sb, "- [%s](%s): %s\n", r.Title, r.URL, r.Snippet)
		}
		sb.WriteString("\n")
	}

	return fmt.Sprintf(`%s

Based on the following search results, create a comprehensive markdown report answering: %q

Search Results:

%s
Requirements:
- Use proper markdown formatting with H2 (##) headers for main sections
- Include bullet points for key findings
- Cite sources where relevant using [Source](url) format
- End with a "## References" section listing every source URL you used
- If no search results are available, say so plainly instead of inventing facts
- Provide a balanced, objective analysis with specific facts, data and examples
- Aim for 500-800 words

Generate ONLY the markdown content, no additional commentary.`, persona, question, sb.String())
}
