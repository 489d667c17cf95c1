package researcher

import (
	"strings"
	"testing"

	"github.com/mahmoud-mohsen97/Chat-Agents/capability"
	"github.com/stretchr/testify/assert"
)

func TestParseQueries(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     [QueryCount]string
		parsed   int
	}{
		{
			name:     "json array",
			response: `["a b", "c d", "e f", "g h"]`,
			want:     [QueryCount]string{"a b", "c d", "e f", "g h"},
			parsed:   4,
		},
		{
			name:     "fenced json with extra entries",
			response: "```json\n[\"one\", \"two\", \"three\", \"four\", \"five\"]\n```",
			want:     [QueryCount]string{"one", "two", "three", "four"},
			parsed:   4,
		},
		{
			name:     "numbered lines",
			response: "Here are the queries:\n1. solar output 2024\n2) wind capacity\n- \"battery storage\"\n* grid upgrades",
			want:     [QueryCount]string{"solar output 2024", "wind capacity", "battery storage", "grid upgrades"},
			parsed:   4,
		},
		{
			name:     "duplicates are padded",
			response: `["Mars missions", "mars missions", "MARS MISSIONS"]`,
			want: [QueryCount]string{
				"Mars missions",
				"mars recent developments",
				"mars current status 2024",
				"mars latest news analysis",
			},
			parsed: 1,
		},
		{
			name:     "empty response",
			response: "",
			want: [QueryCount]string{
				"mars recent developments",
				"mars current status 2024",
				"mars latest news analysis",
				"mars expert opinions trends",
			},
			parsed: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, parsed := parseQueries(tt.response, "mars")
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.parsed, parsed)
		})
	}
}

func TestParseQueries_AlwaysDistinct(t *testing.T) {
	got, _ := parseQueries(`["x recent developments"]`, "x")
	seen := map[string]bool{}
	for _, q := range got {
		assert.NotEmpty(t, q)
		assert.False(t, seen[strings.ToLower(q)], "duplicate query %q", q)
		seen[strings.ToLower(q)] = true
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab...", truncate("abcdef", 2))
	assert.Equal(t, "héé...", truncate("héééé", 3))
}

func TestEnsureReferences(t *testing.T) {
	var results [QueryCount][]capability.SearchResult
	results[0] = []capability.SearchResult{{Title: "A", URL: "https://a.example"}, {Title: "A2", URL: "https://a2.example"}}
	results[2] = []capability.SearchResult{{Title: "C", URL: "https://c.example"}}

	t.Run("appends a references section", func(t *testing.T) {
		out := ensureReferences("## Summary\n\nText.\n", results)
		assert.Contains(t, out, "## References")
		assert.Contains(t, out, "- [A](https://a.example)")
		assert.Contains(t, out, "- [A2](https://a2.example)")
		assert.Contains(t, out, "- [C](https://c.example)")
		assert.NotContains(t, out, noSourcesNote)
	})

	t.Run("adds uncited sets to an existing section", func(t *testing.T) {
		md := "## Summary\n\nSee [A](https://a.example).\n\n## References\n\n- [A](https://a.example)\n"
		out := ensureReferences(md, results)
		assert.Contains(t, out, "### Additional sources")
		assert.Contains(t, out, "- [C](https://c.example)")
		assert.NotContains(t, out, "a2.example")
	})

	t.Run("cites the first result that has a URL", func(t *testing.T) {
		var sets [QueryCount][]capability.SearchResult
		sets[0] = []capability.SearchResult{{Title: "No link", Snippet: "text only"}, {Title: "B", URL: "https://b.example/y"}}
		sets[1] = []capability.SearchResult{{Title: "C", URL: "https://c.example"}}
		md := "## Summary\n\nSee https://c.example/other for more.\n\n## References\n\n- [Other](https://c.example/other)\n"

		out := ensureReferences(md, sets)
		assert.Contains(t, out, "### Additional sources")
		assert.Contains(t, out, "- [B](https://b.example/y)")
		assert.Contains(t, out, "- [C](https://c.example)")
		assert.NotContains(t, out, "[No link]")
	})

	t.Run("counts a bare URL as cited", func(t *testing.T) {
		md := "## Summary\n\nPer https://c.example, and [A](https://a.example).\n\n## References\n"
		out := ensureReferences(md, results)
		assert.NotContains(t, out, "Additional sources")
	})

	t.Run("leaves a complete report alone", func(t *testing.T) {
		md := "## Summary\n\n## Sources\n\n- [A](https://a.example)\n- [C](https://c.example)"
		out := ensureReferences(md, results)
		assert.Equal(t, md+"\n", out)
	})

	t.Run("notes when there are no sources", func(t *testing.T) {
		var empty [QueryCount][]capability.SearchResult
		out := ensureReferences("## Summary\n", empty)
		assert.Contains(t, out, "## References")
		assert.Contains(t, out, noSourcesNote)
	})
}

func TestMentionsURL(t *testing.T) {
	tests := []struct {
		md   string
		want bool
	}{
		{"see https://c.example", true},
		{"see https://c.example.", true},
		{"(https://c.example)", true},
		{"see https://c.example/other", false},
		{"see https://c.example.org", false},
		{"xhttps://c.example", false},
		{"https://c.example/other and later https://c.example", true},
		{"nothing here", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, mentionsURL(tt.md, "https://c.example"), tt.md)
	}
}

func TestParseOutline(t *testing.T) {
	o := parseOutline("# Title\n\n## References\n\n- [x](https://x.example)\n")
	assert.True(t, o.hasReferences)
	assert.True(t, o.links["https://x.example"])

	o = parseOutline("## Intro\n\n### References\n")
	assert.False(t, o.hasReferences)
}
