package researcher

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"

	"github.com/mahmoud-mohsen97/Chat-Agents/capability"
)

// referencesHeading is the H2 title every published report ends with.
const referencesHeading = "References"

const noSourcesNote = "No sources were found for this query."

// outline is what the publisher needs to know about a generated report.
type outline struct {
	hasReferences bool
	links         map[string]bool
}

func parseOutline(md string) outline {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := markdown.Parse([]byte(md), p)

	o := outline{links: make(map[string]bool)}
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}
		switch n := node.(type) {
		case *ast.Heading:
			if n.Level == 2 && isReferencesTitle(headingText(n)) {
				o.hasReferences = true
			}
		case *ast.Link:
			o.links[string(n.Destination)] = true
		}
		return ast.GoToNext
	})
	return o
}

func isReferencesTitle(title string) bool {
	switch strings.ToLower(strings.TrimSpace(title)) {
	case "references", "sources":
		return true
	}
	return false
}

func headingText(h *ast.Heading) string {
	var sb strings.Builder
	ast.WalkFunc(h, func(node ast.Node, entering bool) ast.WalkStatus {
		if t, ok := node.(*ast.Text); ok && entering {
			sb.Write(t.Literal)
		}
		return ast.GoToNext
	})
	return sb.String()
}

// ensureReferences guarantees md has a references section and cites at least
// one source from every non-empty result set.
func ensureReferences(md string, results [QueryCount][]capability.SearchResult) string {
	o := parseOutline(md)
	cited := func(url string) bool {
		return o.links[url] || mentionsURL(md, url)
	}

	var missing []capability.SearchResult
	seen := make(map[string]bool)
	anySources := false
	for _, set := range results {
		if len(set) == 0 {
			continue
		}
		anySources = true
		if !o.hasReferences {
			// Without a references section every source is listed.
			for _, r := range set {
				if r.URL != "" && !seen[r.URL] {
					seen[r.URL] = true
					missing = append(missing, r)
				}
			}
			continue
		}
		var pick *capability.SearchResult
		setCited := false
		for i := range set {
			if set[i].URL == "" {
				continue
			}
			if cited(set[i].URL) {
				setCited = true
				break
			}
			if pick == nil {
				pick = &set[i]
			}
		}
		if !setCited && pick != nil && !seen[pick.URL] {
			seen[pick.URL] = true
			missing = append(missing, *pick)
		}
	}

	var sb strings.Builder
	sb.WriteString(strings.TrimRight(md, "\n"))
	switch {
	case !o.hasReferences:
		fmt.Fprintf(&sb, "\n\n## %s\n\n", referencesHeading)
		if !anySources || len(missing) == 0 {
			sb.WriteString(noSourcesNote + "\n")
		}
		writeSources(&sb, missing)
	case len(missing) > 0:
		sb.WriteString("\n\n### Additional sources\n\n")
		writeSources(&sb, missing)
	default:
		sb.WriteString("\n")
	}
	return sb.String()
}

// mentionsURL reports whether url appears in md as a whole URL, not as the
// prefix of a longer one. Trailing sentence punctuation is ignored.
func mentionsURL(md, url string) bool {
	for off := 0; off < len(md); {
		i := strings.Index(md[off:], url)
		if i < 0 {
			return false
		}
		start, end := off+i, off+i+len(url)
		if start == 0 || !isURLByte(md[start-1]) {
			rest := strings.TrimLeft(md[end:], ".,;:!?")
			if rest == "" || !isURLByte(rest[0]) {
				return true
			}
		}
		off = start + 1
	}
	return false
}

func isURLByte(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-._~/?#@$&+=%:", c) >= 0
}

func writeSources(sb *strings.Builder, sources []capability.SearchResult) {
	for _, r := range sources {
		title := strings.TrimSpace(r.Title)
		if title == "" {
			title = r.URL
		}
		fmt.Fprintf(sb, "- [%s](%s)\n", title, r.URL)
	}
}
