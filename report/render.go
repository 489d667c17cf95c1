package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"

	"github.com/mahmoud-mohsen97/Chat-Agents/store"
)

// DefaultTitle is used when a report has no top-level heading.
const DefaultTitle = "Research Report"

const generatedBy = "AI Research Agent"

func newParser() *parser.Parser {
	return parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
}

// Title returns the text of the first H1 in md, or DefaultTitle.
func Title(md string) string {
	doc := markdown.Parse([]byte(md), newParser())

	title := ""
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		h, ok := node.(*ast.Heading)
		if !ok || !entering || h.Level != 1 {
			return ast.GoToNext
		}
		title = strings.TrimSpace(string(textOf(h)))
		return ast.Terminate
	})
	if title == "" {
		return DefaultTitle
	}
	return title
}

func textOf(n ast.Node) []byte {
	var buf bytes.Buffer
	ast.WalkFunc(n, func(node ast.Node, entering bool) ast.WalkStatus {
		if entering {
			switch t := node.(type) {
			case *ast.Text:
				buf.Write(t.Literal)
			case *ast.Code:
				buf.Write(t.Literal)
			}
		}
		return ast.GoToNext
	})
	return buf.Bytes()
}

// Filename is the download name of a report.
func Filename(id, ext string) string {
	return fmt.Sprintf("research_report_%s.%s", id, ext)
}

// Markdown renders r as a Markdown document with a front matter header.
func Markdown(r *store.Report) []byte {
	var buf bytes.Buffer
	buf.WriteString("---\n")
	fmt.Fprintf(&buf, "title: %s\n", r.Title)
	fmt.Fprintf(&buf, "query: %q\n", r.Query)
	fmt.Fprintf(&buf, "report_id: %s\n", r.ID)
	fmt.Fprintf(&buf, "timestamp: %s\n", r.CreatedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&buf, "generated_by: %s\n", generatedBy)
	buf.WriteString("---\n\n")
	buf.WriteString(strings.TrimRight(r.Markdown, "\n"))
	buf.WriteString("\n")
	return buf.Bytes()
}

// HTML renders r as a sanitized standalone HTML page.
func HTML(r *store.Report) []byte {
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.HrefTargetBlank,
	})
	body := markdown.ToHTML([]byte(r.Markdown), newParser(), renderer)
	body = bluemonday.UGCPolicy().SanitizeBytes(body)

	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&buf, "<title>%s</title>\n", bluemonday.StrictPolicy().Sanitize(r.Title))
	buf.WriteString("</head>\n<body>\n")
	buf.Write(body)
	buf.WriteString("</body>\n</html>\n")
	return buf.Bytes()
}
