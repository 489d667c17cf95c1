// Package report turns researcher runs into saved, downloadable reports.
//
// Service.Generate runs the research graph, mints a uuid, counts words and
// characters, keeps the first 100 characters of the persona and writes the
// record to a store.ReportStore. Reports are never updated after they are
// saved.
//
// Markdown renders a report with a front matter header:
//
//	---
//	title: Fusion In 2024
//	query: "state of fusion energy research in 2024"
//	report_id: 2f0c...
//	timestamp: 2024-06-01T12:00:00Z
//	generated_by: AI Research Agent
//	---
//
// HTML renders the same content through gomarkdown and sanitizes it with the
// bluemonday UGC policy.
package report
