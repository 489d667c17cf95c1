package api

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/mahmoud-mohsen97/Chat-Agents/report"
	"github.com/mahmoud-mohsen97/Chat-Agents/store"
)

func reportMetadata(r *store.Report) fiber.Map {
	return fiber.Map{
		"title":                r.Title,
		"timestamp":            r.CreatedAt.Format(time.RFC3339),
		"search_results_count": r.ResultCount,
		"persona_used":         r.Persona,
		"queries":              r.Queries,
		"word_count":           r.WordCount,
		"character_count":      r.CharCount,
	}
}

func (s *Server) generateReport(c *fiber.Ctx) error {
	if s.deps.Reports == nil {
		return errNoResearcher
	}
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Message) == "" {
		return errMissingMessage
	}
	save := c.QueryBool("save_report", true)

	r, err := s.deps.Reports.Generate(c.Context(), req.Message, save)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":          true,
		"report_id":        r.ID,
		"query":            r.Query,
		"markdown_content": r.Markdown,
		"metadata":         reportMetadata(r),
		"saved":            save,
	})
}

func (s *Server) listReports(c *fiber.Ctx) error {
	if s.deps.Reports == nil {
		return errNoResearcher
	}
	reports, err := s.deps.Reports.List(c.Context())
	if err != nil {
		return err
	}

	items := make([]fiber.Map, 0, len(reports))
	for _, r := range reports {
		items = append(items, fiber.Map{
			"report_id":  r.ID,
			"filename":   report.Filename(r.ID, "md"),
			"query":      r.Query,
			"title":      r.Title,
			"timestamp":  r.CreatedAt.Format(time.RFC3339),
			"word_count": r.WordCount,
		})
	}
	return c.JSON(fiber.Map{
		"success":       true,
		"reports":       items,
		"total_reports": len(items),
	})
}

func (s *Server) getReport(c *fiber.Ctx) error {
	if s.deps.Reports == nil {
		return errNoResearcher
	}
	r, err := s.deps.Reports.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":   true,
		"report_id": r.ID,
		"content":   string(report.Markdown(r)),
		"filename":  report.Filename(r.ID, "md"),
		"metadata":  reportMetadata(r),
	})
}

func (s *Server) downloadReport(c *fiber.Ctx) error {
	if s.deps.Reports == nil {
		return errNoResearcher
	}
	r, err := s.deps.Reports.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}

	var body []byte
	var ext, contentType string
	switch c.Query("format", "md") {
	case "md", "markdown":
		body, ext, contentType = report.Markdown(r), "md", "text/markdown; charset=utf-8"
	case "html":
		body, ext, contentType = report.HTML(r), "html", fiber.MIMETextHTMLCharsetUTF8
	default:
		return fiber.NewError(fiber.StatusBadRequest, "format must be md or html")
	}

	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", report.Filename(r.ID, ext)))
	return c.Send(body)
}

func (s *Server) deleteReport(c *fiber.Ctx) error {
	if s.deps.Reports == nil {
		return errNoResearcher
	}
	id := c.Params("id")
	if err := s.deps.Reports.Delete(c.Context(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Report %s deleted", id),
	})
}

func (s *Server) researcherStatusHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"status":  s.researcherStatus(c.Context()),
	})
}

func (s *Server) researcherStatus(ctx context.Context) fiber.Map {
	status := fiber.Map{
		"researcher_available": s.deps.Reports != nil,
		"graph_initialized":    s.deps.Reports != nil,
		"report_store":         s.deps.ReportStore,
	}
	if s.deps.Reports != nil {
		if reports, err := s.deps.Reports.List(ctx); err == nil {
			status["saved_reports_count"] = len(reports)
		} else {
			s.log.Warn("listing reports failed: %v", err)
		}
	}
	return status
}
