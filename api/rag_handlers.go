package api

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/mahmoud-mohsen97/Chat-Agents/agenticrag"
	"github.com/mahmoud-mohsen97/Chat-Agents/session"
)

type chatRequest struct {
	Message string `json:"message"`
}

// sessionID copies the query value; fiber's strings alias the request
// buffer, which is reused once the handler returns.
func sessionID(c *fiber.Ctx) string {
	return utils.CopyString(c.Query("session_id", session.DefaultID))
}

func (s *Server) upload(c *fiber.Ctx) error {
	if s.deps.Ingestor == nil {
		return errNoRAG
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return errMissingFile
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".pdf") {
		return errNotPDF
	}

	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	id := sessionID(c)
	s.log.Info("Processing upload %s for session %s", fh.Filename, id)
	res, err := s.deps.Ingestor.Replace(c.Context(), fh.Filename, f, fh.Size)
	if err != nil {
		return err
	}

	name := utils.CopyString(fh.Filename)
	s.setDocument(name)
	s.deps.Sessions.Open(id, name)

	return c.JSON(fiber.Map{
		"success":  true,
		"message":  fmt.Sprintf("PDF '%s' uploaded and indexed", fh.Filename),
		"filename": fh.Filename,
		"details": fiber.Map{
			"session_id": id,
			"pages":      res.Pages,
			"chunks":     res.Chunks,
		},
	})
}

func (s *Server) chat(c *fiber.Ctx) error {
	if s.deps.RAG == nil {
		return errNoRAG
	}
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	question := strings.TrimSpace(req.Message)
	if question == "" {
		return errMissingMessage
	}

	id := sessionID(c)
	res, err := s.deps.RAG.Run(c.Context(), question)
	if err != nil {
		return err
	}

	s.deps.Sessions.Append(id, session.Exchange{
		Question:      question,
		Answer:        res.Answer,
		DocumentsUsed: res.DocumentsUsed,
		WebSearchUsed: res.WebSearchUsed,
		At:            time.Now().UTC(),
	})

	return c.JSON(fiber.Map{
		"success":    true,
		"session_id": id,
		"response":   formatAnswer(question, res),
		"result":     res,
	})
}

// formatAnswer renders an answer with a short processing summary.
func formatAnswer(question string, res agenticrag.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**Question:** %s\n\n**Answer:** %s", question, res.Answer)

	var notes []string
	if res.DocumentsUsed > 0 && !res.WebSearchUsed {
		notes = append(notes, fmt.Sprintf("Analyzed %d document sections", res.DocumentsUsed))
	}
	if res.WebSearchUsed {
		notes = append(notes, "Enhanced with web search")
	}
	if res.LowConfidence {
		notes = append(notes, "Low confidence: the answer could not be verified against its sources")
	}
	if len(notes) > 0 {
		sb.WriteString("\n\n**Processing:** " + strings.Join(notes, " • "))
	}
	return sb.String()
}

func (s *Server) history(c *fiber.Ctx) error {
	id := c.Params("session_id")
	h := s.deps.Sessions.History(id)
	return c.JSON(fiber.Map{
		"session_id":           id,
		"conversation_history": h,
		"total_exchanges":      len(h),
	})
}

func (s *Server) clearSession(c *fiber.Ctx) error {
	id := c.Params("session_id")
	if !s.deps.Sessions.Clear(id) {
		return fiber.NewError(fiber.StatusNotFound, "session not found")
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Session %s cleared successfully", id),
	})
}

func (s *Server) ragStatusHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"status":  s.ragStatus(c.Context()),
	})
}

func (s *Server) ragStatus(ctx context.Context) fiber.Map {
	doc := s.currentDocument()
	status := fiber.Map{
		"available":       s.deps.RAG != nil,
		"initialized":     doc != "",
		"current_pdf":     doc,
		"active_sessions": s.deps.Sessions.Count(),
	}
	if s.deps.Index != nil {
		if n, err := s.deps.Index.Count(ctx); err == nil {
			status["indexed_chunks"] = n
		} else {
			s.log.Warn("vector index count failed: %v", err)
		}
	}
	return status
}
