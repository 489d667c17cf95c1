package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/mahmoud-mohsen97/Chat-Agents/agenticrag"
	"github.com/mahmoud-mohsen97/Chat-Agents/capability"
	"github.com/mahmoud-mohsen97/Chat-Agents/rag"
	"github.com/mahmoud-mohsen97/Chat-Agents/report"
	"github.com/mahmoud-mohsen97/Chat-Agents/researcher"
	"github.com/mahmoud-mohsen97/Chat-Agents/store"
)

var (
	errMissingMessage = errors.New("message must not be empty")
	errMissingFile    = errors.New("a file field is required")
	errNotPDF         = errors.New("only PDF files are allowed")
	errNoRAG          = errors.New("agentic RAG is not configured")
	errNoResearcher   = errors.New("researcher is not configured")
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errMissingMessage),
		errors.Is(err, errMissingFile),
		errors.Is(err, errNotPDF),
		errors.Is(err, agenticrag.ErrEmptyQuestion),
		errors.Is(err, researcher.ErrEmptyQuestion),
		errors.Is(err, report.ErrEmptyQuery),
		errors.Is(err, rag.ErrUnsupportedFormat):
		return fiber.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, store.ErrExists):
		return fiber.StatusConflict
	case errors.Is(err, capability.ErrCapabilityUnavailable),
		errors.Is(err, capability.ErrMalformedOutput):
		return fiber.StatusBadGateway
	case errors.Is(err, errNoRAG), errors.Is(err, errNoResearcher):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}
