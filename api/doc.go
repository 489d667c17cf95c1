// Package api serves both agents over HTTP with fiber.
//
// Agentic RAG:
//
//	POST   /api/agentic-rag/upload?session_id=   multipart "file", PDF only; replaces the index
//	POST   /api/agentic-rag/chat?session_id=     {"message": "..."}
//	GET    /api/agentic-rag/history/:session_id
//	DELETE /api/agentic-rag/session/:session_id  404 when the session is unknown
//	GET    /api/agentic-rag/status
//
// Researcher:
//
//	POST   /api/researcher/generate-report?save_report=true  {"message": "..."}
//	GET    /api/researcher/reports
//	GET    /api/researcher/reports/:id
//	GET    /api/researcher/reports/:id/download?format=md|html
//	DELETE /api/researcher/reports/:id
//	GET    /api/researcher/status
//
// Errors are returned as {"success": false, "error": "..."}. Validation
// failures are 400, unknown reports 404, duplicate report ids 409 and model
// or search failures 502.
package api
