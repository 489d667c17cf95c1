// Chat-Agents - two LLM agents built as typed state graphs in Go
//
// The module hosts an agentic RAG agent and a research report agent. Both are
// compiled graph.StateGraph values whose nodes call a language model
// (github.com/tmc/langchaingo/llms.Model), a vector index and a web search
// provider through the interfaces in package capability.
//
// # Agentic RAG
//
// package agenticrag routes a question to the indexed document or to the
// web, grades what it retrieves, generates an answer and checks it for
// grounding. An ungrounded or irrelevant document answer falls back to web
// search once:
//
//	route_question -> retrieve -> grade_documents -> generate -> check_hallucination -> END
//	      |                             |                              |
//	      +--------> web_search <-------+------------------------------+
//
// Documents are ingested with package rag, which loads PDF, text and
// markdown files, splits them with langchaingo's text splitters and writes
// the chunks to an in-memory or Qdrant index.
//
// # Researcher
//
// package researcher picks a persona for the question, generates four
// search queries, runs them concurrently and publishes a markdown report with
// a References section:
//
//	task -> planner -> researcher -> publisher -> END
//
// package report turns a run into a stored report with a title, word counts
// and markdown or HTML exports. Reports are persisted by one of the
// store.ReportStore implementations under store/: memory, file, redis,
// sqlite or postgres.
//
// # Serving
//
// package api exposes both agents over HTTP with fiber, and cmd/chatagents
// wires everything from the environment (package config):
//
//	chatagents serve
//	chatagents ask -file paper.pdf "What does section 3 conclude?"
//	chatagents research "State of fusion energy in 2024"
//	chatagents graph -format mermaid rag
//
// # Configuration
//
// Settings are read from the environment and an optional .env file. The
// most important ones are LLM_PROVIDER, OPENAI_API_KEY or GOOGLE_API_KEY,
// SEARCH_PROVIDER with TAVILY_API_KEY or BRAVE_API_KEY, VECTOR_INDEX and
// REPORT_STORE.
package chatagents // import "github.com/mahmoud-mohsen97/Chat-Agents"
