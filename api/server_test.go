package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahmoud-mohsen97/Chat-Agents/agenticrag"
	"github.com/mahmoud-mohsen97/Chat-Agents/capability"
	"github.com/mahmoud-mohsen97/Chat-Agents/log"
	"github.com/mahmoud-mohsen97/Chat-Agents/rag"
	"github.com/mahmoud-mohsen97/Chat-Agents/report"
	"github.com/mahmoud-mohsen97/Chat-Agents/researcher"
	"github.com/mahmoud-mohsen97/Chat-Agents/session"
	"github.com/mahmoud-mohsen97/Chat-Agents/store/memory"
)

type fakeRAG struct {
	result agenticrag.Result
	err    error
}

func (f *fakeRAG) Run(_ context.Context, q string) (agenticrag.Result, error) {
	if f.err != nil {
		return agenticrag.Result{}, f.err
	}
	return f.result, nil
}

type fakeIngestor struct {
	name string
	body []byte
}

func (f *fakeIngestor) Replace(_ context.Context, name string, r io.ReaderAt, size int64) (rag.IngestResult, error) {
	f.name = name
	f.body = make([]byte, size)
	if _, err := r.ReadAt(f.body, 0); err != nil && !errors.Is(err, io.EOF) {
		return rag.IngestResult{}, err
	}
	return rag.IngestResult{Source: name, Pages: 3, Chunks: 12}, nil
}

type fakeResearcher struct {
	err error
}

func (f *fakeResearcher) Run(_ context.Context, q string) (researcher.Result, error) {
	if f.err != nil {
		return researcher.Result{}, f.err
	}
	return researcher.Result{
		Question:    q,
		Markdown:    "# Fusion\n\n## Overview\n\nProgress.\n\n## References\n\n- [ITER](https://iter.org)\n",
		Persona:     "You are an energy researcher.",
		Queries:     [researcher.QueryCount]string{"a", "b", "c", "d"},
		ResultCount: 4,
	}, nil
}

type testEnv struct {
	server   *Server
	rag      *fakeRAG
	ingestor *fakeIngestor
	research *fakeResearcher
	sessions *session.Store
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		rag: &fakeRAG{result: agenticrag.Result{
			Answer:        "Section 3 covers it.",
			Route:         agenticrag.RouteDocument,
			Verdict:       agenticrag.VerdictGrounded,
			DocumentsUsed: 2,
		}},
		ingestor: &fakeIngestor{},
		research: &fakeResearcher{},
		sessions: session.NewStore(time.Hour),
	}
	n := 0
	reports := report.NewService(env.research, memory.NewMemoryReportStore(),
		report.WithLogger(log.NoOpLogger{}),
		report.WithIDGenerator(func() string {
			n++
			return []string{"r1", "r2", "r3"}[n-1]
		}),
	)
	env.server = New(Deps{
		RAG:         env.rag,
		Ingestor:    env.ingestor,
		Reports:     reports,
		Sessions:    env.sessions,
		ReportStore: "memory",
		Logger:      log.NoOpLogger{},
	})
	return env
}

func (e *testEnv) do(t *testing.T, req *http.Request) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := e.server.App().Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var body map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	}
	return resp, body
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func uploadRequest(t *testing.T, target, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestHealth(t *testing.T) {
	env := newEnv(t)
	resp, body := env.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
	services := body["services"].(map[string]any)
	assert.Contains(t, services, "agentic_rag")
	assert.Contains(t, services, "researcher")
}

func TestUpload(t *testing.T) {
	env := newEnv(t)
	resp, body := env.do(t, uploadRequest(t, "/api/agentic-rag/upload?session_id=s1", "paper.pdf", []byte("%PDF-1.4 fake")))

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "paper.pdf", env.ingestor.name)
	assert.Equal(t, []byte("%PDF-1.4 fake"), env.ingestor.body)
	details := body["details"].(map[string]any)
	assert.Equal(t, "s1", details["session_id"])
	assert.EqualValues(t, 12, details["chunks"])

	sess, ok := env.sessions.Get("s1")
	require.True(t, ok)
	assert.Equal(t, "paper.pdf", sess.Document)

	_, status := env.do(t, httptest.NewRequest(http.MethodGet, "/api/agentic-rag/status", nil))
	rs := status["status"].(map[string]any)
	assert.Equal(t, true, rs["initialized"])
	assert.Equal(t, "paper.pdf", rs["current_pdf"])
}

func TestUpload_Rejections(t *testing.T) {
	env := newEnv(t)

	resp, body := env.do(t, uploadRequest(t, "/api/agentic-rag/upload", "notes.docx", []byte("x")))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, body["success"])

	req := httptest.NewRequest(http.MethodPost, "/api/agentic-rag/upload", strings.NewReader(""))
	resp, _ = env.do(t, req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChatAndHistory(t *testing.T) {
	env := newEnv(t)

	resp, body := env.do(t, jsonRequest(http.MethodPost, "/api/agentic-rag/chat", `{"message":"What does section 3 say?"}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, session.DefaultID, body["session_id"])
	assert.Contains(t, body["response"], "Section 3 covers it.")
	assert.Contains(t, body["response"], "Analyzed 2 document sections")

	resp, body = env.do(t, httptest.NewRequest(http.MethodGet, "/api/agentic-rag/history/default", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["total_exchanges"])
	h := body["conversation_history"].([]any)[0].(map[string]any)
	assert.Equal(t, "What does section 3 say?", h["question"])
	assert.EqualValues(t, 2, h["documents_used"])
	assert.Equal(t, false, h["web_search_used"])
}

func TestChat_SessionsSurviveLaterRequests(t *testing.T) {
	env := newEnv(t)

	resp, _ := env.do(t, jsonRequest(http.MethodPost, "/api/agentic-rag/chat?session_id=aaaaaaaa", `{"message":"first"}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	for i := 0; i < 50; i++ {
		resp, _ := env.do(t, jsonRequest(http.MethodPost, fmt.Sprintf("/api/agentic-rag/chat?session_id=b%07d", i), `{"message":"later"}`))
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	sess, ok := env.sessions.Get("aaaaaaaa")
	require.True(t, ok)
	assert.Equal(t, "aaaaaaaa", sess.ID)
	require.Len(t, sess.History, 1)
	assert.Equal(t, "first", sess.History[0].Question)
	assert.Equal(t, 51, env.sessions.Count())

	h := env.sessions.History("b0000049")
	require.Len(t, h, 1)
	assert.Equal(t, "later", h[0].Question)
}

func TestChat_Errors(t *testing.T) {
	env := newEnv(t)

	resp, _ := env.do(t, jsonRequest(http.MethodPost, "/api/agentic-rag/chat", `{"message":"  "}`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	env.rag.err = capability.Unavailable("llm", errors.New("timeout"))
	resp, body := env.do(t, jsonRequest(http.MethodPost, "/api/agentic-rag/chat", `{"message":"hi"}`))
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, body["error"], "timeout")
	assert.Empty(t, env.sessions.History(session.DefaultID))
}

func TestClearSession(t *testing.T) {
	env := newEnv(t)

	resp, _ := env.do(t, httptest.NewRequest(http.MethodDelete, "/api/agentic-rag/session/ghost", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	env.sessions.Append("s1", session.Exchange{Question: "q"})
	resp, body := env.do(t, httptest.NewRequest(http.MethodDelete, "/api/agentic-rag/session/s1", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body["message"], "s1")
	assert.Empty(t, env.sessions.History("s1"))
}

func TestReportLifecycle(t *testing.T) {
	env := newEnv(t)

	resp, body := env.do(t, jsonRequest(http.MethodPost, "/api/researcher/generate-report", `{"message":"fusion in 2024"}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "r1", body["report_id"])
	assert.Equal(t, "fusion in 2024", body["query"])
	meta := body["metadata"].(map[string]any)
	assert.EqualValues(t, 4, meta["search_results_count"])
	assert.Equal(t, "Fusion", meta["title"])

	resp, body = env.do(t, httptest.NewRequest(http.MethodGet, "/api/researcher/reports", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["total_reports"])

	resp, body = env.do(t, httptest.NewRequest(http.MethodGet, "/api/researcher/reports/r1", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body["content"], "report_id: r1")
	assert.Equal(t, "research_report_r1.md", body["filename"])

	resp, _ = env.do(t, httptest.NewRequest(http.MethodGet, "/api/researcher/reports/r1/download", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "attachment; filename=research_report_r1.md", resp.Header.Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/markdown"))
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("---\ntitle: Fusion\n")))

	resp, _ = env.do(t, httptest.NewRequest(http.MethodGet, "/api/researcher/reports/r1/download?format=html", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "attachment; filename=research_report_r1.html", resp.Header.Get("Content-Disposition"))

	resp, _ = env.do(t, httptest.NewRequest(http.MethodGet, "/api/researcher/reports/r1/download?format=pdf", nil))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.do(t, httptest.NewRequest(http.MethodDelete, "/api/researcher/reports/r1", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.do(t, httptest.NewRequest(http.MethodGet, "/api/researcher/reports/r1", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = env.do(t, httptest.NewRequest(http.MethodDelete, "/api/researcher/reports/r1", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGenerateReport_WithoutSave(t *testing.T) {
	env := newEnv(t)

	resp, body := env.do(t, jsonRequest(http.MethodPost, "/api/researcher/generate-report?save_report=false", `{"message":"fusion"}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["saved"])

	_, body = env.do(t, httptest.NewRequest(http.MethodGet, "/api/researcher/status", nil))
	status := body["status"].(map[string]any)
	assert.EqualValues(t, 0, status["saved_reports_count"])
	assert.Equal(t, "memory", status["report_store"])
}

func TestGenerateReport_Errors(t *testing.T) {
	env := newEnv(t)

	resp, _ := env.do(t, jsonRequest(http.MethodPost, "/api/researcher/generate-report", `{"message":""}`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	env.research.err = capability.Malformed("llm", errors.New("empty completion"))
	resp, _ = env.do(t, jsonRequest(http.MethodPost, "/api/researcher/generate-report", `{"message":"fusion"}`))
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestGenerateReport_Conflict(t *testing.T) {
	env := newEnv(t)
	reports := report.NewService(env.research, memory.NewMemoryReportStore(),
		report.WithLogger(log.NoOpLogger{}),
		report.WithIDGenerator(func() string { return "same" }),
	)
	srv := New(Deps{Reports: reports, Logger: log.NoOpLogger{}})

	for i, want := range []int{http.StatusOK, http.StatusConflict} {
		resp, err := srv.App().Test(jsonRequest(http.MethodPost, "/api/researcher/generate-report", `{"message":"fusion"}`), -1)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, want, resp.StatusCode, "request %d", i)
	}
}

func TestUnconfiguredAgents(t *testing.T) {
	srv := New(Deps{Logger: log.NoOpLogger{}})

	resp, err := srv.App().Test(jsonRequest(http.MethodPost, "/api/agentic-rag/chat", `{"message":"hi"}`), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, err = srv.App().Test(httptest.NewRequest(http.MethodGet, "/api/researcher/reports", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestFormatAnswer(t *testing.T) {
	out := formatAnswer("q", agenticrag.Result{Answer: "a", WebSearchUsed: true, DocumentsUsed: 1, LowConfidence: true})
	assert.Contains(t, out, "Enhanced with web search")
	assert.Contains(t, out, "Low confidence")
	assert.NotContains(t, out, "document sections")
}
