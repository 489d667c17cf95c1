package rag

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mahmoud-mohsen97/Chat-Agents/capability"
	"github.com/mahmoud-mohsen97/Chat-Agents/log"
	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/textsplitter"
)

// Chunking defaults.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// ErrUnsupportedFormat is returned for files that are not PDF, text or Markdown.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// IngestResult summarises one ingestion.
type IngestResult struct {
	Source string `json:"source"`
	Pages  int    `json:"pages"`
	Chunks int    `json:"chunks"`
}

// Ingestor loads documents, splits them into chunks and writes the chunks to
// a vector index.
type Ingestor struct {
	index    capability.VectorIndex
	splitter textsplitter.TextSplitter
	logger   log.Logger
}

// IngestorOption configures an Ingestor.
type IngestorOption func(*Ingestor)

// WithSplitter replaces the default recursive character splitter.
func WithSplitter(s textsplitter.TextSplitter) IngestorOption {
	return func(i *Ingestor) { i.splitter = s }
}

// WithIngestLogger sets the logger.
func WithIngestLogger(l log.Logger) IngestorOption {
	return func(i *Ingestor) { i.logger = l }
}

// NewIngestor creates an ingestor writing to index.
func NewIngestor(index capability.VectorIndex, opts ...IngestorOption) *Ingestor {
	i := &Ingestor{
		index: index,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(DefaultChunkSize),
			textsplitter.WithChunkOverlap(DefaultChunkOverlap),
		),
	}
	for _, opt := range opts {
		opt(i)
	}
	i.logger = log.OrDefault(i.logger)
	return i
}

// IngestFile reads the file at path and indexes it.
func (i *Ingestor) IngestFile(ctx context.Context, path string) (IngestResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return IngestResult{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return IngestResult{}, err
	}
	return i.Ingest(ctx, filepath.Base(path), f, info.Size())
}

// Replace clears the index and then ingests the document, so the index holds
// only the new document afterwards.
func (i *Ingestor) Replace(ctx context.Context, name string, r io.ReaderAt, size int64) (IngestResult, error) {
	if err := i.index.Reset(ctx); err != nil {
		return IngestResult{}, fmt.Errorf("failed to reset index: %w", err)
	}
	return i.Ingest(ctx, name, r, size)
}

// Ingest loads the document named name from r, splits it and indexes the chunks.
// The format is chosen by the file extension.
func (i *Ingestor) Ingest(ctx context.Context, name string, r io.ReaderAt, size int64) (IngestResult, error) {
	pages, err := load(ctx, name, r, size)
	if err != nil {
		return IngestResult{}, err
	}
	i.logger.Info("Loaded %s: %d page(s)", name, len(pages))

	chunks, err := textsplitter.SplitDocuments(i.splitter, pages)
	if err != nil {
		return IngestResult{}, fmt.Errorf("failed to split documents: %w", err)
	}

	docs := make([]capability.Document, 0, len(chunks))
	for n, c := range chunks {
		if strings.TrimSpace(c.PageContent) == "" {
			continue
		}
		page := asInt(c.Metadata[MetaPage])
		docs = append(docs, capability.Document{
			ID:       fmt.Sprintf("%s:%d:%d", name, page, n),
			Text:     c.PageContent,
			Source:   name,
			Page:     page,
			Metadata: map[string]any{"type": "text"},
		})
	}
	i.logger.Info("Split %s into %d chunks", name, len(docs))

	if err := i.index.Index(ctx, docs...); err != nil {
		return IngestResult{}, fmt.Errorf("failed to index documents: %w", err)
	}
	return IngestResult{Source: name, Pages: len(pages), Chunks: len(docs)}, nil
}

// SupportedFormat reports whether name has an extension Ingest understands.
func SupportedFormat(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf", ".txt", ".md", ".markdown":
		return true
	}
	return false
}

func load(ctx context.Context, name string, r io.ReaderAt, size int64) ([]schema.Document, error) {
	var (
		docs []schema.Document
		err  error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		docs, err = documentloaders.NewPDF(r, size).Load(ctx)
	case ".txt", ".md", ".markdown":
		docs, err = documentloaders.NewText(io.NewSectionReader(r, 0, size)).Load(ctx)
		for n := range docs {
			if docs[n].Metadata == nil {
				docs[n].Metadata = map[string]any{}
			}
			docs[n].Metadata[MetaPage] = n + 1
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", name, err)
	}
	return docs, nil
}
