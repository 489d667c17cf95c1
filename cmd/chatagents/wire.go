package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/textsplitter"

	"github.com/mahmoud-mohsen97/Chat-Agents/agenticrag"
	"github.com/mahmoud-mohsen97/Chat-Agents/capability"
	"github.com/mahmoud-mohsen97/Chat-Agents/config"
	"github.com/mahmoud-mohsen97/Chat-Agents/llm"
	"github.com/mahmoud-mohsen97/Chat-Agents/log"
	"github.com/mahmoud-mohsen97/Chat-Agents/rag"
	"github.com/mahmoud-mohsen97/Chat-Agents/report"
	"github.com/mahmoud-mohsen97/Chat-Agents/researcher"
	"github.com/mahmoud-mohsen97/Chat-Agents/store"
	"github.com/mahmoud-mohsen97/Chat-Agents/store/file"
	"github.com/mahmoud-mohsen97/Chat-Agents/store/memory"
	"github.com/mahmoud-mohsen97/Chat-Agents/store/postgres"
	"github.com/mahmoud-mohsen97/Chat-Agents/store/redis"
	"github.com/mahmoud-mohsen97/Chat-Agents/store/sqlite"
	"github.com/mahmoud-mohsen97/Chat-Agents/tool"
)

// app holds every component built from the configuration.
type app struct {
	cfg      *config.Config
	logger   log.Logger
	index    capability.VectorIndex
	ingestor *rag.Ingestor
	rag      *agenticrag.Agent
	research *researcher.Agent
	reports  *report.Service
	closers  []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func newApp(ctx context.Context, cfg *config.Config, logger log.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	model, err := llm.NewModel(ctx, cfg.ProviderConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create model: %w", err)
	}
	embedder, err := llm.NewEmbedder(ctx, cfg.ProviderConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	search, err := tool.NewWebSearcher(cfg.Search.Provider, cfg.SearchAPIKey(), cfg.Search.MaxResults)
	if err != nil {
		return nil, fmt.Errorf("failed to create web searcher: %w", err)
	}

	a.index, err = newIndex(cfg, embedder)
	if err != nil {
		return nil, err
	}
	a.ingestor = rag.NewIngestor(a.index,
		rag.WithSplitter(textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(cfg.Vector.ChunkSize),
			textsplitter.WithChunkOverlap(cfg.Vector.ChunkOverlap),
		)),
		rag.WithIngestLogger(logger),
	)

	a.rag, err = agenticrag.New(model, a.index, search,
		agenticrag.WithTopK(cfg.Vector.TopK),
		agenticrag.WithLogger(logger),
		agenticrag.WithRetry(cfg.Agent.Retry),
		agenticrag.WithRecursionLimit(cfg.Agent.RecursionLimit),
	)
	if err != nil {
		return nil, err
	}
	a.research, err = researcher.New(model, search,
		researcher.WithLogger(logger),
		researcher.WithRetry(cfg.Agent.Retry),
	)
	if err != nil {
		return nil, err
	}

	reports, err := a.openReportStore(ctx)
	if err != nil {
		return nil, err
	}
	a.reports = report.NewService(a.research, reports, report.WithLogger(logger))
	return a, nil
}

func newIndex(cfg *config.Config, embedder embeddings.Embedder) (capability.VectorIndex, error) {
	switch strings.ToLower(cfg.Vector.Index) {
	case "", "memory":
		return rag.NewMemoryIndex(embedder), nil
	case "qdrant":
		idx, err := rag.NewQdrantIndex(cfg.Vector.QdrantURL, embedder,
			rag.WithQdrantAPIKey(cfg.Vector.QdrantAPIKey),
			rag.WithQdrantCollection(cfg.Vector.Collection),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create qdrant index: %w", err)
		}
		return idx, nil
	default:
		return nil, fmt.Errorf("unknown vector index %q", cfg.Vector.Index)
	}
}

func (a *app) openReportStore(ctx context.Context) (store.ReportStore, error) {
	rc := a.cfg.Reports
	switch strings.ToLower(rc.Store) {
	case "memory":
		return memory.NewMemoryReportStore(), nil
	case "", "file":
		s, err := file.NewFileReportStore(rc.Dir)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "redis":
		s := redis.NewRedisReportStore(redis.RedisOptions{Addr: rc.DSN})
		a.closers = append(a.closers, func() { s.Close() })
		return s, nil
	case "sqlite":
		s, err := sqlite.NewSqliteReportStore(sqlite.SqliteOptions{Path: rc.DSN})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { s.Close() })
		return s, nil
	case "postgres":
		s, err := postgres.NewPostgresReportStore(ctx, postgres.PostgresOptions{ConnString: rc.DSN})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s.Close)
		if err := s.InitSchema(ctx); err != nil {
			return nil, fmt.Errorf("failed to create reports table: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown report store %q", rc.Store)
	}
}
