// Command chatagents serves the agentic RAG and researcher agents over HTTP
// and runs them from the terminal.
//
// Usage:
//
//	chatagents serve
//	chatagents ingest <file>...
//	chatagents ask [-file doc.pdf] <question>
//	chatagents research [-no-save] <topic>
//	chatagents graph [-format mermaid|dot|ascii] <rag|research>
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mahmoud-mohsen97/Chat-Agents/agenticrag"
	"github.com/mahmoud-mohsen97/Chat-Agents/api"
	"github.com/mahmoud-mohsen97/Chat-Agents/config"
	"github.com/mahmoud-mohsen97/Chat-Agents/graph"
	"github.com/mahmoud-mohsen97/Chat-Agents/log"
	"github.com/mahmoud-mohsen97/Chat-Agents/researcher"
	"github.com/mahmoud-mohsen97/Chat-Agents/session"
)

const shutdownTimeout = 10 * time.Second

func usage() {
	fmt.Fprintln(os.Stderr, `usage: chatagents <command> [arguments]

commands:
  serve                 start the HTTP server
  ingest <file>...      index PDF, text or markdown files
  ask <question>        answer a question with the agentic RAG agent
  research <topic>      write a research report
  graph <rag|research>  print an agent graph`)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	cmd, args := os.Args[1], os.Args[2:]

	var err error
	switch cmd {
	case "serve":
		err = runServe()
	case "ingest":
		err = runIngest(args)
	case "ask":
		err = runAsk(args)
	case "research":
		err = runResearch(args)
	case "graph":
		err = runGraph(args)
	case "help", "-h", "--help":
		usage()
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fatal(err)
	}
}

func setup(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	level, err := log.ParseLevel(cfg.Agent.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := log.NewGologLoggerFor("chat-agents", level)
	log.SetDefaultLogger(logger)

	return newApp(ctx, cfg, logger)
}

func runServe() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := api.New(api.Deps{
		RAG:         a.rag,
		Ingestor:    a.ingestor,
		Index:       a.index,
		Reports:     a.reports,
		Sessions:    session.NewStore(a.cfg.Agent.SessionTTL),
		ReportStore: a.cfg.Reports.Store,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		BodyLimit:   a.cfg.Server.BodyLimitMB * 1024 * 1024,
		Logger:      a.logger,
	})

	errc := make(chan error, 1)
	go func() { errc <- srv.Listen(a.cfg.Addr()) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runIngest(args []string) error {
	if len(args) == 0 {
		return errors.New("ingest needs at least one file")
	}
	ctx := context.Background()
	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	if a.cfg.Vector.Index == "memory" {
		printWarn("VECTOR_INDEX=memory: chunks are discarded when this command exits")
	}

	for _, path := range args {
		res, err := a.ingestor.IngestFile(ctx, path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		printField(res.Source, fmt.Sprintf("%d pages, %d chunks", res.Pages, res.Chunks))
	}
	return nil
}

func runAsk(args []string) error {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	file := fs.String("file", "", "document to index before asking")
	fs.Parse(args)
	question := strings.Join(fs.Args(), " ")
	if strings.TrimSpace(question) == "" {
		return errors.New("ask needs a question")
	}

	ctx := context.Background()
	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			return err
		}
		info, err := f.Stat()
		if err != nil {
			f.Close()
			return err
		}
		res, err := a.ingestor.Replace(ctx, *file, f, info.Size())
		f.Close()
		if err != nil {
			return err
		}
		printNote("indexed %s: %d pages, %d chunks", res.Source, res.Pages, res.Chunks)
	}

	res, err := a.rag.Run(ctx, question)
	if err != nil {
		return err
	}

	printTitle(question)
	printBox(res.Answer)
	printField("route", res.Route)
	printField("verdict", res.Verdict)
	printField("documents used", res.DocumentsUsed)
	printField("web search", res.WebSearchUsed)
	if res.LowConfidence {
		printWarn("low confidence: the answer could not be verified against its sources")
	}
	printNote("path: %s", strings.Join(res.Path, " -> "))
	return nil
}

func runResearch(args []string) error {
	fs := flag.NewFlagSet("research", flag.ExitOnError)
	noSave := fs.Bool("no-save", false, "do not write the report to the store")
	fs.Parse(args)
	topic := strings.Join(fs.Args(), " ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	r, err := a.reports.Generate(ctx, topic, !*noSave)
	if err != nil {
		return err
	}

	printTitle(r.Title)
	fmt.Println(r.Markdown)
	printField("report id", r.ID)
	printField("sources", r.ResultCount)
	printField("words", r.WordCount)
	if !*noSave {
		printNote("saved to the %s store", a.cfg.Reports.Store)
	}
	return nil
}

// runGraph prints a graph without loading configuration; it never runs a node.
func runGraph(args []string) error {
	fs := flag.NewFlagSet("graph", flag.ExitOnError)
	format := fs.String("format", "mermaid", "mermaid, dot or ascii")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return errors.New("graph needs one of: rag, research")
	}

	var out string
	var err error
	switch fs.Arg(0) {
	case "rag":
		var a *agenticrag.Agent
		if a, err = agenticrag.New(nil, nil, nil, agenticrag.WithLogger(log.NoOpLogger{})); err == nil {
			out, err = draw(graph.NewExporter(a.Graph()), *format)
		}
	case "research":
		var a *researcher.Agent
		if a, err = researcher.New(nil, nil, researcher.WithLogger(log.NoOpLogger{})); err == nil {
			out, err = draw(graph.NewExporter(a.Graph()), *format)
		}
	default:
		return fmt.Errorf("unknown graph %q", fs.Arg(0))
	}
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

type drawer interface {
	DrawMermaid() string
	DrawDOT() string
	DrawASCII() string
}

func draw(d drawer, format string) (string, error) {
	switch format {
	case "mermaid":
		return d.DrawMermaid(), nil
	case "dot":
		return d.DrawDOT(), nil
	case "ascii":
		return d.DrawASCII(), nil
	default:
		return "", fmt.Errorf("unknown format %q", format)
	}
}
