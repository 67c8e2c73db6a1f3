package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/avelier/defi-advisor/api"
	"github.com/avelier/defi-advisor/assistant"
	"github.com/avelier/defi-advisor/config"
	"github.com/avelier/defi-advisor/embeddings"
	"github.com/avelier/defi-advisor/ingestion"
	"github.com/avelier/defi-advisor/llm"
	"github.com/avelier/defi-advisor/market"
	"github.com/avelier/defi-advisor/prompts"
	"github.com/avelier/defi-advisor/search"
	"github.com/avelier/defi-advisor/splitter"
	"github.com/avelier/defi-advisor/vectorstore"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("configuration: %v", err)
	}

	switch os.Args[1] {
	case "serve":
		serveCmd(cfg, logger, os.Args[2:])
	case "ingest":
		ingestCmd(cfg, logger, os.Args[2:])
	default:
		logger.Printf("unknown command: %s", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func serveCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := flags.String("addr", cfg.HTTPAddr, "address to listen on")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse serve flags: %v", err)
	}

	if cfg.SerperAPIKey == "" {
		logger.Fatalf("configuration: SERPER_API_KEY not set")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	embedder, err := embeddings.NewEmbedder(cfg)
	if err != nil {
		logger.Fatalf("embedder setup: %v", err)
	}

	llmClient, err := llm.NewClient(cfg)
	if err != nil {
		logger.Fatalf("llm setup: %v", err)
	}

	store, err := vectorstore.New(ctx, cfg)
	if err != nil {
		logger.Fatalf("vector store setup: %v", err)
	}

	counter, err := llm.NewTokenCounter(llm.DefaultEncoding)
	if err != nil {
		logger.Printf("token counter unavailable, usage will report zero: %v", err)
	}

	planner := llm.NewCompleter(llmClient, prompts.Planner, 0, counter)
	summarizer := llm.NewCompleter(llmClient, prompts.Summarize, 0, counter)
	qa := llm.NewCompleter(llmClient, prompts.QA, 0, counter)

	searcher := search.NewClient(search.Config{APIKey: cfg.SerperAPIKey})
	sentiment := market.NewClient(market.Config{})

	svc := assistant.NewService(planner, summarizer, qa, searcher, embedder, store, logger)
	server := api.New(svc, sentiment, logger)

	httpServer := &http.Server{Addr: *addr, Handler: server.Handler()}

	go func() {
		<-ctx.Done()
		if err := httpServer.Shutdown(context.Background()); err != nil {
			logger.Printf("http shutdown: %v", err)
		}
	}()

	logger.Printf("listening on %s (store=%s, collection=%s)", *addr, cfg.VectorStore, cfg.Collection)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("http server: %v", err)
	}
}

func ingestCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("ingest", flag.ExitOnError)
	file := flags.String("file", cfg.DocumentPath, "path to the source document")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse ingest flags: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	embedder, err := embeddings.NewEmbedder(cfg)
	if err != nil {
		logger.Fatalf("embedder setup: %v", err)
	}

	store, err := vectorstore.New(ctx, cfg)
	if err != nil {
		logger.Fatalf("vector store setup: %v", err)
	}

	split := splitter.New(splitter.DefaultChunkSize, splitter.DefaultChunkOverlap, splitter.DefaultSeparators)
	svc := ingestion.NewService(embedder, store, split, logger)

	logger.Printf("ingesting %s using %s embeddings into %s", *file, cfg.Embeddings.Model, cfg.Collection)
	if err := svc.IngestFile(ctx, *file); err != nil {
		logger.Fatalf("ingestion failed: %v", err)
	}
}

func printUsage() {
	fmt.Println("Usage: defi-advisor <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  serve    Run the HTTP API (use --addr to override the listen address)")
	fmt.Println("  ingest   Chunk, embed and upsert the strategy document (use --file to override the source)")
}
