package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/reviewlens/reviewlens/internal/config"
	"github.com/reviewlens/reviewlens/internal/embedder"
	"github.com/reviewlens/reviewlens/internal/githubapi"
	"github.com/reviewlens/reviewlens/internal/indexer"
	"github.com/reviewlens/reviewlens/internal/mcp"
	"github.com/reviewlens/reviewlens/internal/parser"
	"github.com/reviewlens/reviewlens/internal/repostore"
	"github.com/reviewlens/reviewlens/internal/scanner"
	"github.com/reviewlens/reviewlens/internal/searcher"
	"github.com/reviewlens/reviewlens/internal/vectorindex"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	flags := pflag.NewFlagSet("reviewlens", pflag.ContinueOnError)
	showVersion := flags.Bool("version", false, "print version and exit")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("db-path", "", "path to the SQLite database file")
	flags.String("github-token", "", "GitHub API token")
	flags.String("embedder-provider", "", "embedding provider (openai, jina, local)")
	flags.String("embedder-model", "", "embedding model identifier")
	flags.Int("parsing-concurrency", 0, "concurrent file fetch/parse workers")
	flags.Int("batch-concurrency", 0, "concurrent embedding batches in flight")
	flags.Int("batch-segment-threshold", 0, "code blocks per embedding batch")

	if err := flags.Parse(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if *showVersion {
		fmt.Printf("ReviewLens Indexing Server\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		fmt.Printf("Build Mode: %s\n", repostore.BuildMode)
		fmt.Printf("SQLite Driver: %s\n", repostore.DriverName)
		os.Exit(0)
	}

	settings, err := config.LoadSettingsWithFlags(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// stdout belongs to the MCP protocol; all logging goes to stderr.
	log := config.NewLogger(os.Stderr, settings.LogLevel)
	log.Info("reviewlens starting", "version", version,
		"build_mode", repostore.BuildMode, "driver", repostore.DriverName)
	config.Log(settings, log)

	if err := config.ValidateSettings(settings); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if err := run(settings, log); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(settings *config.Settings, log *slog.Logger) error {
	if err := os.MkdirAll(filepath.Dir(settings.DBPath), 0o755); err != nil {
		return fmt.Errorf("create database directory: %w", err)
	}
	db, err := repostore.Open(settings.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	store, err := repostore.NewSQLiteStore(db)
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}

	index, err := vectorindex.NewSQLiteIndex(db)
	if err != nil {
		return fmt.Errorf("initialize vector index: %w", err)
	}

	provider, err := githubapi.NewClient(settings.GitHub.Token, settings.GitHub.BaseURL, log)
	if err != nil {
		return fmt.Errorf("initialize github client: %w", err)
	}

	sc, err := scanner.New(provider, settings.Scanner, log)
	if err != nil {
		return fmt.Errorf("initialize scanner: %w", err)
	}

	emb, err := embedder.New(settings.Embedder)
	if err != nil {
		return fmt.Errorf("initialize embedder: %w", err)
	}
	defer func() { _ = emb.Close() }()

	ps := parser.New(settings.Parser)
	idx := indexer.New(provider, sc, ps, emb, index, store, settings.Indexer, log)
	srch := searcher.New(emb, index, log)
	srv := mcp.NewServer(store, idx, srch, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		log.Info("mcp server ready, listening on stdio")
		errChan <- srv.Serve(ctx)
	}()

	select {
	case sig := <-sigChan:
		log.Info("shutting down", "signal", sig.String())
		cancel()
		return nil
	case err := <-errChan:
		return err
	}
}
