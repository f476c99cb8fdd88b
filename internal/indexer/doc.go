// Package indexer coordinates the end-to-end indexing pipeline for GitHub repositories.
//
// The indexer orchestrates scanning, parsing, embedding, and vector storage,
// managing concurrency, incremental updates, and per-repository state for
// asynchronous indexing jobs.
//
// # Basic Usage
//
//	idx := indexer.New(provider, scanner, parser, embedder, index, store, cfg, log)
//
//	jobID, err := idx.StartIndexing(ctx, repositoryID, false)
//
//	progress, _ := idx.GetProgress(jobID)
//	fmt.Printf("%s: %d/%d files\n", progress.Stage, progress.ProcessedFiles, progress.TotalFiles)
//
// # Indexing Pipeline
//
// Each job executes a multi-stage pipeline:
//
//  1. Initializing: validate embedder configuration, ensure the collection exists
//  2. Scanning: list the remote file tree, apply ignore and size filters
//  3. Parsing: fetch and chunk changed files into code blocks (parallel)
//  4. Embedding: generate vectors in batches, overlapped with parsing
//  5. Storing: upsert points and record sync metadata
//
// # Incremental Indexing
//
// File change detection uses SHA-256 content hashing. A file's hash is
// recorded only after every one of its blocks has been stored, so a
// partially indexed file is always retried on the next run. Unchanged
// files are skipped entirely; changed files have their stale points
// deleted before the new ones land. Force a full rebuild with:
//
//	jobID, err := idx.StartIndexing(ctx, repositoryID, true)
//
// # Jobs and State
//
// StartIndexing returns immediately; the job runs detached from the
// caller's context. One job per repository at a time, any number of
// repositories concurrently. A second StartIndexing for the same
// repository returns types.ErrSyncInProgress. Cancel with:
//
//	err := idx.CancelIndexing(jobID)
//
// A cancelled job reaches StatusCancelled and leaves the repository in
// StateError with the message "sync cancelled".
//
// # Error Handling
//
// Per-file fetch and parse failures are isolated: counted, recorded on
// the progress snapshot, and skipped. A failed embedding batch skips its
// blocks and poisons the hash records of the files involved. Storage
// failures are fatal to the job. A job where every block was skipped
// fails rather than reporting an empty success.
package indexer
