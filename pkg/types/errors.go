package types

import "errors"

// Error taxonomy for the indexing pipeline. Fatal errors bubble to the
// job's terminal state; isolated errors are counted and skipped.
var (
	// ErrProvider wraps listing/content fetch failures from the source
	// repository provider. Retries live at the provider boundary; once
	// they exhaust the error is fatal to the job.
	ErrProvider = errors.New("source provider request failed")

	// ErrParse marks a single file's parse failure. Isolated: logged,
	// the file is skipped and the run continues.
	ErrParse = errors.New("parse failed")

	// ErrEmbeddingBatch marks one embedding batch failing after bounded
	// retries. Its blocks are reported skipped, not indexed.
	ErrEmbeddingBatch = errors.New("embedding batch failed")

	// ErrIndexBackend marks vector-index unavailability. Fatal: a partial
	// index without the ability to persist is useless.
	ErrIndexBackend = errors.New("vector index backend unavailable")

	// ErrConfiguration marks invalid embedder or index configuration
	// detected at the initializing stage. The job never starts work.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrCancelled marks a user-initiated cancellation. A distinct
	// terminal outcome, not a failure.
	ErrCancelled = errors.New("indexing cancelled")

	// ErrSyncInProgress is returned when indexing is requested for a
	// repository that already has an active job.
	ErrSyncInProgress = errors.New("sync already in progress")

	// ErrNotFound is returned by lookups for unknown entities.
	ErrNotFound = errors.New("not found")
)
