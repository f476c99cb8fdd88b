package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/reviewlens/reviewlens/internal/config"
	"github.com/reviewlens/reviewlens/internal/embedder"
	"github.com/reviewlens/reviewlens/internal/githubapi"
	"github.com/reviewlens/reviewlens/internal/parser"
	"github.com/reviewlens/reviewlens/internal/repostore"
	"github.com/reviewlens/reviewlens/internal/scanner"
	"github.com/reviewlens/reviewlens/internal/vectorindex"
	"github.com/reviewlens/reviewlens/pkg/types"
)

// Indexer orchestrates the scan, parse, embed, store pipeline for one
// repository at a time per repository, many repositories concurrently.
// Jobs run detached from the caller's context and are observed through
// progress snapshots.
type Indexer struct {
	provider githubapi.Provider
	scanner  *scanner.Scanner
	parser   *parser.Parser
	embedder embedder.Embedder
	index    vectorindex.Index
	store    repostore.Store
	states   *StateRegistry
	cfg      config.IndexerSettings
	log      *slog.Logger

	jobRetention time.Duration

	mu   sync.Mutex
	jobs map[string]*job
}

// defaultJobRetention is how long a terminal job's snapshot stays
// queryable before it is pruned from the job table.
const defaultJobRetention = time.Hour

type job struct {
	repositoryID int64
	progress     *progressTracker
	cancel       context.CancelFunc
	done         chan struct{}
}

// New wires the pipeline. All dependencies are required.
func New(
	provider githubapi.Provider,
	sc *scanner.Scanner,
	ps *parser.Parser,
	emb embedder.Embedder,
	index vectorindex.Index,
	store repostore.Store,
	cfg config.IndexerSettings,
	log *slog.Logger,
) *Indexer {
	if log == nil {
		log = slog.Default()
	}
	return &Indexer{
		provider:     provider,
		scanner:      sc,
		parser:       ps,
		embedder:     emb,
		index:        index,
		store:        store,
		states:       NewStateRegistry(),
		cfg:          cfg,
		log:          log,
		jobRetention: defaultJobRetention,
		jobs:         make(map[string]*job),
	}
}

// StartIndexing launches an asynchronous indexing job for a repository
// and returns its job id immediately. force discards the existing index
// and all recorded file hashes first, making the run a full reindex.
// Returns types.ErrSyncInProgress when the repository already has an
// active job.
func (i *Indexer) StartIndexing(ctx context.Context, repositoryID int64, force bool) (string, error) {
	repo, err := i.store.GetRepository(ctx, repositoryID)
	if err != nil {
		return "", err
	}

	if err := i.states.Begin(repositoryID); err != nil {
		return "", err
	}

	jobID := uuid.NewString()
	tracker := newProgressTracker(jobID, repositoryID)

	// The job outlives the request that started it.
	runCtx, cancel := context.WithCancel(context.Background())
	j := &job{
		repositoryID: repositoryID,
		progress:     tracker,
		cancel:       cancel,
		done:         make(chan struct{}),
	}

	i.mu.Lock()
	i.jobs[jobID] = j
	i.mu.Unlock()

	go func() {
		defer close(j.done)
		defer cancel()
		i.run(runCtx, jobID, tracker, repo, force)
		i.pruneJobAfter(jobID, i.jobRetention)
	}()

	return jobID, nil
}

// pruneJobAfter removes a finished job's entry once the retention window
// elapses, keeping the job table bounded on long-lived servers.
func (i *Indexer) pruneJobAfter(jobID string, retention time.Duration) {
	time.AfterFunc(retention, func() {
		i.mu.Lock()
		delete(i.jobs, jobID)
		i.mu.Unlock()
	})
}

// GetProgress returns a snapshot of a job, including terminal ones.
// Terminal jobs stay queryable for a retention window, then are pruned.
func (i *Indexer) GetProgress(jobID string) (types.IndexingProgress, error) {
	i.mu.Lock()
	j, ok := i.jobs[jobID]
	i.mu.Unlock()
	if !ok {
		return types.IndexingProgress{}, fmt.Errorf("%w: job %s", types.ErrNotFound, jobID)
	}
	return j.progress.Snapshot(), nil
}

// CancelIndexing requests cancellation of a running job. Cancelling a
// job that already reached a terminal status is a harmless no-op.
func (i *Indexer) CancelIndexing(jobID string) error {
	i.mu.Lock()
	j, ok := i.jobs[jobID]
	i.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: job %s", types.ErrNotFound, jobID)
	}
	j.cancel()
	return nil
}

// RepositoryState returns the coarse state and last error message of a
// repository.
func (i *Indexer) RepositoryState(repositoryID int64) (types.IndexingState, string) {
	return i.states.Get(repositoryID)
}

// RepositoryStats summarizes what the index currently holds for a
// repository.
type RepositoryStats struct {
	RepositoryID  int64
	FullName      string
	State         types.IndexingState
	StateMessage  string
	IndexedPoints int
	TrackedFiles  int
	Languages     map[string]int64
	LastSyncedAt  time.Time
}

// Stats reads current index statistics for a repository.
func (i *Indexer) Stats(ctx context.Context, repositoryID int64) (*RepositoryStats, error) {
	repo, err := i.store.GetRepository(ctx, repositoryID)
	if err != nil {
		return nil, err
	}
	points, err := i.index.CountPoints(ctx, repositoryID)
	if err != nil {
		return nil, err
	}
	hashes, err := i.store.FileHashes(ctx, repositoryID)
	if err != nil {
		return nil, err
	}
	state, msg := i.states.Get(repositoryID)
	return &RepositoryStats{
		RepositoryID:  repositoryID,
		FullName:      repo.FullName,
		State:         state,
		StateMessage:  msg,
		IndexedPoints: points,
		TrackedFiles:  len(hashes),
		Languages:     repo.Languages,
		LastSyncedAt:  repo.LastSyncedAt,
	}, nil
}

// DeleteIndex drops a repository's vector collection and file-hash
// bookkeeping, returning it to Standby. Refused while a job is active.
func (i *Indexer) DeleteIndex(ctx context.Context, repositoryID int64) error {
	if state, _ := i.states.Get(repositoryID); state == types.StateIndexing {
		return types.ErrSyncInProgress
	}
	if err := i.index.DeleteCollection(ctx, repositoryID); err != nil {
		return err
	}
	if err := i.store.DeleteFileHashes(ctx, repositoryID); err != nil {
		return err
	}
	i.states.Reset(repositoryID)
	return nil
}

func (i *Indexer) run(ctx context.Context, jobID string, tracker *progressTracker, repo *repostore.Repository, force bool) {
	log := i.log.With("job_id", jobID, "repository", repo.FullName)
	tracker.start()
	log.Info("indexing started", "force", force)

	err := i.execute(ctx, tracker, repo, force, log)

	snap := tracker.Snapshot()
	switch {
	case err == nil:
		tracker.setStage(types.StageCompleted)
		tracker.finish(types.StatusCompleted, "indexing completed", "")
		i.states.Complete(repo.ID)
		log.Info("indexing completed",
			"files", snap.ProcessedFiles,
			"indexed_blocks", snap.IndexedBlocks,
			"skipped_blocks", snap.SkippedBlocks)
	case errors.Is(err, context.Canceled) || errors.Is(err, types.ErrCancelled):
		tracker.finish(types.StatusCancelled, "sync cancelled", "")
		i.states.Fail(repo.ID, "sync cancelled")
		log.Info("indexing cancelled", "stage", snap.Stage)
	default:
		tracker.finish(types.StatusFailed, "", err.Error())
		i.states.Fail(repo.ID, err.Error())
		log.Error("indexing failed", "stage", snap.Stage, "error", err)
	}
}

// execute runs the pipeline stages. Any returned error is fatal to the
// job; isolated per-file and per-batch failures are absorbed into the
// progress snapshot instead.
func (i *Indexer) execute(ctx context.Context, tracker *progressTracker, repo *repostore.Repository, force bool, log *slog.Logger) error {
	tracker.setStage(types.StageInitializing)
	if err := i.embedder.ValidateConfiguration(ctx); err != nil {
		return err
	}
	if err := i.index.Ping(ctx); err != nil {
		return err
	}
	if _, err := i.index.Initialize(ctx, repo.ID); err != nil {
		return err
	}
	if force {
		if err := i.index.ClearCollection(ctx, repo.ID); err != nil {
			return err
		}
		if err := i.store.DeleteFileHashes(ctx, repo.ID); err != nil {
			return err
		}
	}

	tracker.setStage(types.StageScanning)
	files, stats, err := i.scanner.ScanWithStats(ctx, repo.OwnerLogin, repo.Name)
	if err != nil {
		return err
	}
	tracker.setTotalFiles(len(files))

	prevHashes, err := i.store.FileHashes(ctx, repo.ID)
	if err != nil {
		return err
	}

	tracker.setStage(types.StageParsing)
	ledger := newFileLedger()
	acc := newBlockAccumulator(i.cfg.BatchSegmentThreshold)

	// Embedding batches run in their own bounded pool, overlapped with
	// file parsing.
	batchGroup, batchCtx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(max(i.cfg.BatchConcurrency, 1)))
	submit := func(blocks []types.CodeBlock) {
		batchGroup.Go(func() error {
			if err := sem.Acquire(batchCtx, 1); err != nil {
				return err
			}
			defer sem.Release(1)
			return i.processBatch(batchCtx, tracker, repo, blocks, ledger, log)
		})
	}

	fileGroup, fileCtx := errgroup.WithContext(batchCtx)
	fileGroup.SetLimit(max(i.cfg.ParsingConcurrency, 1))
	for _, f := range files {
		f := f
		fileGroup.Go(func() error {
			return i.processFile(fileCtx, tracker, repo, f, prevHashes, force, ledger, acc, submit, log)
		})
	}
	if err := fileGroup.Wait(); err != nil {
		// A fatal batch failure cancels the file workers through the
		// shared context; the batch error is the root cause and wins
		// over the resulting context.Canceled from the workers.
		if berr := batchGroup.Wait(); berr != nil {
			return berr
		}
		return err
	}

	tracker.setStage(types.StageEmbedding)
	if rest := acc.drain(); len(rest) > 0 {
		submit(rest)
	}
	if err := batchGroup.Wait(); err != nil {
		return err
	}

	tracker.setStage(types.StageStoring)
	snap := tracker.Snapshot()
	if stats.SupportedFiles > 0 && snap.TotalBlocks > 0 && snap.IndexedBlocks == 0 {
		return fmt.Errorf("%w: no blocks could be indexed", types.ErrEmbeddingBatch)
	}

	languages, err := i.provider.GetLanguages(ctx, repo.OwnerLogin, repo.Name)
	if err != nil {
		// Language stats are decorative; keep whatever was known before.
		log.Warn("language lookup failed", "error", err)
		languages = repo.Languages
	}
	if err := i.store.UpdateSyncResult(ctx, repo.ID, languages, time.Now()); err != nil {
		return err
	}
	return nil
}

// processFile fetches, hashes and parses one file, feeding its blocks to
// the batch accumulator. Fetch and parse failures are isolated: counted,
// recorded and skipped.
func (i *Indexer) processFile(ctx context.Context, tracker *progressTracker, repo *repostore.Repository,
	f scanner.File, prevHashes map[string]string, force bool,
	ledger *fileLedger, acc *blockAccumulator, submit func([]types.CodeBlock), log *slog.Logger) error {

	if err := ctx.Err(); err != nil {
		return err
	}
	tracker.setCurrentFile(f.Path)

	content, err := i.provider.GetFileContent(ctx, repo.OwnerLogin, repo.Name, f.Path)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		tracker.recordError(fmt.Sprintf("%s: fetch failed: %v", f.Path, err))
		tracker.addProcessedFiles(1)
		log.Warn("file fetch failed", "path", f.Path, "error", err)
		return nil
	}

	hash := types.HashBytes(content)
	prevHash, existed := prevHashes[f.Path]
	if !force && existed && prevHash == hash {
		tracker.addProcessedFiles(1)
		return nil
	}

	blocks, err := i.parser.Parse(f.Path, content, hash)
	if err != nil {
		tracker.recordError(fmt.Sprintf("%s: %v", f.Path, err))
		tracker.addProcessedFiles(1)
		log.Warn("parse failed", "path", f.Path, "error", err)
		return nil
	}

	// A changed file's stale points must go before its new ones land.
	if existed && !force {
		if err := i.index.DeletePointsByFile(ctx, repo.ID, f.Path); err != nil {
			return err
		}
	}

	if len(blocks) == 0 {
		if err := i.store.PutFileHash(ctx, repo.ID, f.Path, hash); err != nil {
			log.Warn("file hash bookkeeping failed", "path", f.Path, "error", err)
		}
		tracker.addProcessedFiles(1)
		return nil
	}

	tracker.addTotalBlocks(len(blocks))
	ledger.register(f.Path, hash, len(blocks))
	for _, batch := range acc.add(blocks) {
		submit(batch)
	}
	tracker.addProcessedFiles(1)
	return nil
}

// processBatch embeds one batch and persists its points. Embedding
// failure skips the batch and poisons its files' hash records; a store
// failure is fatal.
func (i *Indexer) processBatch(ctx context.Context, tracker *progressTracker, repo *repostore.Repository,
	blocks []types.CodeBlock, ledger *fileLedger, log *slog.Logger) error {

	texts := make([]string, len(blocks))
	for n, b := range blocks {
		texts[n] = b.Content
	}

	vectors, err := i.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		for path := range countByFile(blocks) {
			ledger.fail(path)
		}
		tracker.addSkippedBlocks(len(blocks))
		tracker.recordError(fmt.Sprintf("embedding batch of %d blocks failed: %v", len(blocks), err))
		log.Warn("embedding batch failed", "blocks", len(blocks), "error", err)
		return nil
	}

	points := make([]types.IndexPoint, len(blocks))
	for n, b := range blocks {
		points[n] = types.PointFromBlock(repo.ID, repo.FullName, b, vectors[n])
	}
	if err := i.index.UpsertPoints(ctx, repo.ID, points); err != nil {
		return err
	}
	tracker.addIndexedBlocks(len(points))

	for path, n := range countByFile(blocks) {
		if done, hash := ledger.settle(path, n); done {
			if err := i.store.PutFileHash(ctx, repo.ID, path, hash); err != nil {
				log.Warn("file hash bookkeeping failed", "path", path, "error", err)
			}
		}
	}
	return nil
}
