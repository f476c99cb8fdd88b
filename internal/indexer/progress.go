package indexer

import (
	"sync"
	"time"

	"github.com/reviewlens/reviewlens/pkg/types"
)

// maxRecordedErrors caps the per-job skip-reason list so a pathological
// repository cannot grow progress snapshots without bound.
const maxRecordedErrors = 50

// progressTracker is the mutable, concurrency-safe progress of one job.
// Counters only ever increase, and once the job reaches a terminal
// status all further mutation is ignored.
type progressTracker struct {
	mu       sync.Mutex
	snapshot types.IndexingProgress
}

func newProgressTracker(jobID string, repositoryID int64) *progressTracker {
	return &progressTracker{
		snapshot: types.IndexingProgress{
			JobID:        jobID,
			RepositoryID: repositoryID,
			Status:       types.StatusPending,
			Stage:        types.StageInitializing,
			StartedAt:    time.Now(),
		},
	}
}

func (t *progressTracker) update(fn func(p *types.IndexingProgress)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.snapshot.Status.Terminal() {
		return
	}
	fn(&t.snapshot)
}

func (t *progressTracker) start() {
	t.update(func(p *types.IndexingProgress) { p.Status = types.StatusRunning })
}

func (t *progressTracker) setStage(stage types.Stage) {
	t.update(func(p *types.IndexingProgress) { p.Stage = stage })
}

func (t *progressTracker) setTotalFiles(n int) {
	t.update(func(p *types.IndexingProgress) { p.TotalFiles = n })
}

func (t *progressTracker) addProcessedFiles(n int) {
	t.update(func(p *types.IndexingProgress) { p.ProcessedFiles += n })
}

func (t *progressTracker) addTotalBlocks(n int) {
	t.update(func(p *types.IndexingProgress) { p.TotalBlocks += n })
}

func (t *progressTracker) addIndexedBlocks(n int) {
	t.update(func(p *types.IndexingProgress) { p.IndexedBlocks += n })
}

func (t *progressTracker) addSkippedBlocks(n int) {
	t.update(func(p *types.IndexingProgress) { p.SkippedBlocks += n })
}

func (t *progressTracker) setCurrentFile(path string) {
	t.update(func(p *types.IndexingProgress) { p.CurrentFile = path })
}

func (t *progressTracker) recordError(msg string) {
	t.update(func(p *types.IndexingProgress) {
		if len(p.Errors) < maxRecordedErrors {
			p.Errors = append(p.Errors, msg)
		}
	})
}

// finish moves the job to a terminal status, keeping whatever stage it
// reached. The first terminal transition wins; later calls are no-ops.
func (t *progressTracker) finish(status types.JobStatus, message, errMsg string) {
	t.update(func(p *types.IndexingProgress) {
		now := time.Now()
		p.Status = status
		p.Message = message
		p.Error = errMsg
		p.CurrentFile = ""
		p.CompletedAt = &now
	})
}

// Snapshot returns a copy safe to hand to callers.
func (t *progressTracker) Snapshot() types.IndexingProgress {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.snapshot
	if t.snapshot.Errors != nil {
		out.Errors = append([]string(nil), t.snapshot.Errors...)
	}
	if t.snapshot.CompletedAt != nil {
		done := *t.snapshot.CompletedAt
		out.CompletedAt = &done
	}
	return out
}
