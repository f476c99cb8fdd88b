package indexer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewlens/reviewlens/pkg/types"
)

func TestProgressTrackerCounters(t *testing.T) {
	tr := newProgressTracker("job-1", 7)
	tr.start()
	tr.setStage(types.StageParsing)
	tr.setTotalFiles(10)
	tr.addProcessedFiles(3)
	tr.addTotalBlocks(20)
	tr.addIndexedBlocks(15)
	tr.addSkippedBlocks(5)
	tr.setCurrentFile("a.go")

	snap := tr.Snapshot()
	assert.Equal(t, "job-1", snap.JobID)
	assert.Equal(t, int64(7), snap.RepositoryID)
	assert.Equal(t, types.StatusRunning, snap.Status)
	assert.Equal(t, types.StageParsing, snap.Stage)
	assert.Equal(t, 10, snap.TotalFiles)
	assert.Equal(t, 3, snap.ProcessedFiles)
	assert.Equal(t, 20, snap.TotalBlocks)
	assert.Equal(t, 15, snap.IndexedBlocks)
	assert.Equal(t, 5, snap.SkippedBlocks)
	assert.Equal(t, "a.go", snap.CurrentFile)
}

func TestProgressTrackerTerminalIsFinal(t *testing.T) {
	tr := newProgressTracker("job-1", 1)
	tr.start()
	tr.finish(types.StatusCancelled, "sync cancelled", "")

	// Any late mutation from a straggling worker must be ignored.
	tr.addIndexedBlocks(100)
	tr.setStage(types.StageStoring)
	tr.finish(types.StatusCompleted, "done", "")

	snap := tr.Snapshot()
	assert.Equal(t, types.StatusCancelled, snap.Status)
	assert.Equal(t, "sync cancelled", snap.Message)
	assert.Zero(t, snap.IndexedBlocks)
	require.NotNil(t, snap.CompletedAt)
}

func TestProgressTrackerCapsErrorList(t *testing.T) {
	tr := newProgressTracker("job-1", 1)
	tr.start()
	for i := 0; i < maxRecordedErrors+20; i++ {
		tr.recordError("boom")
	}
	assert.Len(t, tr.Snapshot().Errors, maxRecordedErrors)
}

func TestProgressTrackerConcurrentUpdates(t *testing.T) {
	tr := newProgressTracker("job-1", 1)
	tr.start()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.addIndexedBlocks(2)
			tr.addProcessedFiles(1)
		}()
	}
	wg.Wait()

	snap := tr.Snapshot()
	assert.Equal(t, 100, snap.IndexedBlocks)
	assert.Equal(t, 50, snap.ProcessedFiles)
}

func TestProgressSnapshotIsCopy(t *testing.T) {
	tr := newProgressTracker("job-1", 1)
	tr.start()
	tr.recordError("first")

	snap := tr.Snapshot()
	snap.Errors[0] = "mutated"

	assert.Equal(t, "first", tr.Snapshot().Errors[0])
}
