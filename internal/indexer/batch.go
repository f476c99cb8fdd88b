package indexer

import (
	"sync"

	"github.com/reviewlens/reviewlens/pkg/types"
)

// blockAccumulator collects parsed blocks from concurrent file workers
// and cuts them into batches at the configured threshold. Batches keep
// arrival order within themselves but carry blocks from multiple files.
type blockAccumulator struct {
	mu        sync.Mutex
	threshold int
	pending   []types.CodeBlock
}

func newBlockAccumulator(threshold int) *blockAccumulator {
	if threshold <= 0 {
		threshold = 60
	}
	return &blockAccumulator{threshold: threshold}
}

// add appends blocks and returns any full batches ready for dispatch.
func (a *blockAccumulator) add(blocks []types.CodeBlock) [][]types.CodeBlock {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pending = append(a.pending, blocks...)

	var ready [][]types.CodeBlock
	for len(a.pending) >= a.threshold {
		batch := make([]types.CodeBlock, a.threshold)
		copy(batch, a.pending[:a.threshold])
		a.pending = a.pending[a.threshold:]
		ready = append(ready, batch)
	}
	return ready
}

// drain returns whatever is left as a final short batch.
func (a *blockAccumulator) drain() []types.CodeBlock {
	a.mu.Lock()
	defer a.mu.Unlock()
	rest := a.pending
	a.pending = nil
	return rest
}

// fileLedger tracks, per file, how many of its blocks still await a
// successful store. A file's content hash is recorded only once every
// block of that file has been persisted; a failed batch poisons its
// files so their hashes are never recorded and the next run retries
// them.
type fileLedger struct {
	mu        sync.Mutex
	remaining map[string]int
	hashes    map[string]string
	failed    map[string]bool
}

func newFileLedger() *fileLedger {
	return &fileLedger{
		remaining: make(map[string]int),
		hashes:    make(map[string]string),
		failed:    make(map[string]bool),
	}
}

func (l *fileLedger) register(path, hash string, blocks int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.remaining[path] = blocks
	l.hashes[path] = hash
}

func (l *fileLedger) fail(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failed[path] = true
}

// settle records n stored blocks for a file. It reports whether the file
// is now fully persisted and eligible for hash recording.
func (l *fileLedger) settle(path string, n int) (done bool, hash string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.remaining[path] -= n
	if l.remaining[path] > 0 || l.failed[path] {
		return false, ""
	}
	return true, l.hashes[path]
}

// countByFile groups a batch's blocks by file path.
func countByFile(blocks []types.CodeBlock) map[string]int {
	counts := make(map[string]int)
	for _, b := range blocks {
		counts[b.FilePath]++
	}
	return counts
}
