package indexer

import (
	"sync"

	"github.com/reviewlens/reviewlens/pkg/types"
)

// StateRegistry tracks the coarse per-repository indexing state. It is
// the gate that enforces at most one active job per repository.
type StateRegistry struct {
	mu       sync.Mutex
	states   map[int64]types.IndexingState
	messages map[int64]string
}

func NewStateRegistry() *StateRegistry {
	return &StateRegistry{
		states:   make(map[int64]types.IndexingState),
		messages: make(map[int64]string),
	}
}

// Begin transitions the repository to Indexing, rejecting the request if
// a job is already active. Standby, Indexed and Error all permit a new
// job.
func (r *StateRegistry) Begin(repositoryID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.states[repositoryID] == types.StateIndexing {
		return types.ErrSyncInProgress
	}
	r.states[repositoryID] = types.StateIndexing
	r.messages[repositoryID] = ""
	return nil
}

// Complete marks a successful job.
func (r *StateRegistry) Complete(repositoryID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[repositoryID] = types.StateIndexed
	r.messages[repositoryID] = ""
}

// Fail marks a failed or cancelled job with a human-readable reason.
func (r *StateRegistry) Fail(repositoryID int64, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[repositoryID] = types.StateError
	r.messages[repositoryID] = message
}

// Reset returns the repository to Standby, used when its index is
// deleted.
func (r *StateRegistry) Reset(repositoryID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[repositoryID] = types.StateStandby
	r.messages[repositoryID] = ""
}

// Get returns the repository's state and message. Unknown repositories
// are Standby.
func (r *StateRegistry) Get(repositoryID int64) (types.IndexingState, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.states[repositoryID]
	if !ok {
		return types.StateStandby, ""
	}
	return state, r.messages[repositoryID]
}
