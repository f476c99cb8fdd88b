package types

import "time"

// JobStatus is the lifecycle status of one indexing job.
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusCancelled JobStatus = "cancelled"
)

// Terminal reports whether the status is final. Terminal statuses must
// never transition further.
func (s JobStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Stage is one phase of the indexing pipeline.
type Stage string

const (
	StageInitializing Stage = "initializing"
	StageScanning     Stage = "scanning"
	StageParsing      Stage = "parsing"
	StageEmbedding    Stage = "embedding"
	StageStoring      Stage = "storing"
	StageCompleted    Stage = "completed"
)

// IndexingProgress is a point-in-time snapshot of one indexing job.
// Counters are monotonic non-decreasing for the job's lifetime.
type IndexingProgress struct {
	JobID        string    `json:"job_id"`
	RepositoryID int64     `json:"repository_id"`
	Status       JobStatus `json:"status"`
	Stage        Stage     `json:"stage"`

	ProcessedFiles int `json:"processed_files"`
	TotalFiles     int `json:"total_files"`
	IndexedBlocks  int `json:"indexed_blocks"`
	TotalBlocks    int `json:"total_blocks"`
	SkippedBlocks  int `json:"skipped_blocks"`

	CurrentFile string   `json:"current_file,omitempty"`
	Message     string   `json:"message,omitempty"`
	Error       string   `json:"error,omitempty"`
	Errors      []string `json:"errors,omitempty"` // per-file / per-batch skip reasons

	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// IndexingState is the coarse per-repository state exposed to the UI/API
// layer. Exactly one state per repository at a time.
type IndexingState string

const (
	StateStandby  IndexingState = "standby"
	StateIndexing IndexingState = "indexing"
	StateIndexed  IndexingState = "indexed"
	StateError    IndexingState = "error"
)
