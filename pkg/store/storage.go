// Package store defines the persistence interfaces for generated
// mixtures and for the generation jobs tracked by the API server and
// worker. Implementations live in the fs and pgx subpackages.
package store

import (
	"context"
	"errors"
	"time"

	"saladgen/pkg/common"
	"saladgen/pkg/salad"
)

// ErrJobNotFound is returned when a job id does not exist.
var ErrJobNotFound = errors.New("job not found")

// MixtureStore persists generated mixtures into their partition.
type MixtureStore interface {
	SaveMixture(ctx context.Context, split common.Split, mixture *common.Mixture) error
}

// JobStatus tracks a generation job through its lifecycle.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Job is one requested generation run.
type Job struct {
	ID        string       `json:"id"`
	Status    JobStatus    `json:"status"`
	CorpusDir string       `json:"corpus_dir"`
	Params    salad.Params `json:"params"`
	DataSize  int          `json:"data_size"`
	PercTrain float64      `json:"perc_train"`
	PercTest  float64      `json:"perc_test"`
	Seed      int64        `json:"seed"`
	Produced  int          `json:"produced"`
	Error     string       `json:"error,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// JobStore persists generation jobs and their progress.
type JobStore interface {
	CreateJob(ctx context.Context, job *Job) error
	GetJob(ctx context.Context, id string) (*Job, error)
	ListJobs(ctx context.Context, limit int) ([]*Job, error)
	UpdateJobStatus(ctx context.Context, id string, status JobStatus, errMsg string) error
	SetJobProgress(ctx context.Context, id string, produced int) error
}
