// Package pgx implements the mixture and job stores on PostgreSQL.
package pgx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"saladgen/pkg/common"
	"saladgen/pkg/salad"
	"saladgen/pkg/store"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
}

// Store persists mixtures and generation jobs in PostgreSQL. It works
// on any pgx connection or pool.
type Store struct {
	conn pgxIConn
}

var (
	_ store.MixtureStore = (*Store)(nil)
	_ store.JobStore     = (*Store)(nil)
)

// NewStore wraps an existing connection.
func NewStore(conn pgxIConn) *Store {
	return &Store{conn: conn}
}

// SaveMixture upserts one mixture row; re-running a job overwrites its
// earlier artifacts.
func (s *Store) SaveMixture(ctx context.Context, split common.Split, mixture *common.Mixture) error {
	graph, err := json.Marshal(mixture.Graph)
	if err != nil {
		return fmt.Errorf("failed to serialize mixture graph: %w", err)
	}
	query, err := json.Marshal(mixture.QueryStmtIDs)
	if err != nil {
		return fmt.Errorf("failed to serialize query set: %w", err)
	}

	_, err = s.conn.Exec(ctx, `
		INSERT INTO mixtures (name, split, origin_id, target_graph_id, source_graph_ids, query_stmt_ids, graph)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (name) DO UPDATE SET
			split = EXCLUDED.split,
			origin_id = EXCLUDED.origin_id,
			target_graph_id = EXCLUDED.target_graph_id,
			source_graph_ids = EXCLUDED.source_graph_ids,
			query_stmt_ids = EXCLUDED.query_stmt_ids,
			graph = EXCLUDED.graph`,
		mixture.Name(), string(split), mixture.OriginID, mixture.TargetGraphID,
		mixture.SourceGraphIDs, query, graph)
	if err != nil {
		return fmt.Errorf("failed to save mixture %s: %w", mixture.Name(), err)
	}
	return nil
}

// CountMixtures returns the number of stored mixtures per split.
func (s *Store) CountMixtures(ctx context.Context, split common.Split) (int, error) {
	var count int
	err := s.conn.QueryRow(ctx, `SELECT COUNT(*) FROM mixtures WHERE split = $1`, string(split)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count mixtures: %w", err)
	}
	return count, nil
}

// CreateJob inserts a new pending job.
func (s *Store) CreateJob(ctx context.Context, job *store.Job) error {
	params, err := json.Marshal(job.Params)
	if err != nil {
		return fmt.Errorf("failed to serialize job params: %w", err)
	}
	_, err = s.conn.Exec(ctx, `
		INSERT INTO generation_jobs (id, status, corpus_dir, params, data_size, perc_train, perc_test, seed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		job.ID, string(job.Status), job.CorpusDir, params,
		job.DataSize, job.PercTrain, job.PercTest, job.Seed)
	if err != nil {
		return fmt.Errorf("failed to create job %s: %w", job.ID, err)
	}
	return nil
}

// GetJob fetches one job by id.
func (s *Store) GetJob(ctx context.Context, id string) (*store.Job, error) {
	row := s.conn.QueryRow(ctx, `
		SELECT id, status, corpus_dir, params, data_size, perc_train, perc_test, seed, produced, error, created_at, updated_at
		FROM generation_jobs WHERE id = $1`, id)
	job, err := scanJob(row)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return nil, store.ErrJobNotFound
	}
	return job, err
}

// ListJobs returns the most recent jobs, newest first.
func (s *Store) ListJobs(ctx context.Context, limit int) ([]*store.Job, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT id, status, corpus_dir, params, data_size, perc_train, perc_test, seed, produced, error, created_at, updated_at
		FROM generation_jobs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]*store.Job, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// UpdateJobStatus moves a job through its lifecycle.
func (s *Store) UpdateJobStatus(ctx context.Context, id string, status store.JobStatus, errMsg string) error {
	tag, err := s.conn.Exec(ctx, `
		UPDATE generation_jobs SET status = $2, error = $3, updated_at = now() WHERE id = $1`,
		id, string(status), errMsg)
	if err != nil {
		return fmt.Errorf("failed to update job %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrJobNotFound
	}
	return nil
}

// SetJobProgress records how many mixtures a running job has produced.
func (s *Store) SetJobProgress(ctx context.Context, id string, produced int) error {
	tag, err := s.conn.Exec(ctx, `
		UPDATE generation_jobs SET produced = $2, updated_at = now() WHERE id = $1`,
		id, produced)
	if err != nil {
		return fmt.Errorf("failed to update job progress %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrJobNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*store.Job, error) {
	var (
		job    store.Job
		status string
		params []byte
	)
	err := row.Scan(&job.ID, &status, &job.CorpusDir, &params, &job.DataSize,
		&job.PercTrain, &job.PercTest, &job.Seed, &job.Produced, &job.Error,
		&job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return nil, err
	}
	job.Status = store.JobStatus(status)
	job.Params = salad.DefaultParams()
	if len(params) > 0 {
		if err := json.Unmarshal(params, &job.Params); err != nil {
			return nil, fmt.Errorf("failed to parse job params: %w", err)
		}
	}
	return &job, nil
}
