package queue

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"

	"saladgen/internal/storage"
	"saladgen/pkg/common"
	"saladgen/pkg/index"
	"saladgen/pkg/leaselock"
	"saladgen/pkg/logger"
	"saladgen/pkg/salad"
	"saladgen/pkg/store"
	pgxstore "saladgen/pkg/store/pgx"
)

// ProcessGenerate runs one generation job end to end: it loads the job,
// resolves its corpus (downloading it from object storage when the
// configured directory does not exist locally), runs the generator and
// records progress and the final status on the job row.
func ProcessGenerate(ctx context.Context, client *s3.Client, pgConn *pgxpool.Pool, body string) error {
	msg, err := DecodeJob([]byte(body))
	if err != nil {
		return err
	}

	jobs := pgxstore.NewStore(pgConn)
	job, err := jobs.GetJob(ctx, msg.JobID)
	if err != nil {
		return fmt.Errorf("failed to load job %s: %w", msg.JobID, err)
	}

	// Redelivered messages must not run the same job twice in parallel.
	locks := leaselock.New(pgConn)
	return locks.WithJobLease(ctx, job.ID, func(ctx context.Context) error {
		return runJob(ctx, client, jobs, job)
	})
}

func runJob(ctx context.Context, client *s3.Client, jobs *pgxstore.Store, job *store.Job) error {
	if err := jobs.UpdateJobStatus(ctx, job.ID, store.JobStatusRunning, ""); err != nil {
		return fmt.Errorf("failed to mark job %s as running: %w", job.ID, err)
	}

	dir := job.CorpusDir
	if _, err := os.Stat(dir); err != nil {
		tmp, err := os.MkdirTemp("", "corpus-"+job.ID+"-*")
		if err != nil {
			return failJob(ctx, jobs, job.ID, fmt.Errorf("failed to create corpus folder: %w", err))
		}
		defer os.RemoveAll(tmp)

		dir, err = storage.DownloadCorpus(ctx, client, job.CorpusDir, tmp)
		if err != nil {
			return failJob(ctx, jobs, job.ID, err)
		}
	}

	corpus, err := index.LoadCorpus(ctx, dir)
	if err != nil {
		return failJob(ctx, jobs, job.ID, err)
	}

	generator := salad.NewGenerator(corpus, jobs, salad.GenerateConfig{
		Params:        job.Params,
		DataSize:      job.DataSize,
		PercTrain:     job.PercTrain,
		PercTest:      job.PercTest,
		Seed:          job.Seed,
		ProgressEvery: 100,
	})
	generator.OnProgress = func(produced int) {
		if err := jobs.SetJobProgress(ctx, job.ID, produced); err != nil {
			logger.Error("Failed to record job progress", "job", job.ID, "err", err)
		}
	}

	produced, runErr := generator.Run(ctx)
	if runErr != nil {
		if errors.Is(runErr, salad.ErrNoEligibleSample) {
			// The corpus ran out of novel combinations. Whatever was
			// produced up to here is still a usable dataset.
			logger.Warn("Corpus exhausted before requested size", "job", job.ID, "produced", produced, "requested", job.DataSize)
			if err := jobs.UpdateJobStatus(ctx, job.ID, store.JobStatusCompleted, runErr.Error()); err != nil {
				return fmt.Errorf("failed to mark job %s as completed: %w", job.ID, err)
			}
			return nil
		}
		return failJob(ctx, jobs, job.ID, runErr)
	}

	if err := jobs.UpdateJobStatus(ctx, job.ID, store.JobStatusCompleted, ""); err != nil {
		return fmt.Errorf("failed to mark job %s as completed: %w", job.ID, err)
	}

	logger.Info("[Worker] Job completed", "job", job.ID, "produced", produced)
	for _, split := range common.Splits() {
		total, err := jobs.CountMixtures(ctx, split)
		if err != nil {
			logger.Error("Failed to count stored mixtures", "split", split, "err", err)
			continue
		}
		logger.Info("[Worker] Mixtures stored", "split", split, "total", total)
	}
	return nil
}

func failJob(ctx context.Context, jobs *pgxstore.Store, jobID string, cause error) error {
	if err := jobs.UpdateJobStatus(ctx, jobID, store.JobStatusFailed, cause.Error()); err != nil {
		logger.Error("Failed to mark job as failed", "job", jobID, "err", err)
	}
	return cause
}
