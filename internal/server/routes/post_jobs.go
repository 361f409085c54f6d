package routes

import (
	"encoding/json"
	"net/http"
	"time"

	"saladgen/internal/queue"
	"saladgen/internal/server/middleware"
	"saladgen/pkg/logger"
	"saladgen/pkg/salad"
	"saladgen/pkg/store"
	pgxstore "saladgen/pkg/store/pgx"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// CreateJobHandler creates a generation job and enqueues it for the worker.
func CreateJobHandler(c echo.Context) error {
	type createJobBody struct {
		CorpusDir string          `json:"corpus_dir" validate:"required"`
		DataSize  int             `json:"data_size" validate:"required,min=1"`
		PercTrain float64         `json:"perc_train" validate:"omitempty,gt=0,lte=1"`
		PercTest  float64         `json:"perc_test" validate:"omitempty,gte=0,lt=1"`
		Seed      int64           `json:"seed"`
		Params    json.RawMessage `json:"params"`
	}

	type createJobResponse struct {
		Message string     `json:"message"`
		Job     *store.Job `json:"job,omitempty"`
	}

	data := new(createJobBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, createJobResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, createJobResponse{
			Message: "Invalid request body",
		})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, createJobResponse{
			Message: "Unauthorized",
		})
	}

	params := salad.DefaultParams()
	if len(data.Params) > 0 {
		if err := json.Unmarshal(data.Params, &params); err != nil {
			return c.JSON(http.StatusBadRequest, createJobResponse{
				Message: "Invalid generation parameters",
			})
		}
	}

	percTrain := data.PercTrain
	if percTrain == 0 {
		percTrain = 0.9
	}
	percTest := data.PercTest
	if percTest == 0 {
		percTest = 0.05
	}
	if percTrain+percTest > 1 {
		return c.JSON(http.StatusBadRequest, createJobResponse{
			Message: "Split fractions exceed the corpus",
		})
	}

	seed := data.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	id, err := gonanoid.New()
	if err != nil {
		logger.Error("Failed to generate job id", "err", err)
		return c.JSON(http.StatusInternalServerError, createJobResponse{
			Message: "Internal server error",
		})
	}

	job := &store.Job{
		ID:        id,
		Status:    store.JobStatusPending,
		CorpusDir: data.CorpusDir,
		Params:    params,
		DataSize:  data.DataSize,
		PercTrain: percTrain,
		PercTest:  percTest,
		Seed:      seed,
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App
	var jobs store.JobStore = pgxstore.NewStore(app.DBConn)

	if err := jobs.CreateJob(ctx, job); err != nil {
		logger.Error("Failed to create job", "err", err)
		return c.JSON(http.StatusInternalServerError, createJobResponse{
			Message: "Internal server error",
		})
	}

	if err := queue.PublishJob(app.Queue, job.ID); err != nil {
		logger.Error("Failed to enqueue job", "job", job.ID, "err", err)
		if err := jobs.UpdateJobStatus(ctx, job.ID, store.JobStatusFailed, "failed to enqueue job"); err != nil {
			logger.Error("Failed to mark job as failed", "job", job.ID, "err", err)
		}
		return c.JSON(http.StatusInternalServerError, createJobResponse{
			Message: "Internal server error",
		})
	}

	logger.Info("[API] Job queued", "job", job.ID, "user", user.UserID, "data_size", job.DataSize)

	return c.JSON(http.StatusCreated, createJobResponse{
		Message: "Job created",
		Job:     job,
	})
}
