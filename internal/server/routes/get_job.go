package routes

import (
	"errors"
	"net/http"

	"saladgen/internal/server/middleware"
	"saladgen/pkg/logger"
	"saladgen/pkg/store"
	pgxstore "saladgen/pkg/store/pgx"

	"github.com/labstack/echo/v4"
)

// GetJobHandler returns one job with its current progress.
func GetJobHandler(c echo.Context) error {
	type getJobResponse struct {
		Message string     `json:"message"`
		Job     *store.Job `json:"job,omitempty"`
	}

	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, getJobResponse{
			Message: "Invalid job id",
		})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App
	var jobStore store.JobStore = pgxstore.NewStore(app.DBConn)
	job, err := jobStore.GetJob(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrJobNotFound) {
			return c.JSON(http.StatusNotFound, getJobResponse{
				Message: "Job not found",
			})
		}
		logger.Error("Failed to load job", "job", id, "err", err)
		return c.JSON(http.StatusInternalServerError, getJobResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, getJobResponse{
		Message: "Job retrieved",
		Job:     job,
	})
}
