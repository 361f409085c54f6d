package routes

import (
	"net/http"
	"strconv"

	"saladgen/internal/server/middleware"
	"saladgen/pkg/logger"
	"saladgen/pkg/store"
	pgxstore "saladgen/pkg/store/pgx"

	"github.com/labstack/echo/v4"
)

// GetJobsHandler lists generation jobs, newest first.
func GetJobsHandler(c echo.Context) error {
	type getJobsResponse struct {
		Message string       `json:"message"`
		Jobs    []*store.Job `json:"jobs,omitempty"`
	}

	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			return c.JSON(http.StatusBadRequest, getJobsResponse{
				Message: "Invalid limit",
			})
		}
		limit = parsed
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App
	var jobStore store.JobStore = pgxstore.NewStore(app.DBConn)
	jobs, err := jobStore.ListJobs(ctx, limit)
	if err != nil {
		logger.Error("Failed to list jobs", "err", err)
		return c.JSON(http.StatusInternalServerError, getJobsResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, getJobsResponse{
		Message: "Jobs retrieved",
		Jobs:    jobs,
	})
}
