package routes

import (
	"net/http"

	"saladgen/internal/server/middleware"
	"saladgen/internal/storage"
	"saladgen/internal/util"
	"saladgen/pkg/logger"

	"github.com/labstack/echo/v4"
)

// GetCorporaHandler lists the corpora uploaded to object storage that
// jobs can be run against.
func GetCorporaHandler(c echo.Context) error {
	type getCorporaResponse struct {
		Message string   `json:"message"`
		Corpora []string `json:"corpora,omitempty"`
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	root := util.GetEnvString("CORPUS_ROOT", "corpora")
	corpora, err := storage.ListCorpora(ctx, app.S3, root)
	if err != nil {
		logger.Error("Failed to list corpora", "err", err)
		return c.JSON(http.StatusInternalServerError, getCorporaResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, getCorporaResponse{
		Message: "Corpora retrieved",
		Corpora: corpora,
	})
}
