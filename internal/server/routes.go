package server

import (
	"saladgen/internal/server/middleware"
	"saladgen/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	// Generation job routes
	apiRoutes.GET("/jobs", routes.GetJobsHandler, middleware.RequireAnyPermission("job.view", "job.view:all"))
	apiRoutes.POST("/jobs", routes.CreateJobHandler, middleware.RequirePermission("job.create"))
	apiRoutes.GET("/jobs/:id", routes.GetJobHandler, middleware.RequireAnyPermission("job.view", "job.view:all"))

	// Corpus routes
	apiRoutes.GET("/corpora", routes.GetCorporaHandler, middleware.RequirePermission("corpus.view"))
}
