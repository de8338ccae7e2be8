package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.Middleware())
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	// Health endpoints
	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	// Routes registered below need a bearer token, except the public paths
	// the middleware skips (register, login).
	authMiddleware := auth.NewMiddleware(cfg.AuthService)
	router.Use(authMiddleware.Handler())
	requireAdmin := authMiddleware.RequireRole(entities.UserRoleAdmin)

	api := router.Group("/api")

	authController := NewAuthController(cfg.AuthService, cfg.Audit)
	api.POST("/auth/register", authController.Register)
	api.POST("/auth/login", authController.Login)
	api.GET("/auth/me", authController.Me)

	// Reference data
	reference := NewReferenceController(cfg.Catalog, cfg.Audit)
	api.GET("/authors", reference.ListAuthors)
	api.POST("/authors", reference.CreateAuthor)
	api.GET("/authors/:id", reference.GetAuthor)
	api.PUT("/authors/:id", reference.UpdateAuthor)
	api.DELETE("/authors/:id", reference.DeleteAuthor)
	api.GET("/genres", reference.ListGenres)
	api.POST("/genres", reference.CreateGenre)
	api.GET("/genres/:id", reference.GetGenre)
	api.PUT("/genres/:id", reference.UpdateGenre)
	api.DELETE("/genres/:id", reference.DeleteGenre)
	api.GET("/publishers", reference.ListPublishers)
	api.POST("/publishers", reference.CreatePublisher)
	api.GET("/publishers/:id", reference.GetPublisher)
	api.PUT("/publishers/:id", reference.UpdatePublisher)
	api.DELETE("/publishers/:id", reference.DeletePublisher)

	// Books in the caller's collection
	books := NewBooksController(cfg.Catalog, cfg.Audit, cfg.Metrics)
	api.GET("/books", books.List)
	api.POST("/books", books.Create)
	api.GET("/books/:id", books.Get)
	api.PUT("/books/:id", books.Update)
	api.DELETE("/books/:id", books.Remove)
	api.POST("/books/:id/track", books.Track)

	// Reading log and status taxonomy
	statuses := NewStatusController(cfg.Taxonomy, cfg.Log, cfg.Audit, cfg.Metrics)
	api.GET("/books/:id/status", statuses.Current)
	api.POST("/books/:id/status", statuses.Append)
	api.GET("/books/:id/statuses", statuses.History)
	api.GET("/statuses", statuses.List)
	api.GET("/statuses/:id", statuses.Get)
	api.POST("/statuses", requireAdmin, statuses.Create)
	api.PUT("/statuses/:id", requireAdmin, statuses.Update)
	api.DELETE("/statuses/:id", requireAdmin, statuses.Delete)

	// Analytics
	analytics := NewAnalyticsController(cfg.Log)
	api.GET("/analytics/user/:user_id/stats", analytics.UserStats)
	api.GET("/analytics/added", analytics.AddedInPeriod)

	// Reports
	if cfg.Reports != nil {
		reportsController := NewReportsController(cfg.Reports, cfg.Audit, cfg.Metrics)
		api.POST("/reports/generate", reportsController.Generate)
		api.GET("/reports", reportsController.List)
		api.GET("/reports/:id/download", reportsController.Download)
	}

	// Admin endpoints
	admin := api.Group("/admin", requireAdmin)

	users := NewUsersController(cfg.AuthService, cfg.Audit)
	admin.GET("/users", users.List)
	admin.POST("/users", users.Create)
	admin.GET("/users/:id", users.Get)
	admin.PUT("/users/:id", users.Update)
	admin.DELETE("/users/:id", users.Delete)

	if cfg.Audit != nil {
		auditController := NewAuditController(cfg.Audit)
		admin.GET("/audit", auditController.GetAuditEvents)
		admin.GET("/audit/types", auditController.EventTypes)
	}

	// Task management endpoints
	if cfg.TaskClient != nil {
		tasksController := NewTasksController(cfg.TaskClient)
		admin.GET("/tasks/types", tasksController.ListTaskTypes)
		admin.GET("/tasks/:id", tasksController.GetTaskStatus)
		admin.POST("/tasks/:type/run", tasksController.RunTask)
	}

	return router
}
