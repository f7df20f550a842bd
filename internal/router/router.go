package router

import (
	"net/http"
	"time"

	"github.com/brighthive/brighthive-testing-exercise/internal/config"
	"github.com/brighthive/brighthive-testing-exercise/internal/handler"
	"github.com/brighthive/brighthive-testing-exercise/internal/middleware"
	"github.com/brighthive/brighthive-testing-exercise/internal/store"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter configures the Gin engine and wires all API routes.
func SetupRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	st := store.New(db)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	api := r.Group("/api/v1")

	jwtSecret := cfg.JWT.Secret
	authHandler := handler.NewAuthHandler(st, jwtSecret, cfg.JWT.ExpireHours, cfg.Security.BcryptCost)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	// everything below requires a valid bearer token
	protected := api.Group("")
	protected.Use(
		middleware.AuthMiddleware(jwtSecret, st),
		middleware.AuditMiddleware(st),
	)

	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/users/me", handler.GetMe)

	workspaceHandler := handler.NewWorkspaceHandler(st)
	protected.POST("/workspaces", workspaceHandler.CreateWorkspace)
	protected.GET("/workspaces", workspaceHandler.ListWorkspaces)
	protected.GET("/workspaces/:id", workspaceHandler.GetWorkspace)
	protected.DELETE("/workspaces/:id", workspaceHandler.DeleteWorkspace)

	datasetHandler := handler.NewDatasetHandler(st, cfg.App.PageSize)
	protected.POST("/workspaces/:id/datasets", datasetHandler.CreateDataset)
	protected.GET("/workspaces/:id/datasets", datasetHandler.ListDatasets)
	protected.GET("/workspaces/:id/export", datasetHandler.ExportDatasets)
	protected.GET("/workspaces/:id/datasets/:datasetID", datasetHandler.GetDataset)
	protected.PUT("/workspaces/:id/datasets/:datasetID", datasetHandler.UpdateDataset)
	protected.DELETE("/workspaces/:id/datasets/:datasetID", datasetHandler.DeleteDataset)

	auditHandler := handler.NewAuditLogHandler(st, cfg.App.PageSize)
	protected.GET("/audit-logs", auditHandler.ListAuditLogs)

	return r
}
