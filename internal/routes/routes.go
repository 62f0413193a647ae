package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"cartorio-reconciliation-backend/internal/config"
	handler "cartorio-reconciliation-backend/internal/handlers"
	"cartorio-reconciliation-backend/internal/repository"
	"cartorio-reconciliation-backend/internal/services/dashboard"
	"cartorio-reconciliation-backend/internal/services/importer"
	"cartorio-reconciliation-backend/internal/services/ledger"
	"cartorio-reconciliation-backend/internal/services/matching"
	service "cartorio-reconciliation-backend/internal/services/reconciliation"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config) {
	accountRepo := repository.NewAccountRepository(db)
	statementRepo := repository.NewStatementRepository(db)
	entryRepo := repository.NewLedgerEntryRepository(db)
	linkRepo := repository.NewLinkRepository(db)

	reconService := service.NewReconciliationService(db, accountRepo, statementRepo, entryRepo, linkRepo)
	importService := importer.NewService(accountRepo, statementRepo, importer.Options{
		MaxSize:          cfg.Import.MaxSizeBytes,
		DemoOnEmptyParse: cfg.Import.DemoOnEmptyParse,
	})
	ledgerService := ledger.NewService(accountRepo, statementRepo, entryRepo)
	dashboardService := dashboard.NewService(accountRepo, statementRepo, entryRepo, linkRepo)
	workspaces := matching.NewManager(matching.RepositoryPools{
		Accounts:   accountRepo,
		Statements: statementRepo,
		Entries:    entryRepo,
	}, reconService)

	accountHandler := handler.NewAccountHandler(ledgerService)
	entryHandler := handler.NewEntryHandler(ledgerService)
	statementHandler := handler.NewStatementHandler(importService, statementRepo)
	reconHandler := handler.NewReconciliationHandler(reconService)
	workspaceHandler := handler.NewWorkspaceHandler(workspaces)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	authed := api.Group("", handler.RequireSession())

	accounts := authed.Group("/accounts")
	accounts.GET("", accountHandler.List)
	accounts.POST("", accountHandler.Create)
	accounts.PUT("/:id", accountHandler.Update)
	accounts.DELETE("/:id", accountHandler.Delete)

	statements := authed.Group("/statements")
	statements.GET("", statementHandler.List)
	statements.POST("/preview", statementHandler.Preview)
	statements.POST("/import", statementHandler.Import)
	statements.GET("/:id/items", statementHandler.Items)

	entries := authed.Group("/entries")
	entries.GET("", entryHandler.List)
	entries.POST("", entryHandler.Create)
	entries.PUT("/:id", entryHandler.Update)
	entries.DELETE("/:id", entryHandler.Delete)

	recon := authed.Group("/reconciliation")
	recon.GET("/links", reconHandler.ListLinks)
	recon.POST("/link", reconHandler.Link)
	recon.POST("/unlink", reconHandler.Unlink)
	recon.GET("/stats/:accountId", reconHandler.Stats)
	recon.GET("/consistency", reconHandler.Consistency)

	// Matching workspace
	workspace := authed.Group("/workspace")
	{
		workspace.GET("", workspaceHandler.Get)
		workspace.PUT("/account", workspaceHandler.ChangeAccount)
		workspace.POST("/items/:id/select", workspaceHandler.SelectItem)
		workspace.POST("/entries/:id/select", workspaceHandler.SelectEntry)
		workspace.POST("/confirm", workspaceHandler.Confirm)
	}

	authed.GET("/dashboard", dashboardHandler.Summary)
}
