package router

import (
	"log"
	"net/http"

	"money-tracking/internal/config"
	"money-tracking/internal/handler"
	"money-tracking/internal/ledger"
	"money-tracking/internal/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps are the collaborators the JSON hook layer is built on.
type Deps struct {
	DB     *gorm.DB
	Ledger *ledger.Service
	Rates  handler.RateSource
	Logger *log.Logger
}

// SetupRouter configures the Gin engine and the /api routes.
func SetupRouter(cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(middleware.RequestLog(deps.Logger), gin.Recovery())
	if cfg.Server.LocalOnly {
		r.Use(middleware.LocalOnly())
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ====== API ======
	api := r.Group("/api")
	svc := deps.Ledger

	settingsHandler := handler.NewSettingsHandler(svc)
	api.GET("/onboarding", settingsHandler.OnboardingStatus)
	api.POST("/onboarding", settingsHandler.Onboard)
	api.GET("/settings", settingsHandler.ListSettings)
	api.GET("/settings/:key", settingsHandler.GetSetting)
	api.PUT("/settings/:key", settingsHandler.PutSetting)

	accountHandler := handler.NewAccountHandler(svc)
	api.GET("/accounts", accountHandler.ListAccounts)
	api.POST("/accounts", accountHandler.CreateAccount)
	api.PUT("/accounts/:id", accountHandler.UpdateAccount)
	api.DELETE("/accounts/:id", accountHandler.DeleteAccount)
	api.GET("/accounts/:id/balance", accountHandler.GetBalance)

	categoryHandler := handler.NewCategoryHandler(svc)
	api.GET("/categories", categoryHandler.ListCategories)
	api.POST("/categories", categoryHandler.CreateCategory)
	api.PUT("/categories/:id", categoryHandler.UpdateCategory)
	api.DELETE("/categories/:id", categoryHandler.DeleteCategory)

	transactionHandler := handler.NewTransactionHandler(svc)
	api.POST("/transactions", transactionHandler.CreateTransaction)
	api.GET("/transactions", transactionHandler.ListTransactions)
	api.DELETE("/transactions/:id", transactionHandler.DeleteTransaction)
	api.POST("/transactions/import", transactionHandler.ImportCandidates)
	api.GET("/stats/monthly", transactionHandler.GetMonthlyStats)
	api.GET("/stats/totals", transactionHandler.GetTotals)

	transferHandler := handler.NewTransferHandler(svc)
	api.POST("/transfers", transferHandler.CreateTransfer)
	api.GET("/transfers/:id", transferHandler.GetTransfer)

	planHandler := handler.NewPlanificationHandler(svc)
	api.POST("/planifications", planHandler.CreatePlanification)
	api.GET("/planifications", planHandler.ListPlanifications)
	api.POST("/planifications/check-expired", planHandler.CheckExpired)
	api.GET("/planifications/:id", planHandler.GetPlanification)
	api.DELETE("/planifications/:id", planHandler.DeletePlanification)
	api.PUT("/planifications/:id/deadline", planHandler.UpdateDeadline)
	api.POST("/planifications/:id/items", planHandler.AddItem)
	api.DELETE("/planifications/:id/items/:itemId", planHandler.RemoveItem)
	api.POST("/planifications/:id/validate", planHandler.ValidatePlanification)

	currencyHandler := handler.NewCurrencyHandler(svc, deps.Rates)
	api.GET("/currency", currencyHandler.GetCurrency)
	api.POST("/currency", currencyHandler.ChangeCurrency)

	backupHandler := handler.NewBackupHandler(deps.DB, svc, cfg.Security.EncryptionKey, cfg.Backup.Dir)
	api.POST("/backups", backupHandler.CreateBackup)
	api.GET("/backups", backupHandler.ListBackups)
	api.GET("/backups/:id/download", backupHandler.DownloadBackup)
	api.POST("/backups/:id/restore", backupHandler.RestoreBackup)
	api.DELETE("/backups/:id", backupHandler.DeleteBackup)

	exportHandler := handler.NewExportHandler(svc)
	api.GET("/export/csv", exportHandler.ExportCSV)
	api.GET("/export/xlsx", exportHandler.ExportXLSX)

	return r
}
