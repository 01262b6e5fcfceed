package http

import (
	"github.com/feedasfor-cyber/expense-management-app/internal/appcontext"
	"github.com/feedasfor-cyber/expense-management-app/internal/http/middleware"
	"github.com/feedasfor-cyber/expense-management-app/internal/services"
	"github.com/gin-gonic/gin"
)

type APIService struct {
	engine   *gin.Engine
	context  *appcontext.Context
	expenses *services.ExpenseService
}

func NewHTTPService(ctx *appcontext.Context) *APIService {
	if ctx.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(middleware.CORSMiddleware(ctx.Environment, ctx.AllowedOrigins))
	engine.Use(middleware.RequestLogMiddleware(ctx.Logger, ctx.Metrics))
	engine.Use(gin.CustomRecovery(middleware.RecoveryHandler(ctx.Logger)))

	service := &APIService{
		engine:   engine,
		context:  ctx,
		expenses: services.NewExpenseService(ctx),
	}
	service.setupRoutes()
	return service
}

func (h *APIService) Engine() *gin.Engine {
	return h.engine
}

func (h *APIService) setupRoutes() {
	h.engine.GET("/healthz", Health(h.context))

	api := h.engine.Group("/api")
	api.Use(middleware.BasicAuthMiddleware(h.context.AuthUsername, h.context.AuthPassword))

	api.GET("/metrics", gin.WrapH(h.context.Metrics.Handler()))
	h.setupExpenseRoutes(api)
}

func (h *APIService) setupExpenseRoutes(group *gin.RouterGroup) {
	expenses := group.Group("/expenses")

	expenses.GET("", ListDatasets(h.context, h.expenses))
	expenses.GET("/", ListDatasets(h.context, h.expenses))
	expenses.POST("/", UploadExpenseCSV(h.context, h.expenses))

	expenses.GET("/download_all_json", PreviewRows(h.context, h.expenses))
	expenses.GET("/download_all_csv", ExportRows(h.context, h.expenses))
	expenses.GET("/stats", GetUploadStatistics(h.context, h.expenses))

	expenses.GET("/:id", GetDatasetDetail(h.context, h.expenses))
	expenses.GET("/:id/download", DownloadOriginal(h.context, h.expenses))
	expenses.GET("/:id/download_csv", ExportDataset(h.context, h.expenses))
}
