package http

import (
	"net/http"

	"github.com/feedasfor-cyber/expense-management-app/internal/appcontext"
	"github.com/feedasfor-cyber/expense-management-app/internal/services"
	"github.com/gin-gonic/gin"
)

func GetUploadStatistics(ctx *appcontext.Context, svc *services.ExpenseService) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := svc.Statistics(c.Request.Context())
		if err != nil {
			respondError(ctx, c, "Failed to get upload statistics", err)
			return
		}

		c.JSON(http.StatusOK, stats)
	}
}
