package http

import (
	"net/http"

	"github.com/feedasfor-cyber/expense-management-app/internal/appcontext"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func Health(ctx *appcontext.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := ctx.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			ctx.Logger.Error("Database ping failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
