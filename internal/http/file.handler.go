package http

import (
	"io"
	"net/http"

	"github.com/feedasfor-cyber/expense-management-app/internal/appcontext"
	"github.com/feedasfor-cyber/expense-management-app/internal/apperror"
	"github.com/feedasfor-cyber/expense-management-app/internal/http/middleware"
	"github.com/feedasfor-cyber/expense-management-app/internal/services"
	"github.com/feedasfor-cyber/expense-management-app/internal/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func UploadExpenseCSV(ctx *appcontext.Context, svc *services.ExpenseService) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, err := c.FormFile("file")
		if err != nil {
			respondError(ctx, c, "Failed to get file from request",
				apperror.Wrap(apperror.CodeMissingField, "file is required", err))
			return
		}

		src, err := file.Open()
		if err != nil {
			ctx.Logger.Error("Failed to open file", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open file"})
			return
		}
		defer src.Close()

		// One byte past the limit is enough to report the upload as oversized.
		content, err := io.ReadAll(io.LimitReader(src, utils.MaxCSVSize+1))
		if err != nil {
			ctx.Logger.Error("Failed to read file", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
			return
		}

		summary, err := svc.Upload(c.Request.Context(), services.UploadInput{
			Filename:   file.Filename,
			Content:    content,
			BranchName: c.PostForm("branch_name"),
			Period:     c.PostForm("period"),
			Uploader:   c.GetString(middleware.UserKey),
		})
		if err != nil {
			respondError(ctx, c, "Failed to upload expense CSV", err)
			return
		}

		c.JSON(http.StatusCreated, summary)
	}
}
