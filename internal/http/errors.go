package http

import (
	"errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/feedasfor-cyber/expense-management-app/internal/appcontext"
	"github.com/feedasfor-cyber/expense-management-app/internal/apperror"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError logs err and writes the JSON error body for its status.
// Internal errors never expose their cause to the client.
func respondError(ctx *appcontext.Context, c *gin.Context, msg string, err error) {
	status := apperror.HTTPStatus(err)

	var appErr *apperror.Error
	message := "Internal Server Error: " + msg
	if errors.As(err, &appErr) {
		message = appErr.Message
		if status < http.StatusInternalServerError {
			message = appErr.Error()
		}
	}

	if status >= http.StatusInternalServerError {
		ctx.Logger.Error(msg, zap.Error(err))
	} else {
		ctx.Logger.Warn(msg, zap.Error(err), zap.Int("status", status))
	}
	c.JSON(status, gin.H{"error": message})
}

func datasetID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.New(apperror.CodeInvalidID, "Invalid dataset ID")
	}
	return uint(id), nil
}

func attachment(filename string) string {
	if disposition := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); disposition != "" {
		return disposition
	}
	return "attachment"
}
