package http

import (
	"net/http"

	"github.com/feedasfor-cyber/expense-management-app/internal/appcontext"
	"github.com/feedasfor-cyber/expense-management-app/internal/services"
	"github.com/gin-gonic/gin"
)

func ListDatasets(ctx *appcontext.Context, svc *services.ExpenseService) gin.HandlerFunc {
	return func(c *gin.Context) {
		datasets, err := svc.ListDatasets(c.Request.Context(), c.Query("branch"), c.Query("period"))
		if err != nil {
			respondError(ctx, c, "Failed to list datasets", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": datasets})
	}
}

func GetDatasetDetail(ctx *appcontext.Context, svc *services.ExpenseService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := datasetID(c)
		if err != nil {
			respondError(ctx, c, "Failed to parse dataset ID", err)
			return
		}

		detail, err := svc.DatasetDetail(c.Request.Context(), id, services.DetailRequest{
			PageRequest:  pageRequest(c),
			FilterColumn: c.Query("filter_col"),
			FilterValue:  c.Query("filter_val"),
		})
		if err != nil {
			respondError(ctx, c, "Failed to get dataset detail", err)
			return
		}

		c.JSON(http.StatusOK, detail)
	}
}

func DownloadOriginal(ctx *appcontext.Context, svc *services.ExpenseService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := datasetID(c)
		if err != nil {
			respondError(ctx, c, "Failed to parse dataset ID", err)
			return
		}

		original, err := svc.OpenOriginal(c.Request.Context(), id)
		if err != nil {
			respondError(ctx, c, "Failed to open original file", err)
			return
		}
		defer original.Body.Close()

		c.DataFromReader(http.StatusOK, original.Size, "text/csv; charset=utf-8", original.Body, map[string]string{
			"Content-Disposition": attachment(original.Name),
		})
	}
}

func pageRequest(c *gin.Context) services.PageRequest {
	return services.PageRequest{Page: c.Query("page"), Size: c.Query("size")}
}
