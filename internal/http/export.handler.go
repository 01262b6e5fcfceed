package http

import (
	"net/http"

	"github.com/feedasfor-cyber/expense-management-app/internal/appcontext"
	"github.com/feedasfor-cyber/expense-management-app/internal/filter"
	"github.com/feedasfor-cyber/expense-management-app/internal/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func PreviewRows(ctx *appcontext.Context, svc *services.ExpenseService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := svc.Preview(c.Request.Context(), rowScope(c), pageRequest(c))
		if err != nil {
			respondError(ctx, c, "Failed to preview rows", err)
			return
		}

		c.JSON(http.StatusOK, page)
	}
}

func ExportRows(ctx *appcontext.Context, svc *services.ExpenseService) gin.HandlerFunc {
	return func(c *gin.Context) {
		streamExport(ctx, svc, c, rowScope(c))
	}
}

func ExportDataset(ctx *appcontext.Context, svc *services.ExpenseService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := datasetID(c)
		if err != nil {
			respondError(ctx, c, "Failed to parse dataset ID", err)
			return
		}

		scope := rowScope(c)
		scope.DatasetID = id
		scope.Branch, scope.Period = "", ""
		streamExport(ctx, svc, c, scope)
	}
}

func streamExport(ctx *appcontext.Context, svc *services.ExpenseService, c *gin.Context, scope services.Scope) {
	export, err := svc.Export(c.Request.Context(), scope)
	if err != nil {
		respondError(ctx, c, "Failed to export rows", err)
		return
	}
	defer export.Close()

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", attachment(export.Filename))
	c.Status(http.StatusOK)

	n, err := export.WriteCSV(c.Writer)
	if err != nil {
		// Headers are already sent; the client sees a truncated body.
		ctx.Logger.Error("Failed to stream CSV export",
			zap.String("file", export.Filename), zap.Int("rows_written", n), zap.Error(err))
		return
	}
	ctx.Logger.Info("CSV export streamed", zap.String("file", export.Filename), zap.Int("rows", n))
}

// rowScope reads the dataset narrowing and filter groups of a cross-dataset
// query. branch_name wins over its alias branch. A filter_val sent without
// any filter_col searches the whole row.
func rowScope(c *gin.Context) services.Scope {
	query := c.Request.URL.Query()

	branch := c.Query("branch_name")
	if branch == "" {
		branch = c.Query("branch")
	}

	set := filter.FromQuery(query)
	if len(query[filter.ParamStringColumn]) == 0 {
		set.Search = query.Get(filter.ParamStringValue)
	}

	return services.Scope{
		Branch:  branch,
		Period:  c.Query("period"),
		Filters: set,
	}
}
