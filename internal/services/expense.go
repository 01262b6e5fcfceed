// Package services implements expense uploads, queries and exports on top of
// the dataset store and the original-file store.
package services

import (
	"time"

	"github.com/feedasfor-cyber/expense-management-app/internal/appcontext"
	"github.com/feedasfor-cyber/expense-management-app/internal/store"
)

const (
	defaultDetailPageSize  = 20
	defaultPreviewPageSize = 50
)

type ExpenseService struct {
	app   *appcontext.Context
	store *store.Store
	now   func() time.Time
}

func NewExpenseService(ctx *appcontext.Context) *ExpenseService {
	return &ExpenseService{
		app:   ctx,
		store: store.New(ctx.DB),
		now:   time.Now,
	}
}
