package appcontext

import (
	"github.com/feedasfor-cyber/expense-management-app/internal/filestore"
	"github.com/feedasfor-cyber/expense-management-app/internal/metrics"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Context struct {
	DB     *gorm.DB
	Logger *zap.Logger

	Files   filestore.Store
	Metrics *metrics.Recorder

	AuthUsername string
	AuthPassword string

	Environment    string
	AllowedOrigins []string

	DetailMaxPageSize  int
	PreviewMaxPageSize int
}
