package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/feedasfor-cyber/expense-management-app/internal/appcontext"
	"github.com/feedasfor-cyber/expense-management-app/internal/entity"
	"github.com/feedasfor-cyber/expense-management-app/internal/filestore"
	"github.com/feedasfor-cyber/expense-management-app/internal/metrics"
	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const defaultSQLitePath = "app.db"

// LoadFromEnv loads .env when present and reads the configuration.
func LoadFromEnv() (*Config, error) {
	loaded := LoadDotEnv()
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	cfg.DotEnvLoaded = loaded
	return cfg, nil
}

// LoadDotEnv loads .env into the process environment and reports whether the
// file was found.
func LoadDotEnv() bool {
	return godotenv.Load() == nil
}

func InitContext(cfg *Config) (*appcontext.Context, error) {
	logger, err := InitLogger(cfg)
	if err != nil {
		return nil, err
	}
	logConfigSource(logger, cfg)

	db, err := InitDB(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	files, err := InitFileStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	recorder, err := metrics.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	ctx := &appcontext.Context{
		DB:     db,
		Logger: logger,

		Files:   files,
		Metrics: recorder,

		AuthUsername: cfg.AuthUsername,
		AuthPassword: cfg.AuthPassword,

		Environment:    cfg.Environment,
		AllowedOrigins: cfg.AllowedOrigins,

		DetailMaxPageSize:  cfg.DetailMaxPageSize,
		PreviewMaxPageSize: cfg.PreviewMaxPageSize,
	}

	return ctx, nil
}

// OpenDB picks the GORM dialector from the URL: postgres URLs use the
// postgres driver, anything else is a SQLite file path.
func OpenDB(databaseURL string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		dialector = postgres.Open(databaseURL)
	default:
		path := strings.TrimPrefix(databaseURL, "sqlite://")
		if path == "" {
			path = defaultSQLitePath
		}
		dialector = sqlite.Open(sqliteDSN(path))
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func InitDB(databaseURL string) (*gorm.DB, error) {
	db, err := OpenDB(databaseURL)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&entity.ExpenseDataset{}, &entity.ExpenseRow{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func logConfigSource(logger *zap.Logger, cfg *Config) {
	if !cfg.DotEnvLoaded {
		logger.Info("No .env file found, using environment variables")
	}
}

func InitLogger(cfg *Config) (*zap.Logger, error) {
	build := zap.NewDevelopment
	if cfg.IsProduction() {
		build = zap.NewProduction
	}
	logger, err := build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

func InitFileStore(cfg *Config, logger *zap.Logger) (filestore.Store, error) {
	if cfg.StorageBackend == StorageGCS {
		client, err := InitGCSClient()
		if err != nil {
			return nil, err
		}
		return filestore.NewGCS(client, cfg.GCSBucketName, cfg.GCSPrefix), nil
	}

	local, err := filestore.NewLocal(cfg.UploadsDir)
	if err != nil {
		return nil, err
	}
	removed, err := local.SweepStaging(cfg.StagingMaxAge)
	if err != nil {
		logger.Warn("Failed to sweep staged uploads", zap.Error(err))
	} else if removed > 0 {
		logger.Info("Removed stale staged uploads", zap.Int("count", removed))
	}
	return local, nil
}

func InitGCSClient() (*storage.Client, error) {
	ctx := context.Background()
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize GCS client: %w", err)
	}
	return client, nil
}

func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}
