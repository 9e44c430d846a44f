// Package bootstrap opens the storage backends selected by configuration.
package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mamadbah2/landscaper/internal/analytics"
	"github.com/mamadbah2/landscaper/internal/config"
	"github.com/mamadbah2/landscaper/internal/repository/mongodb"
	pgstore "github.com/mamadbah2/landscaper/internal/repository/postgres"
	"github.com/mamadbah2/landscaper/internal/repository/sheets"
	"github.com/mamadbah2/landscaper/internal/service/reporting"
)

// Backends are the opened stores. SnapshotReader is nil unless MongoDB is configured.
type Backends struct {
	Store          reporting.Store
	Snapshots      reporting.SnapshotRepository
	SnapshotReader mongodb.Repository

	closers []func(context.Context) error
}

// Close releases every opened connection.
func (b *Backends) Close(ctx context.Context) error {
	var firstErr error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Open connects the configured row store and, when MONGODB_URI is set, the snapshot
// history. With the sheets driver and no MongoDB, snapshots go to a Snapshots tab.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Backends, error) {
	b := &Backends{}

	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		db, err := gorm.Open(postgres.Open(cfg.Storage.DatabaseURL), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database instance: %w", err)
		}
		b.closers = append(b.closers, func(context.Context) error { return sqlDB.Close() })

		if err := pgstore.Migrate(ctx, db); err != nil {
			_ = b.Close(ctx)
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		b.Store = pgstore.NewStore(db)
		logger.Info("postgres store ready")
	case config.StorageDriverSheets:
		repo, err := sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, logger.Named("repo.sheets"))
		if err != nil {
			return nil, fmt.Errorf("failed to init sheets repository: %w", err)
		}
		store := sheets.NewStore(repo, logger.Named("store.sheets"))
		b.Store = store
		b.Snapshots = store
		logger.Info("sheets store ready")
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}

	if cfg.MongoDB.URI != "" {
		mongoRepo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			_ = b.Close(ctx)
			return nil, fmt.Errorf("failed to init mongodb repository: %w", err)
		}
		b.closers = append(b.closers, mongoRepo.Close)
		b.Snapshots = mongoRepo
		b.SnapshotReader = mongoRepo
		logger.Info("mongodb snapshot history enabled")
	}

	return b, nil
}

// ReportingOptions maps configuration onto reporting options.
func ReportingOptions(cfg *config.Config) (reporting.Options, error) {
	method, err := analytics.ParseMethod(cfg.Analytics.ProjectionMethod)
	if err != nil {
		return reporting.Options{}, err
	}
	return reporting.Options{
		ThresholdPercent:  cfg.Analytics.ThresholdPercent,
		Method:            method,
		DefaultHourlyRate: cfg.Analytics.DefaultHourlyRate,
	}, nil
}
