package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"

	"RostrDating/config"
	"RostrDating/pkg/logger"
)

var (
	db     *gorm.DB
	dbOnce sync.Once
	dbErr  error
)

// Init 只在 STORE_BACKEND=postgres 时调用
func Init() error {
	dbOnce.Do(func() {
		cfg := config.Cfg
		gormCfg := &gorm.Config{
			DisableForeignKeyConstraintWhenMigrating: true,
			PrepareStmt:                              true,
			SkipDefaultTransaction:                   true,
		}

		var gormDB *gorm.DB
		gormDB, dbErr = gorm.Open(postgres.Open(cfg.GetDSN()), gormCfg)
		if dbErr != nil {
			logger.Logger.Error("Failed to open database", zap.String("dsn", "please check database connection"), zap.Error(dbErr))
			return
		}

		if replicas := cfg.GetReplicaDSNs(); len(replicas) > 0 {
			if dbErr = registerReplicas(gormDB, replicas); dbErr != nil {
				logger.Logger.Error("Failed to register read replicas", zap.Error(dbErr))
				return
			}
			logger.Logger.Info("Read replicas registered", zap.Int("count", len(replicas)))
		}

		sqlDB, err := gormDB.DB()
		if err != nil {
			dbErr = err
			logger.Logger.Error("Failed to get sql.DB from gorm", zap.Error(err))
			return
		}

		configureConnectionPool(sqlDB)

		bo := backoff.NewExponentialBackOff()
		bo.MaxElapsedTime = 30 * time.Second
		if err := backoff.Retry(sqlDB.Ping, bo); err != nil {
			dbErr = err
			logger.Logger.Error("Failed to ping database", zap.Error(err))
			return
		}

		db = gormDB
		if err := Migrate(); err != nil {
			dbErr = fmt.Errorf("failed to run database migration: %w", err)
			return
		}
		logger.Logger.Info("Database initialized successfully")
	})

	return dbErr
}

func registerReplicas(gormDB *gorm.DB, dsns []string) error {
	dialectors := make([]gorm.Dialector, 0, len(dsns))
	for _, dsn := range dsns {
		dialectors = append(dialectors, postgres.Open(dsn))
	}

	return gormDB.Use(dbresolver.Register(dbresolver.Config{
		Replicas: dialectors,
		Policy:   dbresolver.RandomPolicy{},
	}).
		SetMaxIdleConns(config.Cfg.PostgreSQLMaxIdle).
		SetMaxOpenConns(config.Cfg.PostgreSQLMaxOpen).
		SetConnMaxIdleTime(10 * time.Minute))
}

func DB() *gorm.DB {
	return db
}

func Close(ctx context.Context) error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- sqlDB.Close()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

func configureConnectionPool(sqlDB *sql.DB) {
	cfg := config.Cfg

	sqlDB.SetMaxIdleConns(cfg.PostgreSQLMaxIdle)
	sqlDB.SetMaxOpenConns(cfg.PostgreSQLMaxOpen)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)
	sqlDB.SetConnMaxLifetime(2 * time.Hour)
}
