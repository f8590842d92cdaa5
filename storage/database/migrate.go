package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"RostrDating/internal/model"
	"RostrDating/pkg/logger"
)

// Migrate 运行数据库迁移，创建键值表
func Migrate() error {
	db := DB()
	if db == nil {
		return gorm.ErrInvalidDB
	}

	logger.Logger.Info("Starting database migration...")

	if err := db.AutoMigrate(&model.KVEntry{}); err != nil {
		logger.Logger.Error("Database migration failed", zap.Error(err))
		return err
	}

	logger.Logger.Info("Database migration completed successfully")
	return nil
}
