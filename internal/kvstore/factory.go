package kvstore

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"RostrDating/config"
	"RostrDating/storage/database"
	"RostrDating/storage/redis"
)

// New 按 STORE_BACKEND 组装存储：底层实现 -> 熔断 -> 观测。
// 依赖的连接需先由 storage.Init 建立。
func New(cfg config.Config, log *zap.Logger) (Store, error) {
	var base Store
	switch cfg.StoreBackend {
	case "redis":
		base = NewRedisStore(redis.Client())
	case "postgres":
		db := database.DB()
		if db == nil {
			return nil, fmt.Errorf("postgres backend selected but database is not initialized")
		}
		base = NewGormStore(db)
	case "memory":
		base = NewMemoryStore()
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", cfg.StoreBackend)
	}

	guarded := NewGuarded(base,
		cfg.StoreBackend+"_store",
		cfg.StoreBreakerMaxFailures,
		time.Duration(cfg.StoreBreakerResetSeconds)*time.Second,
		log,
	)

	instrumented, err := Instrument(guarded, cfg.StoreBackend)
	if err != nil {
		return nil, fmt.Errorf("failed to instrument store: %w", err)
	}

	log.Info("Key/value store ready", zap.String("backend", cfg.StoreBackend))
	return instrumented, nil
}
