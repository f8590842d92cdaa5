package storage

import (
	"context"
	"time"

	"go.uber.org/zap"

	"RostrDating/pkg/logger"
	"RostrDating/storage/database"
	"RostrDating/storage/mq"
	"RostrDating/storage/redis"
)

type closer struct {
	name  string
	close func(context.Context) error
}

// Close 按 MQ -> Redis -> Database 的顺序关闭，先停止对外发布事件，最后释放数据库连接。
// 未初始化的组件直接返回 nil。
func Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logger.Logger.Info("Closing storage connections...")

	for _, c := range []closer{
		{name: "rabbitmq", close: mq.Close},
		{name: "redis", close: redis.Close},
		{name: "database", close: database.Close},
	} {
		if err := c.close(ctx); err != nil {
			logger.Logger.Error("Failed to close storage connection",
				zap.String("storage", c.name),
				zap.Error(err),
			)
			continue
		}
		logger.Logger.Info("Storage connection closed", zap.String("storage", c.name))
	}

	logger.Logger.Info("All storage connections closed")
}
