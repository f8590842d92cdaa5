package storage

import (
	"RostrDating/config"
	"RostrDating/storage/database"
	"RostrDating/storage/mq"
	"RostrDating/storage/redis"
)

// Init redis 用于存储后端或限流，数据库和 MQ 按配置启用
func Init() error {
	if config.Cfg.StoreBackend == "redis" || config.Cfg.RateLimitEnabled {
		if err := redis.Init(); err != nil {
			return err
		}
	}

	if config.Cfg.StoreBackend == "postgres" {
		if err := database.Init(); err != nil {
			return err
		}
	}

	if config.Cfg.MQEnabled {
		if err := mq.Init(); err != nil {
			return err
		}
	}

	return nil
}
