package redis

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"RostrDating/config"
	"RostrDating/pkg/logger"
)

var (
	client *redis.Client
	once   sync.Once
	err    error
)

// Init 建立连接并 ping，启动阶段按指数退避重试，最多等待 30 秒
func Init() error {
	once.Do(func() {
		cfg := config.Cfg

		client = redis.NewClient(&redis.Options{
			Addr:         cfg.RedisAddr,
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			MinIdleConns: 5,
			MaxRetries:   3,
		})

		bo := backoff.NewExponentialBackOff()
		bo.MaxElapsedTime = 30 * time.Second

		err = backoff.RetryNotify(func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return client.Ping(ctx).Err()
		}, bo, func(e error, wait time.Duration) {
			logger.Logger.Warn("Redis ping failed, retrying",
				zap.String("addr", cfg.RedisAddr),
				zap.Duration("wait", wait),
				zap.Error(e),
			)
		})
	})

	return err
}

func Client() *redis.Client {
	if client == nil {
		panic("Redis client not init")
	}
	return client
}

// SetClient 替换全局客户端，测试中指向 miniredis
func SetClient(c *redis.Client) {
	client = c
}

func Close(ctx context.Context) error {
	if client == nil {
		return nil
	}

	return client.Close()
}

func Key(parts ...string) string {
	prefix := config.Cfg.RedisPrefix
	if prefix == "" {
		prefix = "rostr"
	}

	var sb strings.Builder
	sb.WriteString(prefix)
	for _, part := range parts {
		if part != "" {
			sb.WriteString(":")
			sb.WriteString(part)
		}
	}

	return sb.String()
}
