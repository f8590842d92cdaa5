package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"RostrDating/pkg/errors"
	"RostrDating/pkg/logger"
	"RostrDating/pkg/response"
	"RostrDating/storage/redis"
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	// 时间窗口（秒）
	Window int
	// 窗口内最大请求数
	MaxRequests int
	KeyPrefix   string
	// 已登录时按用户 ID 限流
	ByUserID bool
	// 无用户 ID 时按 IP 限流
	ByIP bool
	// 超限后封禁时长（秒）
	BlockDuration int
	ErrorMessage  string
}

// LaunchRateLimitConfig 启动捕获接口，按 IP
var LaunchRateLimitConfig = RateLimitConfig{
	Window:        60,
	MaxRequests:   30,
	KeyPrefix:     "rate:launch",
	ByIP:          true,
	BlockDuration: 300,
	ErrorMessage:  "Too many launch requests, please retry later",
}

// SMSInviteRateLimitConfig 短信邀请按用户限流，防止被用来刷短信
var SMSInviteRateLimitConfig = RateLimitConfig{
	Window:        600,
	MaxRequests:   5,
	KeyPrefix:     "rate:sms_invite",
	ByUserID:      true,
	ByIP:          true,
	BlockDuration: 3600,
	ErrorMessage:  "Too many invites sent, please retry later",
}

// RateLimiter 基于 redis zset 的滑动窗口
type RateLimiter struct {
	client redislib.Cmdable
	config RateLimitConfig
}

func NewRateLimiter(client redislib.Cmdable, config RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		client: client,
		config: config,
	}
}

func (rl *RateLimiter) getKey(ctx context.Context, c *app.RequestContext) string {
	var identifier string

	if rl.config.ByUserID {
		if userID, exists := GetUserID(ctx, c); exists {
			identifier = "user:" + userID
		}
	}

	if identifier == "" && rl.config.ByIP {
		identifier = "ip:" + c.ClientIP()
	}

	return redis.Key(rl.config.KeyPrefix, identifier)
}

// Allow 先清掉窗口外的记录，再写入本次请求并计数
func (rl *RateLimiter) Allow(ctx context.Context, key string, now time.Time) (bool, int, error) {
	windowStart := now.Add(-time.Duration(rl.config.Window) * time.Second)

	pipe := rl.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart.UnixNano(), 10))
	pipe.ZAdd(ctx, key, redislib.Z{
		Score:  float64(now.UnixNano()),
		Member: now.UnixNano(),
	})
	zcardCmd := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, time.Duration(rl.config.Window+10)*time.Second)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("failed to execute pipeline: %w", err)
	}

	count := int(zcardCmd.Val())
	return count <= rl.config.MaxRequests, count, nil
}

func (rl *RateLimiter) blockKey(key string) string {
	return key + ":block"
}

func (rl *RateLimiter) Block(ctx context.Context, key string) error {
	return rl.client.Set(ctx, rl.blockKey(key), "1", time.Duration(rl.config.BlockDuration)*time.Second).Err()
}

func (rl *RateLimiter) IsBlocked(ctx context.Context, key string) (bool, error) {
	n, err := rl.client.Exists(ctx, rl.blockKey(key)).Result()
	return n > 0, err
}

// RateLimitMiddleware redis 不可用时放行，只记录日志
func RateLimitMiddleware(config RateLimitConfig) app.HandlerFunc {
	return RateLimitMiddlewareWithClient(redis.Client(), config)
}

func RateLimitMiddlewareWithClient(client redislib.Cmdable, config RateLimitConfig) app.HandlerFunc {
	limiter := NewRateLimiter(client, config)
	limited := errors.RateLimited.WithMessage(config.ErrorMessage)

	return func(ctx context.Context, c *app.RequestContext) {
		key := limiter.getKey(ctx, c)

		blocked, err := limiter.IsBlocked(ctx, key)
		if err != nil {
			logger.Logger.Warn("Failed to check block status, allowing request", zap.Error(err))
			c.Next(ctx)
			return
		}
		if blocked {
			c.Abort()
			response.Error(ctx, c, limited)
			return
		}

		now := time.Now()
		allowed, count, err := limiter.Allow(ctx, key, now)
		if err != nil {
			logger.Logger.Warn("Failed to check rate limit, allowing request", zap.Error(err))
			c.Next(ctx)
			return
		}

		remaining := config.MaxRequests - count
		if remaining < 0 {
			remaining = 0
		}
		c.Response.Header.Set("X-RateLimit-Limit", strconv.Itoa(config.MaxRequests))
		c.Response.Header.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Response.Header.Set("X-RateLimit-Reset", strconv.FormatInt(now.Add(time.Duration(config.Window)*time.Second).Unix(), 10))

		if !allowed {
			if err := limiter.Block(ctx, key); err != nil {
				logger.Logger.Error("Failed to block client", zap.Error(err))
			}
			c.Abort()
			response.Error(ctx, c, limited)
			return
		}

		c.Next(ctx)
	}
}
