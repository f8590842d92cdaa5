// Package kvstore 持久化标记存储。值一律为字符串：标记位写 "true"，记录写 JSON。
package kvstore

import (
	"context"
	"time"
)

// Store 安装维度的键值存储，redis / postgres / 内存三种实现语义一致：
// 未命中不是错误，ttl 为 0 表示永不过期。
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	// MGet 只返回命中的键
	MGet(ctx context.Context, keys ...string) (map[string]string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// True 标记位只写这一个值，其余任何值都按未设置处理
const True = "true"
