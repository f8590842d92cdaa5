package kvstore

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Guarded 为底层存储加熔断：连续失败达到阈值后直接返回 gobreaker.ErrOpenState，
// 上层按"未保存"处理，不再等待超时。
type Guarded struct {
	next Store
	cb   *gobreaker.CircuitBreaker
}

func NewGuarded(next Store, name string, maxFailures uint32, resetTimeout time.Duration, log *zap.Logger) *Guarded {
	if log == nil {
		log = zap.NewNop()
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 3, // 半开状态允许 3 次试探
		Timeout:     resetTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// 客户端断开导致的取消不算存储故障
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("Store circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &Guarded{next: next, cb: gobreaker.NewCircuitBreaker(settings)}
}

// State 当前熔断状态，健康检查使用
func (g *Guarded) State() gobreaker.State {
	return g.cb.State()
}

type getResult struct {
	value string
	found bool
}

func (g *Guarded) Get(ctx context.Context, key string) (string, bool, error) {
	res, err := g.cb.Execute(func() (interface{}, error) {
		v, ok, err := g.next.Get(ctx, key)
		return getResult{value: v, found: ok}, err
	})
	if err != nil {
		return "", false, err
	}
	r := res.(getResult)
	return r.value, r.found, nil
}

func (g *Guarded) MGet(ctx context.Context, keys ...string) (map[string]string, error) {
	res, err := g.cb.Execute(func() (interface{}, error) {
		return g.next.MGet(ctx, keys...)
	})
	if err != nil {
		return nil, err
	}
	return res.(map[string]string), nil
}

func (g *Guarded) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	_, err := g.cb.Execute(func() (interface{}, error) {
		return nil, g.next.Set(ctx, key, value, ttl)
	})
	return err
}

func (g *Guarded) Del(ctx context.Context, keys ...string) error {
	_, err := g.cb.Execute(func() (interface{}, error) {
		return nil, g.next.Del(ctx, keys...)
	})
	return err
}
