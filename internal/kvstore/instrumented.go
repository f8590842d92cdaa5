package kvstore

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "RostrDating/internal/kvstore"

// Instrumented 为每次存储命令记录 span、计数与耗时
type Instrumented struct {
	next    Store
	backend string

	tracer   trace.Tracer
	commands metric.Int64Counter
	duration metric.Float64Histogram
	hits     metric.Int64Counter
	misses   metric.Int64Counter
}

// Instrument 使用全局 TracerProvider / MeterProvider，应在 otel 初始化之后调用
func Instrument(next Store, backend string) (*Instrumented, error) {
	meter := otel.Meter(instrumentationName)

	commands, err := meter.Int64Counter(
		"kvstore.commands.total",
		metric.WithDescription("Total number of key/value store commands"),
		metric.WithUnit("{command}"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"kvstore.command.duration",
		metric.WithDescription("Key/value store command duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5),
	)
	if err != nil {
		return nil, err
	}

	hits, err := meter.Int64Counter(
		"kvstore.hits",
		metric.WithDescription("Number of keys found"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, err
	}

	misses, err := meter.Int64Counter(
		"kvstore.misses",
		metric.WithDescription("Number of keys not found"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return nil, err
	}

	return &Instrumented{
		next:     next,
		backend:  backend,
		tracer:   otel.Tracer(instrumentationName),
		commands: commands,
		duration: duration,
		hits:     hits,
		misses:   misses,
	}, nil
}

func (s *Instrumented) observe(ctx context.Context, op string, keys int, fn func(ctx context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, "kvstore."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", s.backend),
			attribute.String("db.operation", op),
			attribute.Int("kvstore.keys", keys),
		),
	)
	defer span.End()

	start := time.Now()
	err := fn(ctx)

	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	attrs := metric.WithAttributes(
		attribute.String("backend", s.backend),
		attribute.String("operation", op),
		attribute.String("status", status),
	)
	s.commands.Add(ctx, 1, attrs)
	s.duration.Record(ctx, time.Since(start).Seconds(), attrs)

	return err
}

func (s *Instrumented) recordLookup(ctx context.Context, requested, found int) {
	attrs := metric.WithAttributes(attribute.String("backend", s.backend))
	if found > 0 {
		s.hits.Add(ctx, int64(found), attrs)
	}
	if miss := requested - found; miss > 0 {
		s.misses.Add(ctx, int64(miss), attrs)
	}
}

func (s *Instrumented) Get(ctx context.Context, key string) (value string, found bool, err error) {
	err = s.observe(ctx, "get", 1, func(ctx context.Context) error {
		var e error
		value, found, e = s.next.Get(ctx, key)
		return e
	})
	if err == nil {
		n := 0
		if found {
			n = 1
		}
		s.recordLookup(ctx, 1, n)
	}
	return value, found, err
}

func (s *Instrumented) MGet(ctx context.Context, keys ...string) (out map[string]string, err error) {
	err = s.observe(ctx, "mget", len(keys), func(ctx context.Context) error {
		var e error
		out, e = s.next.MGet(ctx, keys...)
		return e
	})
	if err == nil {
		s.recordLookup(ctx, len(keys), len(out))
	}
	return out, err
}

func (s *Instrumented) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.observe(ctx, "set", 1, func(ctx context.Context) error {
		return s.next.Set(ctx, key, value, ttl)
	})
}

func (s *Instrumented) Del(ctx context.Context, keys ...string) error {
	return s.observe(ctx, "del", len(keys), func(ctx context.Context) error {
		return s.next.Del(ctx, keys...)
	})
}
