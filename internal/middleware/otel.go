package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/config"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// httpMetrics 按路由模板聚合的服务端指标
type httpMetrics struct {
	requests     metric.Int64Counter
	duration     metric.Float64Histogram
	responseSize metric.Int64Histogram
	inflight     metric.Int64UpDownCounter
	deviceless   metric.Int64Counter
}

var httpStats *httpMetrics

// InitMetrics 未调用时中间件只透传
func InitMetrics(meter metric.Meter) error {
	m := &httpMetrics{}
	var err error

	if m.requests, err = meter.Int64Counter("http.server.requests.total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	); err != nil {
		return err
	}

	if m.duration, err = meter.Float64Histogram("http.server.duration",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5),
	); err != nil {
		return err
	}

	if m.responseSize, err = meter.Int64Histogram("http.server.response.size",
		metric.WithDescription("HTTP response body size"),
		metric.WithUnit("By"),
	); err != nil {
		return err
	}

	if m.inflight, err = meter.Int64UpDownCounter("http.server.active_requests",
		metric.WithDescription("Number of in-flight HTTP requests"),
		metric.WithUnit("{request}"),
	); err != nil {
		return err
	}

	if m.deviceless, err = meter.Int64Counter("http.server.deviceless.total",
		metric.WithDescription("Requests to /v1 without a usable X-Device-ID"),
		metric.WithUnit("{request}"),
	); err != nil {
		return err
	}

	httpStats = m
	return nil
}

// 用户可控的字符串写入 trace 前先清洗，非法 UTF-8 会让导出失败
func clean(v string) string {
	return strings.ToValidUTF8(v, "")
}

// routeLabel 用路由模板做维度，:circle_id 之类的参数不进入基数
func routeLabel(c *app.RequestContext) string {
	if p := c.FullPath(); p != "" {
		return clean(p)
	}
	return "unmatched"
}

// OpenTelemetryMiddleware 在 hertz tracing 建好的 server span 上补充安装 ID、用户 ID，并记录请求指标
func OpenTelemetryMiddleware() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		m := httpStats
		if m == nil {
			c.Next(ctx)
			return
		}

		start := time.Now()
		m.inflight.Add(ctx, 1)
		defer m.inflight.Add(ctx, -1)

		span := trace.SpanFromContext(ctx)
		if id := c.GetHeader(DeviceIDHeader); len(id) > 0 {
			span.SetAttributes(attribute.String("app.device_id", clean(string(id))))
		}
		if rid := c.GetHeader("X-Request-Id"); len(rid) > 0 {
			span.SetAttributes(attribute.String("http.request_id", clean(string(rid))))
		}

		c.Next(ctx)

		// 鉴权中间件在下游，结束后才拿得到用户
		if uid, ok := GetUserID(ctx, c); ok {
			span.SetAttributes(attribute.String("enduser.id", clean(uid)))
		}

		route := routeLabel(c)
		status := c.Response.StatusCode()
		if status >= 500 {
			span.SetStatus(codes.Error, "server error")
			if last := c.Errors.Last(); last != nil {
				span.RecordError(last)
			}
		}

		attrs := metric.WithAttributes(
			semconv.HTTPMethod(clean(string(c.Method()))),
			semconv.HTTPRoute(route),
			semconv.HTTPStatusCode(status),
		)
		m.requests.Add(ctx, 1, attrs)
		m.duration.Record(ctx, time.Since(start).Seconds(), attrs)
		if n := int64(len(c.Response.Body())); n > 0 {
			m.responseSize.Record(ctx, n, attrs)
		}

		if strings.HasPrefix(route, "/v1") {
			if _, ok := GetDeviceID(ctx, c); !ok {
				m.deviceless.Add(ctx, 1, metric.WithAttributes(semconv.HTTPRoute(route)))
			}
		}
	}
}

// NewServerTracerConfig hertz server 选项与配套的 tracing 中间件，二者需一起使用
func NewServerTracerConfig(opts ...hertztracing.Option) (config.Option, app.HandlerFunc) {
	tracer, cfg := hertztracing.NewServerTracer(opts...)
	return tracer, hertztracing.ServerMiddleware(cfg)
}
