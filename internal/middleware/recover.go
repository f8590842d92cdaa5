package middleware

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"RostrDating/config"
	"RostrDating/pkg/errors"
	"RostrDating/pkg/logger"
	"RostrDating/pkg/response"
)

// RecoverConfig recover 中间件配置
type RecoverConfig struct {
	EnableStackTrace bool
	// 生产环境是否返回 panic 详情
	ExposeDetailsInProduction bool
	// 是否记录请求头和小体积请求体
	LogRequestDetails bool
	// 是否在当前 span 上记录异常
	RecordInSpan bool
	IsProduction bool
}

func NewRecoverConfig() RecoverConfig {
	return RecoverConfig{
		EnableStackTrace:  true,
		LogRequestDetails: true,
		RecordInSpan:      true,
		IsProduction:      config.Cfg.IsProduction(),
	}
}

func RecoverMiddleware() app.HandlerFunc {
	return RecoverMiddlewareWithConfig(NewRecoverConfig())
}

func RecoverMiddlewareWithConfig(config RecoverConfig) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		defer func() {
			if err := recover(); err != nil {
				handlePanic(ctx, c, err, config)
			}
		}()

		c.Next(ctx)
	}
}

func handlePanic(ctx context.Context, c *app.RequestContext, err interface{}, config RecoverConfig) {
	var stack []byte
	if config.EnableStackTrace {
		stack = debug.Stack()
	}

	logPanic(ctx, c, err, stack, config)

	if config.RecordInSpan {
		if span := trace.SpanFromContext(ctx); span.IsRecording() {
			span.RecordError(fmt.Errorf("panic: %v", err), trace.WithStackTrace(false))
			span.SetStatus(codes.Error, "panic recovered")
		}
	}

	c.Abort()
	writeErrorResponse(ctx, c, err, stack, config)
}

func writeErrorResponse(ctx context.Context, c *app.RequestContext, err interface{}, stack []byte, config RecoverConfig) {
	if config.IsProduction && !config.ExposeDetailsInProduction {
		response.Error(ctx, c, errors.Internal)
		return
	}

	details := map[string]interface{}{
		"panic":     fmt.Sprintf("%v", err),
		"timestamp": time.Now().Format(time.RFC3339),
	}
	if len(stack) > 0 {
		details["stack"] = string(stack)
	}

	response.ErrorWithDetails(ctx, c, errors.Internal.WithMessage(fmt.Sprintf("Internal error: %v", err)), details)
}

func logPanic(ctx context.Context, c *app.RequestContext, err interface{}, stack []byte, config RecoverConfig) {
	fields := []zap.Field{
		zap.String("panic", fmt.Sprintf("%v", err)),
		zap.String("path", string(c.Path())),
		zap.String("method", string(c.Method())),
		zap.String("client_ip", c.ClientIP()),
		zap.String("user_agent", string(c.UserAgent())),
	}

	requestID := string(c.GetHeader("X-Request-ID"))
	if requestID == "" {
		requestID = string(c.GetHeader("X-Trace-ID"))
	}
	fields = append(fields, zap.String("request_id", requestID))

	if userID, exists := GetUserID(ctx, c); exists {
		fields = append(fields, zap.String("user_id", userID))
	}
	if deviceID, exists := GetDeviceID(ctx, c); exists {
		fields = append(fields, zap.String("device_id", deviceID))
	}

	if config.LogRequestDetails {
		// Authorization 不进日志
		headers := make(map[string]string)
		c.Request.Header.VisitAll(func(key, value []byte) {
			if strings.EqualFold(string(key), "Authorization") {
				return
			}
			headers[string(key)] = string(value)
		})
		fields = append(fields, zap.Any("headers", headers))

		body := c.Request.Body()
		if len(body) > 0 && len(body) < 1024 && strings.Contains(string(c.ContentType()), "json") {
			fields = append(fields, zap.ByteString("body", body))
		}
	}

	if len(stack) > 0 {
		fields = append(fields, zap.ByteString("stack", stack))
	}

	logger.Logger.Error("[PANIC RECOVERED]", fields...)
}
