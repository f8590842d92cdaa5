package middleware

import (
	"context"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/google/uuid"

	"RostrDating/pkg/errors"
	"RostrDating/pkg/response"
)

const (
	DeviceIDHeader = "X-Device-ID"
	deviceIDKey    = "device_id"
)

// DeviceMiddleware 校验客户端首次启动生成的安装 ID，所有记录都按它隔离
func DeviceMiddleware() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		raw := strings.TrimSpace(string(c.GetHeader(DeviceIDHeader)))
		if raw == "" {
			c.Abort()
			response.Error(ctx, c, errors.DeviceIDMissing)
			return
		}

		id, err := uuid.Parse(raw)
		if err != nil {
			c.Abort()
			response.Error(ctx, c, errors.DeviceIDInvalid)
			return
		}

		c.Set(deviceIDKey, id.String())
		c.Next(ctx)
	}
}

// GetDeviceID 规范化后的小写 UUID
func GetDeviceID(ctx context.Context, c *app.RequestContext) (string, bool) {
	v, exists := c.Get(deviceIDKey)
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}
