package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"RostrDating/internal/middleware"
	"RostrDating/pkg/errors"
	"RostrDating/pkg/response"
)

// requireDevice 路由上都挂了 DeviceMiddleware，这里兜底
func requireDevice(ctx context.Context, c *app.RequestContext) (string, bool) {
	id, ok := middleware.GetDeviceID(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.DeviceIDMissing)
	}
	return id, ok
}

func requireUser(ctx context.Context, c *app.RequestContext) (string, bool) {
	id, ok := middleware.GetUserID(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.Unauthorized)
	}
	return id, ok
}
