package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"RostrDating/internal/model/dto"
	"RostrDating/internal/service"
	"RostrDating/pkg/response"
)

// HandleAuthEvent 客户端转发托管认证服务的 SIGNED_IN / SIGNED_OUT
// POST /v1/auth/events
func HandleAuthEvent(ctx context.Context, c *app.RequestContext) {
	deviceID, ok := requireDevice(ctx, c)
	if !ok {
		return
	}
	userID, ok := requireUser(ctx, c)
	if !ok {
		return
	}

	var req dto.AuthEventRequest
	if err := c.BindJSON(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	data, err := service.Auth().HandleEvent(ctx, deviceID, userID, req.Event)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, data)
}
