package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"RostrDating/internal/model/dto"
	"RostrDating/internal/service"
	"RostrDating/pkg/errors"
	"RostrDating/pkg/response"
)

// GetPendingInvite 过期的邀请在这里被清掉
// GET /v1/invites/pending
func GetPendingInvite(ctx context.Context, c *app.RequestContext) {
	deviceID, ok := requireDevice(ctx, c)
	if !ok {
		return
	}

	invite := service.Invite().GetPendingInvite(ctx, deviceID)
	response.Success(ctx, c, dto.PendingInviteData{
		HasPendingInvite: invite != nil,
		Invite:           invite,
	})
}

// StorePendingInvite POST /v1/invites/pending
func StorePendingInvite(ctx context.Context, c *app.RequestContext) {
	deviceID, ok := requireDevice(ctx, c)
	if !ok {
		return
	}

	var req dto.StorePendingInviteRequest
	if err := c.BindJSON(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	invite, err := service.Invite().StorePendingInvite(ctx, deviceID, req.CircleID, req.InviterName)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, dto.PendingInviteData{
		HasPendingInvite: true,
		Invite:           invite,
	})
}

// ClearPendingInvite DELETE /v1/invites/pending
func ClearPendingInvite(ctx context.Context, c *app.RequestContext) {
	deviceID, ok := requireDevice(ctx, c)
	if !ok {
		return
	}

	service.Invite().ClearPendingInvite(ctx, deviceID)
	response.NoContent(ctx, c)
}

// ConsumePendingInvite 登录后加入圈子时取走邀请
// POST /v1/invites/pending/consume
func ConsumePendingInvite(ctx context.Context, c *app.RequestContext) {
	deviceID, ok := requireDevice(ctx, c)
	if !ok {
		return
	}
	userID, ok := requireUser(ctx, c)
	if !ok {
		return
	}

	// 安装已绑定其他账号时，邀请不能被当前 token 的用户取走
	if bound, ok := service.Auth().BoundUser(ctx, deviceID); ok && bound != userID {
		response.Error(ctx, c, errors.InviteUserMismatch)
		return
	}

	invite := service.Invite().ConsumePendingInvite(ctx, deviceID, userID)
	if invite == nil {
		response.Error(ctx, c, errors.InviteNotFound)
		return
	}

	response.Success(ctx, c, dto.PendingInviteData{
		HasPendingInvite: false,
		Invite:           invite,
	})
}
