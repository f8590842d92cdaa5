package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"RostrDating/internal/model/dto"
	"RostrDating/internal/service"
	"RostrDating/pkg/response"
)

// SendCircleInvites 短信邀请好友加入圈子
// POST /v1/circles/:circle_id/invites/sms
func SendCircleInvites(ctx context.Context, c *app.RequestContext) {
	deviceID, ok := requireDevice(ctx, c)
	if !ok {
		return
	}
	userID, ok := requireUser(ctx, c)
	if !ok {
		return
	}

	var req dto.SendCircleInvitesRequest
	if err := c.BindJSON(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	data, err := service.CircleInvite().Send(ctx, deviceID, userID, service.CircleInviteRequest{
		CircleID:    c.Param("circle_id"),
		InviterName: req.InviterName,
		Phones:      req.Phones,
	})
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, data)
}
