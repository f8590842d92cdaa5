package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"RostrDating/internal/model/dto"
	"RostrDating/internal/service"
	"RostrDating/pkg/response"
)

// CaptureLaunch 冷启动上报启动链接、剪贴板和 App Store 参数
// POST /v1/launch
func CaptureLaunch(ctx context.Context, c *app.RequestContext) {
	deviceID, ok := requireDevice(ctx, c)
	if !ok {
		return
	}

	var req dto.LaunchCaptureRequest
	if err := c.BindJSON(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result := service.Launch().Capture(ctx, deviceID, service.LaunchInput{
		URL:            req.URL,
		Clipboard:      req.Clipboard,
		AppStoreParams: req.AppStoreParams,
	})

	sources := result.Sources
	if sources == nil {
		sources = []string{}
	}

	response.Success(ctx, c, dto.LaunchCaptureData{
		ReferralCaptured: result.Referral != nil,
		InviteCaptured:   result.Invite != nil,
		Sources:          sources,
		ClipboardChecked: result.ClipboardChecked,
		Referral:         result.Referral,
		Invite:           result.Invite,
	})
}
