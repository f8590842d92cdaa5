package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"RostrDating/internal/model"
	"RostrDating/internal/model/dto"
	"RostrDating/internal/service"
	"RostrDating/pkg/response"
)

// GetReferral GET /v1/referral
func GetReferral(ctx context.Context, c *app.RequestContext) {
	deviceID, ok := requireDevice(ctx, c)
	if !ok {
		return
	}

	referral := service.Referral().GetReferralData(ctx, deviceID)
	response.Success(ctx, c, dto.ReferralData{
		HasReferral: referral != nil,
		Referral:    referral,
	})
}

// SetReferral PUT /v1/referral
func SetReferral(ctx context.Context, c *app.RequestContext) {
	deviceID, ok := requireDevice(ctx, c)
	if !ok {
		return
	}

	var req dto.SetReferralRequest
	if err := c.BindJSON(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	svc := service.Referral()
	if err := svc.SetReferralData(ctx, deviceID, &model.ReferralData{
		Ref:       req.Ref,
		Phone:     req.Phone,
		InvitedBy: req.InvitedBy,
		Circle:    req.Circle,
		Username:  req.Username,
	}); err != nil {
		response.Error(ctx, c, err)
		return
	}

	referral := svc.GetReferralData(ctx, deviceID)
	response.Success(ctx, c, dto.ReferralData{
		HasReferral: referral != nil,
		Referral:    referral,
	})
}

// ClearReferral DELETE /v1/referral
func ClearReferral(ctx context.Context, c *app.RequestContext) {
	deviceID, ok := requireDevice(ctx, c)
	if !ok {
		return
	}

	service.Referral().ClearReferralData(ctx, deviceID)
	response.NoContent(ctx, c)
}
