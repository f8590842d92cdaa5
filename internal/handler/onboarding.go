package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"RostrDating/config"
	"RostrDating/internal/model"
	"RostrDating/internal/service"
	"RostrDating/pkg/errors"
	"RostrDating/pkg/response"
)

// GetOnboardingProgress 当前安装的引导进度
// GET /v1/onboarding/progress
func GetOnboardingProgress(ctx context.Context, c *app.RequestContext) {
	deviceID, ok := requireDevice(ctx, c)
	if !ok {
		return
	}

	response.Success(ctx, c, service.Onboarding().GetProgress(ctx, deviceID).ToData())
}

// CompleteOnboardingStep 标记某一步完成，重复调用无副作用
// POST /v1/onboarding/steps/:step/complete
func CompleteOnboardingStep(ctx context.Context, c *app.RequestContext) {
	deviceID, ok := requireDevice(ctx, c)
	if !ok {
		return
	}

	step, ok := model.ParseOnboardingStep(c.Param("step"))
	if !ok {
		response.Error(ctx, c, errors.OnboardingStepInvalid)
		return
	}

	svc := service.Onboarding()
	if err := svc.MarkStep(ctx, deviceID, step); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, svc.GetProgress(ctx, deviceID).ToData())
}

// ResetOnboarding 仅非生产环境注册
// DELETE /v1/onboarding
func ResetOnboarding(ctx context.Context, c *app.RequestContext) {
	if config.Cfg.IsProduction() {
		response.Error(ctx, c, errors.OnboardingResetDenied)
		return
	}

	deviceID, ok := requireDevice(ctx, c)
	if !ok {
		return
	}

	svc := service.Onboarding()
	svc.ResetOnboarding(ctx, deviceID)
	response.Success(ctx, c, svc.GetProgress(ctx, deviceID).ToData())
}
