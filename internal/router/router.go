package router

import (
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/route"

	"RostrDating/config"
	"RostrDating/internal/handler"
	"RostrDating/internal/middleware"
)

// Register 挂载全部路由。依赖 middleware.Init 和 service.Init 已完成
func Register(r *route.Engine) {
	r.Use(middleware.RecoverMiddleware())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.OpenTelemetryMiddleware())

	r.GET("/healthz", handler.Healthz)

	v1 := r.Group("/v1", middleware.DeviceMiddleware())

	onboarding := v1.Group("/onboarding")
	{
		onboarding.GET("/progress", handler.GetOnboardingProgress)
		onboarding.POST("/steps/:step/complete", handler.CompleteOnboardingStep)
		if !config.Cfg.IsProduction() {
			onboarding.DELETE("", handler.ResetOnboarding)
		}
	}

	referral := v1.Group("/referral")
	{
		referral.GET("", handler.GetReferral)
		referral.PUT("", handler.SetReferral)
		referral.DELETE("", handler.ClearReferral)
	}

	invites := v1.Group("/invites/pending")
	{
		invites.GET("", handler.GetPendingInvite)
		invites.POST("", handler.StorePendingInvite)
		invites.DELETE("", handler.ClearPendingInvite)
		invites.POST("/consume", middleware.AuthMiddleware(), handler.ConsumePendingInvite)
	}

	v1.POST("/launch", append(rateLimit(middleware.LaunchRateLimitConfig), handler.CaptureLaunch)...)
	v1.POST("/navigation/decide", middleware.OptionalAuthMiddleware(), handler.DecideNavigation)
	v1.POST("/auth/events", middleware.AuthMiddleware(), handler.HandleAuthEvent)

	circles := v1.Group("/circles/:circle_id", middleware.AuthMiddleware())
	{
		circles.POST("/invites/sms", append(rateLimit(middleware.SMSInviteRateLimitConfig), handler.SendCircleInvites)...)
	}
}

// rateLimit RATE_LIMIT_ENABLED=false 时不挂限流
func rateLimit(cfg middleware.RateLimitConfig) []app.HandlerFunc {
	if !config.Cfg.RateLimitEnabled {
		return nil
	}
	return []app.HandlerFunc{middleware.RateLimitMiddleware(cfg)}
}
