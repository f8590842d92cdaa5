package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"RostrDating/internal/middleware"
	"RostrDating/internal/model/dto"
	"RostrDating/internal/service"
	"RostrDating/pkg/response"
)

// DecideNavigation 登录状态以 Authorization 为准，token 无效按未登录处理
// POST /v1/navigation/decide
func DecideNavigation(ctx context.Context, c *app.RequestContext) {
	deviceID, ok := requireDevice(ctx, c)
	if !ok {
		return
	}

	var req dto.NavigationDecideRequest
	if err := c.BindJSON(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	userID, _ := middleware.GetUserID(ctx, c)

	decision := service.Navigation().Resolve(ctx, deviceID, userID, service.NavigationInput{
		IsAuthLoading: req.IsAuthLoading,
		RouteGroup:    req.RouteGroup,
		Screen:        req.Screen,
	})

	response.Success(ctx, c, decision)
}
