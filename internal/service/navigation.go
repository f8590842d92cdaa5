package service

import (
	"context"

	"go.uber.org/zap"

	"RostrDating/internal/navigation"
	"RostrDating/pkg/metrics"
)

// NavigationInput 客户端当前所在位置；是否登录由调用方根据 token 判断
type NavigationInput struct {
	IsAuthLoading bool
	RouteGroup    string
	Screen        string
}

type NavigationService struct {
	base
	referrals *ReferralService
}

func NewNavigationService(referrals *ReferralService, opts ...Option) *NavigationService {
	return &NavigationService{
		base:      newBase("navigation", opts),
		referrals: referrals,
	}
}

// Resolve userID 为空表示未登录。跳转好友邀请页时同时消费推荐记录，避免每次启动重复跳转
func (s *NavigationService) Resolve(ctx context.Context, deviceID, userID string, in NavigationInput) navigation.Decision {
	state := navigation.State{
		IsAuthenticated: userID != "",
		IsAuthLoading:   in.IsAuthLoading,
		RouteGroup:      in.RouteGroup,
		Screen:          in.Screen,
	}
	if !in.IsAuthLoading {
		state.Referral = s.referrals.GetReferralData(ctx, deviceID)
	}

	decision := navigation.Decide(state)

	if decision.ConsumesReferral() {
		s.referrals.ConsumeReferral(ctx, deviceID, userID)
	}

	metrics.RecordNavigationDecision(ctx, string(decision.Action), decision.Route)
	s.log.Debug("Navigation decided",
		zap.String("device_id", deviceID),
		zap.String("action", string(decision.Action)),
		zap.String("route", decision.Route),
	)

	return decision
}
