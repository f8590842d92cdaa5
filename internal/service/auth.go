package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"RostrDating/internal/kvstore"
	"RostrDating/internal/model"
	"RostrDating/internal/model/dto"
	"RostrDating/pkg/errors"
)

// 托管认证服务推送给客户端的状态变化
const (
	AuthEventSignedIn  = "SIGNED_IN"
	AuthEventSignedOut = "SIGNED_OUT"
)

// AuthService 处理客户端转发的登录状态变化
type AuthService struct {
	base
	store      kvstore.Store
	onboarding *OnboardingService
}

func NewAuthService(store kvstore.Store, onboarding *OnboardingService, opts ...Option) *AuthService {
	return &AuthService{
		base:       newBase("auth", opts),
		store:      store,
		onboarding: onboarding,
	}
}

// HandleEvent 登录即视为账号已创建，并把安装绑定到用户；登出解除绑定
func (s *AuthService) HandleEvent(ctx context.Context, deviceID, userID, event string) (*dto.AuthEventData, error) {
	event = strings.ToUpper(strings.TrimSpace(event))
	if userID == "" {
		return nil, errors.Unauthorized
	}

	result := &dto.AuthEventData{Event: event, UserID: userID}

	switch event {
	case AuthEventSignedIn:
		s.onboarding.MarkAccountCreated(ctx, deviceID)

		if err := s.store.Set(ctx, deviceUserKey(deviceID), userID, 0); err != nil {
			s.storeFailure(ctx, "bind_device", deviceID, err)
		}
		s.publish(ctx, model.EventAuthSignedIn, deviceID, userID, nil)

		if next, ok := s.onboarding.GetNextStep(ctx, deviceID); ok {
			result.NextStep = string(next)
		}

	case AuthEventSignedOut:
		if err := s.store.Del(ctx, deviceUserKey(deviceID)); err != nil {
			s.storeFailure(ctx, "unbind_device", deviceID, err)
		}
		s.publish(ctx, model.EventAuthSignedOut, deviceID, userID, nil)

	default:
		return nil, errors.AuthEventInvalid
	}

	s.log.Info("Auth event handled",
		zap.String("device_id", deviceID),
		zap.String("user_id", userID),
		zap.String("event", event),
	)

	return result, nil
}

// BoundUser 安装当前绑定的用户
func (s *AuthService) BoundUser(ctx context.Context, deviceID string) (string, bool) {
	userID, found, err := s.store.Get(ctx, deviceUserKey(deviceID))
	if err != nil {
		s.storeFailure(ctx, "get_bound_user", deviceID, err)
		return "", false
	}
	return userID, found && userID != ""
}
