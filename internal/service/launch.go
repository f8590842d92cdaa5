package service

import (
	"context"

	"go.uber.org/zap"

	"RostrDating/internal/deeplink"
	"RostrDating/internal/kvstore"
	"RostrDating/internal/model"
)

// LaunchInput 冷启动时客户端上报的三个来源，均可为空
type LaunchInput struct {
	URL            string
	Clipboard      string
	AppStoreParams map[string]string
}

type LaunchResult struct {
	Referral         *model.ReferralData
	Invite           *model.PendingInvite
	Sources          []string
	ClipboardChecked bool
}

// LaunchService 依次尝试启动链接、App Store 参数、剪贴板。
// 剪贴板只在前两者都没有结果时兜底，并且每个安装只读一次
type LaunchService struct {
	base
	store     kvstore.Store
	referrals *ReferralService
	invites   *InviteService
	scheme    string
}

func NewLaunchService(store kvstore.Store, referrals *ReferralService, invites *InviteService, scheme string, opts ...Option) *LaunchService {
	return &LaunchService{
		base:      newBase("launch", opts),
		store:     store,
		referrals: referrals,
		invites:   invites,
		scheme:    scheme,
	}
}

func (s *LaunchService) Capture(ctx context.Context, deviceID string, in LaunchInput) *LaunchResult {
	result := &LaunchResult{}

	s.apply(ctx, deviceID, deeplink.ParseURL(in.URL, s.scheme), SourceURL, result)
	s.apply(ctx, deviceID, deeplink.ParseAppStoreParams(in.AppStoreParams), SourceAppStore, result)

	result.ClipboardChecked = s.clipboardChecked(ctx, deviceID)
	if len(result.Sources) == 0 && in.Clipboard != "" && !result.ClipboardChecked {
		s.apply(ctx, deviceID, deeplink.ParseClipboard(in.Clipboard, s.scheme), SourceClipboard, result)

		if err := s.store.Set(ctx, clipboardCheckedKey(deviceID), kvstore.True, 0); err != nil {
			s.storeFailure(ctx, "mark_clipboard_checked", deviceID, err)
		}
		result.ClipboardChecked = true
	}

	if len(result.Sources) > 0 {
		s.log.Info("Launch capture",
			zap.String("device_id", deviceID),
			zap.Strings("sources", result.Sources),
			zap.Bool("referral", result.Referral != nil),
			zap.Bool("invite", result.Invite != nil),
		)
	}

	return result
}

// apply 后到的来源覆盖先到的
func (s *LaunchService) apply(ctx context.Context, deviceID string, c deeplink.Capture, source string, result *LaunchResult) {
	if c.Empty() {
		return
	}

	hit := false
	if c.Referral != nil {
		if data, err := s.referrals.capture(ctx, deviceID, *c.Referral, source); err == nil {
			result.Referral = data
			hit = true
		}
	}
	if c.Invite != nil {
		if invite, err := s.invites.capture(ctx, deviceID, c.Invite.CircleID, c.Invite.InviterName, source); err == nil {
			result.Invite = invite
			hit = true
		}
	}

	if hit {
		result.Sources = append(result.Sources, source)
	}
}

// clipboardChecked 读失败按未读过处理
func (s *LaunchService) clipboardChecked(ctx context.Context, deviceID string) bool {
	v, found, err := s.store.Get(ctx, clipboardCheckedKey(deviceID))
	if err != nil {
		s.storeFailure(ctx, "get_clipboard_checked", deviceID, err)
		return false
	}
	return found && v == kvstore.True
}
