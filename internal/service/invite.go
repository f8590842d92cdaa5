package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"RostrDating/internal/kvstore"
	"RostrDating/internal/model"
	"RostrDating/pkg/errors"
	"RostrDating/pkg/metrics"
)

// InviteService 单槽位待处理邀请，过期在读取时清理，没有后台扫描
type InviteService struct {
	base
	store kvstore.Store
	ttl   time.Duration
}

func NewInviteService(store kvstore.Store, ttl time.Duration, opts ...Option) *InviteService {
	if ttl <= 0 {
		ttl = model.DefaultInviteTTL
	}
	return &InviteService{
		base:  newBase("invite", opts),
		store: store,
		ttl:   ttl,
	}
}

// StorePendingInvite 覆盖已有邀请，时间戳取当前时间
func (s *InviteService) StorePendingInvite(ctx context.Context, deviceID, circleID, inviterName string) (*model.PendingInvite, error) {
	return s.capture(ctx, deviceID, circleID, inviterName, SourceAPI)
}

func (s *InviteService) capture(ctx context.Context, deviceID, circleID, inviterName, source string) (*model.PendingInvite, error) {
	circleID = strings.TrimSpace(circleID)
	if circleID == "" {
		return nil, errors.InviteInvalid
	}

	invite := model.NewPendingInvite(circleID, strings.TrimSpace(inviterName), s.now())

	raw, err := json.Marshal(invite)
	if err != nil {
		s.log.Error("Failed to marshal pending invite", zap.Error(err))
		return &invite, nil
	}

	if err := s.store.Set(ctx, pendingInviteKey(deviceID), string(raw), 0); err != nil {
		s.storeFailure(ctx, "store_invite", deviceID, err)
		return &invite, nil
	}

	metrics.RecordInviteCaptured(ctx, source)
	s.publish(ctx, model.EventInviteCaptured, deviceID, "", map[string]interface{}{
		"circle_id": circleID,
		"source":    source,
	})

	return &invite, nil
}

// GetPendingInvite 超过有效期的邀请会被删除并返回 nil
func (s *InviteService) GetPendingInvite(ctx context.Context, deviceID string) *model.PendingInvite {
	key := pendingInviteKey(deviceID)

	raw, found, err := s.store.Get(ctx, key)
	if err != nil {
		s.storeFailure(ctx, "get_invite", deviceID, err)
		return nil
	}
	if !found {
		return nil
	}

	var invite model.PendingInvite
	if err := json.Unmarshal([]byte(raw), &invite); err != nil {
		s.log.Warn("Malformed pending invite record, ignoring",
			zap.String("device_id", deviceID),
			zap.Error(err),
		)
		return nil
	}
	if invite.CircleID == "" {
		return nil
	}

	if invite.IsExpired(s.now(), s.ttl) {
		if err := s.store.Del(ctx, key); err != nil {
			s.storeFailure(ctx, "expire_invite", deviceID, err)
		}
		metrics.RecordInviteExpired(ctx)
		s.log.Info("Pending invite expired",
			zap.String("device_id", deviceID),
			zap.String("circle_id", invite.CircleID),
			zap.Time("captured_at", invite.CapturedAt()),
		)
		return nil
	}

	return &invite
}

func (s *InviteService) HasPendingInvite(ctx context.Context, deviceID string) bool {
	return s.GetPendingInvite(ctx, deviceID) != nil
}

func (s *InviteService) ClearPendingInvite(ctx context.Context, deviceID string) {
	if err := s.store.Del(ctx, pendingInviteKey(deviceID)); err != nil {
		s.storeFailure(ctx, "clear_invite", deviceID, err)
	}
}

// ConsumePendingInvite 加入圈子流程取走邀请
func (s *InviteService) ConsumePendingInvite(ctx context.Context, deviceID, userID string) *model.PendingInvite {
	invite := s.GetPendingInvite(ctx, deviceID)
	if invite == nil {
		return nil
	}

	s.ClearPendingInvite(ctx, deviceID)
	metrics.RecordInviteConsumed(ctx)
	s.publish(ctx, model.EventInviteConsumed, deviceID, userID, map[string]interface{}{
		"circle_id":    invite.CircleID,
		"inviter_name": invite.InviterName,
	})

	return invite
}
