package service

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"RostrDating/internal/kvstore"
	"RostrDating/internal/model"
	"RostrDating/pkg/errors"
	"RostrDating/pkg/metrics"
	"RostrDating/utils"
)

// 捕获来源
const (
	SourceAPI       = "api"
	SourceURL       = "url"
	SourceAppStore  = "app_store"
	SourceClipboard = "clipboard"
)

// storedReferral 落库格式，手机号只以密文出现
type storedReferral struct {
	Ref       string `json:"ref"`
	PhoneEnc  string `json:"phone_enc,omitempty"`
	InvitedBy string `json:"invited_by,omitempty"`
	Circle    string `json:"circle,omitempty"`
	Username  string `json:"username,omitempty"`
}

func sealReferral(data model.ReferralData) (storedReferral, error) {
	rec := storedReferral{
		Ref:       data.Ref,
		InvitedBy: data.InvitedBy,
		Circle:    data.Circle,
		Username:  data.Username,
	}
	if data.Phone != "" {
		enc, err := utils.EncryptPhone(data.Phone)
		if err != nil {
			return storedReferral{}, err
		}
		rec.PhoneEnc = enc
	}
	return rec, nil
}

func (r storedReferral) open() (model.ReferralData, error) {
	data := model.ReferralData{
		Ref:       r.Ref,
		InvitedBy: r.InvitedBy,
		Circle:    r.Circle,
		Username:  r.Username,
	}
	if r.PhoneEnc != "" {
		phone, err := utils.DecryptPhone(r.PhoneEnc)
		if err != nil {
			return model.ReferralData{}, err
		}
		data.Phone = phone
	}
	return data, nil
}

// ReferralService 单槽位推荐记录。读失败或 JSON 损坏都按"没有推荐"处理
type ReferralService struct {
	base
	store       kvstore.Store
	phoneRegion string
}

func NewReferralService(store kvstore.Store, phoneRegion string, opts ...Option) *ReferralService {
	return &ReferralService{
		base:        newBase("referral", opts),
		store:       store,
		phoneRegion: phoneRegion,
	}
}

// SetReferralData data 为 nil 时等同于 ClearReferralData
func (s *ReferralService) SetReferralData(ctx context.Context, deviceID string, data *model.ReferralData) error {
	if data == nil {
		s.ClearReferralData(ctx, deviceID)
		return nil
	}
	_, err := s.capture(ctx, deviceID, *data, SourceAPI)
	return err
}

func (s *ReferralService) capture(ctx context.Context, deviceID string, data model.ReferralData, source string) (*model.ReferralData, error) {
	data.Ref = strings.TrimSpace(data.Ref)
	if data.Ref == "" {
		return nil, errors.ReferralInvalid
	}
	if data.Phone != "" {
		data.Phone = utils.NormalizePhoneOrRaw(data.Phone, s.phoneRegion)
	}

	rec, err := sealReferral(data)
	if err != nil {
		s.log.Error("Failed to encrypt referral phone, referral not saved",
			zap.String("device_id", deviceID),
			zap.Error(err),
		)
		return &data, nil
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		s.log.Error("Failed to marshal referral", zap.Error(err))
		return &data, nil
	}

	if err := s.store.Set(ctx, referralKey(deviceID), string(raw), 0); err != nil {
		s.storeFailure(ctx, "set_referral", deviceID, err)
		return &data, nil
	}

	metrics.RecordReferralCaptured(ctx, source)
	s.publish(ctx, model.EventReferralCaptured, deviceID, "", map[string]interface{}{
		"ref":    data.Ref,
		"source": source,
	})

	return &data, nil
}

func (s *ReferralService) GetReferralData(ctx context.Context, deviceID string) *model.ReferralData {
	raw, found, err := s.store.Get(ctx, referralKey(deviceID))
	if err != nil {
		s.storeFailure(ctx, "get_referral", deviceID, err)
		return nil
	}
	if !found {
		return nil
	}

	var rec storedReferral
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		s.log.Warn("Malformed referral record, ignoring",
			zap.String("device_id", deviceID),
			zap.Error(err),
		)
		return nil
	}
	if rec.Ref == "" {
		return nil
	}

	// 密钥轮换或数据损坏时解不开，同样按没有推荐处理
	data, err := rec.open()
	if err != nil {
		s.log.Warn("Undecryptable referral record, ignoring",
			zap.String("device_id", deviceID),
			zap.Error(err),
		)
		return nil
	}

	return &data
}

func (s *ReferralService) HasReferralData(ctx context.Context, deviceID string) bool {
	return s.GetReferralData(ctx, deviceID) != nil
}

func (s *ReferralService) ClearReferralData(ctx context.Context, deviceID string) {
	if err := s.store.Del(ctx, referralKey(deviceID)); err != nil {
		s.storeFailure(ctx, "clear_referral", deviceID, err)
	}
}

// ConsumeReferral 读出并清除，之后不会再触发好友邀请跳转
func (s *ReferralService) ConsumeReferral(ctx context.Context, deviceID, userID string) *model.ReferralData {
	data := s.GetReferralData(ctx, deviceID)
	if data == nil {
		return nil
	}

	s.ClearReferralData(ctx, deviceID)
	metrics.RecordReferralConsumed(ctx)
	s.publish(ctx, model.EventReferralConsumed, deviceID, userID, map[string]interface{}{
		"ref":        data.Ref,
		"invited_by": data.InvitedBy,
	})

	return data
}
