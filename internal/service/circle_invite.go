package service

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"RostrDating/internal/deeplink"
	"RostrDating/internal/model"
	"RostrDating/internal/model/dto"
	"RostrDating/pkg/errors"
	"RostrDating/pkg/metrics"
	"RostrDating/pkg/sms"
	"RostrDating/utils"
)

type CircleInviteConfig struct {
	Scheme        string
	SignName      string
	TemplateCode  string
	MaxRecipients int
	PhoneRegion   string
}

type CircleInviteRequest struct {
	CircleID    string
	InviterName string
	Phones      []string
}

// CircleInviteService 短信邀请好友加入圈子，链接即 scheme://invite?circle=...
type CircleInviteService struct {
	base
	client     sms.Client
	onboarding *OnboardingService
	cfg        CircleInviteConfig
}

func NewCircleInviteService(client sms.Client, onboarding *OnboardingService, cfg CircleInviteConfig, opts ...Option) *CircleInviteService {
	if cfg.MaxRecipients <= 0 {
		cfg.MaxRecipients = 20
	}
	return &CircleInviteService{
		base:       newBase("circle_invite", opts),
		client:     client,
		onboarding: onboarding,
		cfg:        cfg,
	}
}

// Send 无法识别的号码放进 Rejected，不发送；整批发送成功后标记 friends 步骤
func (s *CircleInviteService) Send(ctx context.Context, deviceID, userID string, req CircleInviteRequest) (*dto.SendCircleInvitesData, error) {
	circleID := strings.TrimSpace(req.CircleID)
	if circleID == "" {
		return nil, errors.InviteInvalid
	}

	sent := make([]string, 0, len(req.Phones))
	rejected := make([]string, 0)
	seen := make(map[string]bool, len(req.Phones))

	for _, raw := range req.Phones {
		phone, ok := utils.NormalizePhone(raw, s.cfg.PhoneRegion)
		if !ok {
			rejected = append(rejected, raw)
			continue
		}
		if seen[phone] {
			continue
		}
		seen[phone] = true
		sent = append(sent, phone)
	}

	if len(sent) == 0 {
		return nil, errors.SMSNoRecipients
	}
	if len(sent) > s.cfg.MaxRecipients {
		return nil, errors.SMSTooManyTargets
	}

	inviterName := strings.TrimSpace(req.InviterName)
	link := deeplink.BuildInviteURL(s.cfg.Scheme, circleID, inviterName)

	param, err := json.Marshal(map[string]string{
		"inviter": inviterName,
		"link":    link,
	})
	if err != nil {
		return nil, err
	}
	params := make([]string, len(sent))
	for i := range params {
		params[i] = string(param)
	}

	if err := s.client.SendBatch(ctx, sent, s.cfg.SignName, s.cfg.TemplateCode, params); err != nil {
		s.log.Error("Failed to send circle invites",
			zap.String("device_id", deviceID),
			zap.String("circle_id", circleID),
			zap.Int("count", len(sent)),
			zap.Error(err),
		)
		return nil, errors.SMSSendFailed
	}

	s.onboarding.MarkFriendsInvited(ctx, deviceID)
	metrics.RecordSMSInvitesSent(ctx, s.client.Provider(), len(sent))

	hashes := make([]string, len(sent))
	masked := make([]string, len(sent))
	for i, phone := range sent {
		hashes[i] = utils.HashPhone(phone)
		masked[i] = utils.MaskPhone(phone)
	}
	s.publish(ctx, model.EventCircleInvitesSent, deviceID, userID, map[string]interface{}{
		"circle_id":    circleID,
		"count":        len(sent),
		"phone_hashes": hashes,
	})

	s.log.Info("Circle invites sent",
		zap.String("device_id", deviceID),
		zap.String("circle_id", circleID),
		zap.Strings("phones", masked),
		zap.Int("rejected", len(rejected)),
	)

	return &dto.SendCircleInvitesData{
		InviteURL: link,
		Sent:      sent,
		Rejected:  rejected,
	}, nil
}
