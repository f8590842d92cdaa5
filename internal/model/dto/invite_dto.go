package dto

import "RostrDating/internal/model"

// SetReferralRequest PUT /v1/referral
type SetReferralRequest struct {
	Ref       string `json:"ref"`
	Phone     string `json:"phone"`
	InvitedBy string `json:"invited_by"`
	Circle    string `json:"circle"`
	Username  string `json:"username"`
}

// ReferralData GET /v1/referral
type ReferralData struct {
	HasReferral bool                `json:"has_referral"`
	Referral    *model.ReferralData `json:"referral"`
}

// StorePendingInviteRequest POST /v1/invites/pending
type StorePendingInviteRequest struct {
	CircleID    string `json:"circle_id"`
	InviterName string `json:"inviter_name"`
}

// PendingInviteData GET /v1/invites/pending
type PendingInviteData struct {
	HasPendingInvite bool                 `json:"has_pending_invite"`
	Invite           *model.PendingInvite `json:"invite"`
}

// LaunchCaptureRequest POST /v1/launch，三个来源均可选
type LaunchCaptureRequest struct {
	URL            string            `json:"url"`
	Clipboard      string            `json:"clipboard"`
	AppStoreParams map[string]string `json:"app_store_params"`
}

// LaunchCaptureData 本次启动捕获的结果
type LaunchCaptureData struct {
	ReferralCaptured bool                 `json:"referral_captured"`
	InviteCaptured   bool                 `json:"invite_captured"`
	Sources          []string             `json:"sources"`
	ClipboardChecked bool                 `json:"clipboard_checked"`
	Referral         *model.ReferralData  `json:"referral,omitempty"`
	Invite           *model.PendingInvite `json:"invite,omitempty"`
}

// SendCircleInvitesRequest POST /v1/circles/:circle_id/invites/sms
type SendCircleInvitesRequest struct {
	InviterName string   `json:"inviter_name"`
	Phones      []string `json:"phones"`
}

// SendCircleInvitesData 短信邀请发送结果
type SendCircleInvitesData struct {
	InviteURL string   `json:"invite_url"`
	Sent      []string `json:"sent"`
	Rejected  []string `json:"rejected"`
}
