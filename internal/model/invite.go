package model

import "time"

// DefaultInviteTTL 待处理邀请的有效期
const DefaultInviteTTL = 7 * 24 * time.Hour

// PendingInvite 登录前捕获到的加入圈子请求，单槽位，新邀请覆盖旧邀请。
// Timestamp 为毫秒时间戳。
type PendingInvite struct {
	CircleID    string `json:"circleId"`
	InviterName string `json:"inviterName,omitempty"`
	Timestamp   int64  `json:"timestamp"`
}

func NewPendingInvite(circleID, inviterName string, now time.Time) PendingInvite {
	return PendingInvite{
		CircleID:    circleID,
		InviterName: inviterName,
		Timestamp:   now.UnixMilli(),
	}
}

// CapturedAt 捕获时间
func (p PendingInvite) CapturedAt() time.Time {
	return time.UnixMilli(p.Timestamp)
}

// IsExpired 纯函数：超过 ttl 即过期，恰好等于 ttl 仍有效
func (p PendingInvite) IsExpired(now time.Time, ttl time.Duration) bool {
	return now.UnixMilli()-p.Timestamp > ttl.Milliseconds()
}
