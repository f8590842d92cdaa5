package model

// 领域事件的路由键
const (
	EventOnboardingCompleted = "onboarding.completed"
	EventReferralCaptured    = "referral.captured"
	EventReferralConsumed    = "referral.consumed"
	EventInviteCaptured      = "invite.captured"
	EventInviteConsumed      = "invite.consumed"
	EventCircleInvitesSent   = "circle.invites_sent"
	EventAuthSignedIn        = "auth.signed_in"
	EventAuthSignedOut       = "auth.signed_out"
)

// EventMessage 事件消息（用于事件总线）
type EventMessage struct {
	MessageID  string                 `json:"message_id"` // 消息唯一ID，用于消费端幂等
	EventType  string                 `json:"event_type"`
	DeviceID   string                 `json:"device_id"`
	UserID     string                 `json:"user_id,omitempty"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
	OccurredAt string                 `json:"occurred_at"`
}
