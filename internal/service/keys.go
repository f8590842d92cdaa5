package service

import (
	"RostrDating/internal/model"
	"RostrDating/storage/redis"
)

// 所有记录按安装 ID 隔离：rostr:device:{id}:...

func deviceKey(deviceID string, parts ...string) string {
	return redis.Key(append([]string{"device", deviceID}, parts...)...)
}

func onboardingKey(deviceID string, step model.OnboardingStep) string {
	return deviceKey(deviceID, "onboarding", string(step))
}

func referralKey(deviceID string) string {
	return deviceKey(deviceID, "referral")
}

func pendingInviteKey(deviceID string) string {
	return deviceKey(deviceID, "invite", "pending")
}

func clipboardCheckedKey(deviceID string) string {
	return deviceKey(deviceID, "launch", "clipboard_checked")
}

func deviceUserKey(deviceID string) string {
	return deviceKey(deviceID, "user")
}
