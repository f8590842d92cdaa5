package utils

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// NormalizePhone 转成 E.164；无法识别为有效号码时 ok 为 false
func NormalizePhone(raw, defaultRegion string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	num, err := phonenumbers.Parse(raw, defaultRegion)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", false
	}

	return phonenumbers.Format(num, phonenumbers.E164), true
}

// NormalizePhoneOrRaw 推荐链接里的号码只做尽力规范化，识别不了就原样保留
func NormalizePhoneOrRaw(raw, defaultRegion string) string {
	if e164, ok := NormalizePhone(raw, defaultRegion); ok {
		return e164
	}
	return strings.TrimSpace(raw)
}

// MaskPhone 只保留末四位
func MaskPhone(phone string) string {
	if len(phone) <= 4 {
		return strings.Repeat("*", len(phone))
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}
