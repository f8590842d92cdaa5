package utils

import (
	"crypto/sha256"
	"encoding/hex"

	"RostrDating/config"
)

// HashPhone 日志和事件中只出现号码摘要：sha256(salt + ":" + phone)
func HashPhone(phone string) string {
	sum := sha256.Sum256([]byte(config.Cfg.PhoneHashSalt + ":" + phone))
	return hex.EncodeToString(sum[:])
}
