package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"

	"RostrDating/config"
)

var errInvalidCipherText = errors.New("invalid ciphertext payload")

// 密钥取 ENCRYPTION_KEY，32 字节即 AES-256
func newGCM() (cipher.AEAD, error) {
	block, err := aes.NewCipher([]byte(config.Cfg.EncryptionKey))
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// EncryptPhone 输出 base64(nonce || ciphertext)，同一号码每次结果不同
func EncryptPhone(plain string) (string, error) {
	gcm, err := newGCM()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plain), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptPhone EncryptPhone 的逆操作，密钥不符或数据被篡改时返回错误
func DecryptPhone(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}

	gcm, err := newGCM()
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(raw) < nonceSize {
		return "", errInvalidCipherText
	}

	plain, err := gcm.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
