package sms

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"RostrDating/config"
	"RostrDating/pkg/logger"
)

// Client 短信发送通道
type Client interface {
	// Provider 通道名称，用于日志和指标
	Provider() string

	SendSingle(ctx context.Context, phone, signName, templateCode, templateParam string) error

	// SendBatch 所有号码使用同一签名，templateParams 与 phones 一一对应
	SendBatch(ctx context.Context, phones []string, signName, templateCode string, templateParams []string) error
}

var (
	smsClient Client
	smsOnce   sync.Once
	smsErr    error
)

// Init 按 SMS_PROVIDER 初始化短信客户端
func Init() error {
	smsOnce.Do(func() {
		cfg := config.Cfg

		switch cfg.SMSProvider {
		case "aliyun":
			smsClient, smsErr = NewAliyunClient()
		case "mock", "":
			smsClient = NewMockClient()
		default:
			smsErr = fmt.Errorf("unsupported SMS provider: %s", cfg.SMSProvider)
		}

		if smsErr != nil {
			logger.Logger.Error("Failed to initialize SMS client", zap.Error(smsErr))
			return
		}

		logger.Logger.Info("SMS client initialized",
			zap.String("provider", smsClient.Provider()),
		)
	})

	return smsErr
}

func GetClient() Client {
	if smsClient == nil {
		panic("SMS client not initialized, call sms.Init() first")
	}
	return smsClient
}

func validateBatch(phones []string, signName, templateCode string, templateParams []string) error {
	if signName == "" {
		return fmt.Errorf("signName is required")
	}
	if templateCode == "" {
		return fmt.Errorf("templateCode is required")
	}
	if len(phones) == 0 {
		return fmt.Errorf("phones list is empty")
	}
	if len(templateParams) != len(phones) {
		return fmt.Errorf("templateParams count (%d) must match phones count (%d)", len(templateParams), len(phones))
	}
	return nil
}
