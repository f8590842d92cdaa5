package sms

import (
	"context"
	"errors"
	"sync"
)

type MockCall struct {
	Phone         string
	SignName      string
	TemplateCode  string
	TemplateParam string
}

// MockClient 只记录调用，开发环境和测试使用
type MockClient struct {
	mu    sync.Mutex
	calls []MockCall

	// FailNext 置为 true 时，下一次调用返回错误并自动复位
	FailNext bool
}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) Provider() string { return "mock" }

func (m *MockClient) SendSingle(ctx context.Context, phone, signName, templateCode, templateParam string) error {
	return m.SendBatch(ctx, []string{phone}, signName, templateCode, []string{templateParam})
}

func (m *MockClient) SendBatch(ctx context.Context, phones []string, signName, templateCode string, templateParams []string) error {
	if err := validateBatch(phones, signName, templateCode, templateParams); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailNext {
		m.FailNext = false
		return errors.New("mock sms send failure")
	}

	for i, phone := range phones {
		m.calls = append(m.calls, MockCall{
			Phone:         phone,
			SignName:      signName,
			TemplateCode:  templateCode,
			TemplateParam: templateParams[i],
		})
	}
	return nil
}

// Calls 返回已记录调用的副本
func (m *MockClient) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}
