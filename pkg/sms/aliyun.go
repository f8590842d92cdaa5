package sms

import (
	"context"
	"encoding/json"
	"fmt"

	openapi "github.com/alibabacloud-go/darabonba-openapi/v2/client"
	openapiutil "github.com/alibabacloud-go/openapi-util/service"
	util "github.com/alibabacloud-go/tea-utils/v2/service"
	"github.com/alibabacloud-go/tea/tea"
	credential "github.com/aliyun/credentials-go/credentials"
	"go.uber.org/zap"

	"RostrDating/pkg/logger"
)

type AliyunClient struct {
	client *openapi.Client
}

// NewAliyunClient 凭据从 ALIBABA_CLOUD_ACCESS_KEY_ID / ALIBABA_CLOUD_ACCESS_KEY_SECRET 读取
func NewAliyunClient() (*AliyunClient, error) {
	cred, err := credential.NewCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create aliyun credential: %w", err)
	}

	client, err := openapi.NewClient(&openapi.Config{
		Credential: cred,
		Endpoint:   tea.String("dysmsapi.aliyuncs.com"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create aliyun client: %w", err)
	}

	return &AliyunClient{client: client}, nil
}

func (c *AliyunClient) Provider() string { return "aliyun" }

func apiParams(action string) *openapi.Params {
	return &openapi.Params{
		Action:      tea.String(action),
		Version:     tea.String("2017-05-25"),
		Protocol:    tea.String("HTTPS"),
		Method:      tea.String("POST"),
		AuthType:    tea.String("AK"),
		Style:       tea.String("RPC"),
		Pathname:    tea.String("/"),
		ReqBodyType: tea.String("json"),
		BodyType:    tea.String("json"),
	}
}

func (c *AliyunClient) SendSingle(ctx context.Context, phone, signName, templateCode, templateParam string) error {
	if err := validateBatch([]string{phone}, signName, templateCode, []string{templateParam}); err != nil {
		return err
	}

	return c.call("SendSms", map[string]interface{}{
		"PhoneNumbers":  tea.String(phone),
		"SignName":      tea.String(signName),
		"TemplateCode":  tea.String(templateCode),
		"TemplateParam": tea.String(templateParam),
	}, 1, templateCode)
}

// SendBatch 对应 SendBatchSms：号码、签名、模板参数都以 JSON 数组传递
func (c *AliyunClient) SendBatch(ctx context.Context, phones []string, signName, templateCode string, templateParams []string) error {
	if err := validateBatch(phones, signName, templateCode, templateParams); err != nil {
		return err
	}

	signNames := make([]string, len(phones))
	for i := range signNames {
		signNames[i] = signName
	}

	phonesJSON, err := json.Marshal(phones)
	if err != nil {
		return fmt.Errorf("failed to marshal phone numbers: %w", err)
	}
	signNamesJSON, err := json.Marshal(signNames)
	if err != nil {
		return fmt.Errorf("failed to marshal sign names: %w", err)
	}
	paramsJSON, err := json.Marshal(templateParams)
	if err != nil {
		return fmt.Errorf("failed to marshal template params: %w", err)
	}

	return c.call("SendBatchSms", map[string]interface{}{
		"PhoneNumberJson":   tea.String(string(phonesJSON)),
		"SignNameJson":      tea.String(string(signNamesJSON)),
		"TemplateCode":      tea.String(templateCode),
		"TemplateParamJson": tea.String(string(paramsJSON)),
	}, len(phones), templateCode)
}

func (c *AliyunClient) call(action string, queries map[string]interface{}, count int, templateCode string) error {
	resp, err := c.client.CallApi(apiParams(action), &openapi.OpenApiRequest{
		Query: openapiutil.Query(queries),
	}, &util.RuntimeOptions{})
	if err != nil {
		logger.Logger.Error("Failed to call SMS API",
			zap.String("action", action),
			zap.Int("count", count),
			zap.String("template", templateCode),
			zap.Error(err),
		)
		return fmt.Errorf("failed to call %s: %w", action, err)
	}

	if err := checkResponse(resp); err != nil {
		logger.Logger.Error("SMS API returned error",
			zap.String("action", action),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Info("SMS sent",
		zap.String("action", action),
		zap.Int("count", count),
		zap.String("template", templateCode),
	)
	return nil
}

// checkResponse HTTP 状态码非 200 或 body.Code 非 OK 视为失败
func checkResponse(resp map[string]interface{}) error {
	if statusCode, ok := resp["statusCode"].(int); ok && statusCode != 200 {
		return fmt.Errorf("SMS API error: statusCode=%d", statusCode)
	}

	if resp["body"] == nil {
		return nil
	}

	bodyBytes, err := json.Marshal(resp["body"])
	if err != nil {
		return nil
	}
	var body struct {
		Code    string `json:"Code"`
		Message string `json:"Message"`
	}
	if err := json.Unmarshal(bodyBytes, &body); err != nil {
		return nil
	}
	if body.Code != "" && body.Code != "OK" {
		return fmt.Errorf("SMS send failed: %s - %s", body.Code, body.Message)
	}
	return nil
}
