package errors

import "net/http"

func (d Definition) Error() string {
	return d.Message
}

// Definition 表示业务错误码及默认信息。Status 为对应的 HTTP 状态码。
type Definition struct {
	Code    string
	Message string
	Status  int
}

// WithMessage 复制一份并替换提示信息，错误码不变
func (d Definition) WithMessage(msg string) Definition {
	d.Message = msg
	return d
}

// Is 支持 errors.Is 按错误码比较
func (d Definition) Is(target error) bool {
	t, ok := target.(Definition)
	return ok && t.Code == d.Code
}

// 通用错误。
var (
	InvalidRequest = Definition{Code: "INVALID_REQUEST", Message: "Invalid request", Status: http.StatusBadRequest}
	Unauthorized   = Definition{Code: "UNAUTHORIZED", Message: "Unauthorized", Status: http.StatusUnauthorized}
	RateLimited    = Definition{Code: "RATE_LIMITED", Message: "Too many requests", Status: http.StatusTooManyRequests}
	NotFound       = Definition{Code: "NOT_FOUND", Message: "Resource not found", Status: http.StatusNotFound}
	Internal       = Definition{Code: "INTERNAL_ERROR", Message: "Internal error", Status: http.StatusInternalServerError}
)

// 设备标识错误。
var (
	DeviceIDMissing = Definition{Code: "DEVICE_ID_MISSING", Message: "X-Device-ID header is required", Status: http.StatusBadRequest}
	DeviceIDInvalid = Definition{Code: "DEVICE_ID_INVALID", Message: "X-Device-ID must be a UUID", Status: http.StatusBadRequest}
)

// 引导流程错误。
var (
	OnboardingStepInvalid = Definition{Code: "ONBOARDING_STEP_INVALID", Message: "Onboarding step invalid", Status: http.StatusBadRequest}
	OnboardingResetDenied = Definition{Code: "ONBOARDING_RESET_DENIED", Message: "Onboarding reset is disabled in production", Status: http.StatusForbidden}
)

// 推荐与邀请错误。
var (
	ReferralInvalid    = Definition{Code: "REFERRAL_INVALID", Message: "Referral code is required", Status: http.StatusBadRequest}
	InviteInvalid      = Definition{Code: "INVITE_INVALID", Message: "Circle id is required", Status: http.StatusBadRequest}
	InviteNotFound     = Definition{Code: "INVITE_NOT_FOUND", Message: "No pending invite", Status: http.StatusNotFound}
	InviteUserMismatch = Definition{Code: "INVITE_USER_MISMATCH", Message: "Installation is signed in as another user", Status: http.StatusForbidden}
	SMSNoRecipients    = Definition{Code: "SMS_NO_RECIPIENTS", Message: "No valid phone numbers", Status: http.StatusBadRequest}
	SMSTooManyTargets  = Definition{Code: "SMS_TOO_MANY_RECIPIENTS", Message: "Too many recipients", Status: http.StatusBadRequest}
	SMSSendFailed      = Definition{Code: "SMS_SEND_FAILED", Message: "Failed to send invites", Status: http.StatusBadGateway}
)

// 认证事件错误。
var (
	AuthEventInvalid = Definition{Code: "AUTH_EVENT_INVALID", Message: "Auth event invalid", Status: http.StatusBadRequest}
)

// token 相关错误。
var (
	ErrTokenGeneratorNotInitialized = Definition{Code: "TOKEN_NOT_INITIALIZED", Message: "Token generator not initialized", Status: http.StatusInternalServerError}
	ErrUnexpectedSigningMethod      = Definition{Code: "TOKEN_SIGNING_METHOD", Message: "Unexpected signing method", Status: http.StatusUnauthorized}
	ErrInvalidToken                 = Definition{Code: "TOKEN_INVALID", Message: "Invalid token", Status: http.StatusUnauthorized}
	ErrInvalidTokenClaims           = Definition{Code: "TOKEN_CLAIMS_INVALID", Message: "Invalid token claims", Status: http.StatusUnauthorized}
	ErrUserIDNotFound               = Definition{Code: "TOKEN_SUBJECT_MISSING", Message: "Token has no subject", Status: http.StatusUnauthorized}
)

// Lookup 提供错误码查询能力。
var Lookup = map[string]Definition{
	InvalidRequest.Code:        InvalidRequest,
	Unauthorized.Code:          Unauthorized,
	RateLimited.Code:           RateLimited,
	NotFound.Code:              NotFound,
	Internal.Code:              Internal,
	DeviceIDMissing.Code:       DeviceIDMissing,
	DeviceIDInvalid.Code:       DeviceIDInvalid,
	OnboardingStepInvalid.Code: OnboardingStepInvalid,
	OnboardingResetDenied.Code: OnboardingResetDenied,
	ReferralInvalid.Code:       ReferralInvalid,
	InviteInvalid.Code:         InviteInvalid,
	InviteNotFound.Code:        InviteNotFound,
	InviteUserMismatch.Code:    InviteUserMismatch,
	SMSNoRecipients.Code:       SMSNoRecipients,
	SMSTooManyTargets.Code:     SMSTooManyTargets,
	SMSSendFailed.Code:         SMSSendFailed,
	AuthEventInvalid.Code:      AuthEventInvalid,
}

// Get 根据错误码返回 Definition，若不存在则返回通用错误。
func Get(code string) Definition {
	if def, ok := Lookup[code]; ok {
		return def
	}
	return Definition{Code: code, Message: "Unexpected error", Status: http.StatusInternalServerError}
}
