package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics 引导与邀请流程的业务指标
type OTelMetrics struct {
	OnboardingStepMarked   metric.Int64Counter
	OnboardingCompleted    metric.Int64Counter
	ReferralCaptured       metric.Int64Counter
	ReferralConsumed       metric.Int64Counter
	InviteCaptured         metric.Int64Counter
	InviteExpired          metric.Int64Counter
	InviteConsumed         metric.Int64Counter
	NavigationDecisions    metric.Int64Counter
	SMSInvitesSent         metric.Int64Counter
	StoreFailuresSwallowed metric.Int64Counter
}

var (
	// 全局指标实例，未初始化时所有 Record* 都是空操作
	metrics *OTelMetrics
	meter   = otel.Meter("rostrdating")
)

// InitMetrics 初始化 OpenTelemetry 指标，需在 MeterProvider 设置之后调用
func InitMetrics() error {
	m := &OTelMetrics{}

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
		unit string
	}{
		{&m.OnboardingStepMarked, "onboarding_step_marked_total", "Onboarding steps newly marked complete", "{step}"},
		{&m.OnboardingCompleted, "onboarding_completed_total", "Installations that finished onboarding", "{device}"},
		{&m.ReferralCaptured, "referral_captured_total", "Referral records captured", "{referral}"},
		{&m.ReferralConsumed, "referral_consumed_total", "Referral records consumed by the friend-invite redirect", "{referral}"},
		{&m.InviteCaptured, "invite_captured_total", "Pending circle invites captured", "{invite}"},
		{&m.InviteExpired, "invite_expired_total", "Pending circle invites dropped on read after expiry", "{invite}"},
		{&m.InviteConsumed, "invite_consumed_total", "Pending circle invites consumed", "{invite}"},
		{&m.NavigationDecisions, "navigation_decisions_total", "Navigation gate decisions", "{decision}"},
		{&m.SMSInvitesSent, "sms_invites_sent_total", "Circle invite SMS messages sent", "{sms}"},
		{&m.StoreFailuresSwallowed, "store_failures_swallowed_total", "Storage failures treated as absent values", "{error}"},
	}

	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.desc), metric.WithUnit(c.unit))
		if err != nil {
			return err
		}
		*c.dst = counter
	}

	metrics = m
	return nil
}

// GetMetrics 获取全局指标实例
func GetMetrics() *OTelMetrics {
	return metrics
}

func add(ctx context.Context, pick func(*OTelMetrics) metric.Int64Counter, n int64, attrs ...attribute.KeyValue) {
	if metrics == nil {
		return
	}
	pick(metrics).Add(ctx, n, metric.WithAttributes(attrs...))
}

// RecordStepMarked 记录某个引导步骤首次完成
func RecordStepMarked(ctx context.Context, step string) {
	add(ctx, func(m *OTelMetrics) metric.Int64Counter { return m.OnboardingStepMarked }, 1, attribute.String("step", step))
}

func RecordOnboardingCompleted(ctx context.Context) {
	add(ctx, func(m *OTelMetrics) metric.Int64Counter { return m.OnboardingCompleted }, 1)
}

// RecordReferralCaptured source: url, clipboard, app_store, api
func RecordReferralCaptured(ctx context.Context, source string) {
	add(ctx, func(m *OTelMetrics) metric.Int64Counter { return m.ReferralCaptured }, 1, attribute.String("source", source))
}

func RecordReferralConsumed(ctx context.Context) {
	add(ctx, func(m *OTelMetrics) metric.Int64Counter { return m.ReferralConsumed }, 1)
}

func RecordInviteCaptured(ctx context.Context, source string) {
	add(ctx, func(m *OTelMetrics) metric.Int64Counter { return m.InviteCaptured }, 1, attribute.String("source", source))
}

func RecordInviteExpired(ctx context.Context) {
	add(ctx, func(m *OTelMetrics) metric.Int64Counter { return m.InviteExpired }, 1)
}

func RecordInviteConsumed(ctx context.Context) {
	add(ctx, func(m *OTelMetrics) metric.Int64Counter { return m.InviteConsumed }, 1)
}

// RecordNavigationDecision action: wait, redirect, none
func RecordNavigationDecision(ctx context.Context, action, route string) {
	add(ctx, func(m *OTelMetrics) metric.Int64Counter { return m.NavigationDecisions }, 1,
		attribute.String("action", action),
		attribute.String("route", route),
	)
}

func RecordSMSInvitesSent(ctx context.Context, provider string, count int) {
	add(ctx, func(m *OTelMetrics) metric.Int64Counter { return m.SMSInvitesSent }, int64(count), attribute.String("provider", provider))
}

// RecordStoreFailure 存储失败被吞掉时计数，便于发现持续的存储故障
func RecordStoreFailure(ctx context.Context, component, operation string) {
	add(ctx, func(m *OTelMetrics) metric.Int64Counter { return m.StoreFailuresSwallowed }, 1,
		attribute.String("component", component),
		attribute.String("operation", operation),
	)
}
