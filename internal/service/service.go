package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"RostrDating/config"
	"RostrDating/internal/kvstore"
	"RostrDating/internal/queue"
	"RostrDating/pkg/logger"
	"RostrDating/pkg/metrics"
	"RostrDating/pkg/sms"
)

type options struct {
	log       *zap.Logger
	publisher queue.Publisher
	now       func() time.Time
}

type Option func(*options)

func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.log = l }
}

func WithPublisher(p queue.Publisher) Option {
	return func(o *options) { o.publisher = p }
}

// WithClock 测试中固定时间
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// base 各服务共用的日志、事件和时钟
type base struct {
	component string
	log       *zap.Logger
	publisher queue.Publisher
	now       func() time.Time
}

func newBase(component string, opts []Option) base {
	o := options{log: logger.Logger, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.publisher == nil {
		o.publisher = queue.NewLogPublisher(o.log)
	}

	return base{
		component: component,
		log:       o.log.With(zap.String("component", component)),
		publisher: o.publisher,
		now:       o.now,
	}
}

// storeFailure 存储错误只记录，调用方按"不存在"继续
func (b base) storeFailure(ctx context.Context, op, deviceID string, err error) {
	b.log.Warn("Store operation failed, falling back to default",
		zap.String("operation", op),
		zap.String("device_id", deviceID),
		zap.Error(err),
	)
	metrics.RecordStoreFailure(ctx, b.component, op)
}

// publish 事件发布失败不影响主流程
func (b base) publish(ctx context.Context, eventType, deviceID, userID string, payload map[string]interface{}) {
	msg := queue.NewEvent(eventType, deviceID, userID, payload, b.now())
	if err := b.publisher.Publish(ctx, msg); err != nil {
		b.log.Warn("Failed to publish event",
			zap.String("event_type", eventType),
			zap.String("device_id", deviceID),
			zap.Error(err),
		)
	}
}

// Deps 组装服务所需的外部依赖
type Deps struct {
	Store     kvstore.Store
	Publisher queue.Publisher
	SMS       sms.Client
	Logger    *zap.Logger
	Config    config.Config
	Now       func() time.Time
}

// Services 一次组装出来的全部服务，互相之间按需引用
type Services struct {
	Onboarding   *OnboardingService
	Referral     *ReferralService
	Invite       *InviteService
	Launch       *LaunchService
	Navigation   *NavigationService
	Auth         *AuthService
	CircleInvite *CircleInviteService
}

func New(d Deps) *Services {
	opts := []Option{WithPublisher(d.Publisher)}
	if d.Logger != nil {
		opts = append(opts, WithLogger(d.Logger))
	}
	if d.Now != nil {
		opts = append(opts, WithClock(d.Now))
	}

	cfg := d.Config
	ttl := time.Duration(cfg.InviteTTLHours) * time.Hour

	onboarding := NewOnboardingService(d.Store, opts...)
	referral := NewReferralService(d.Store, cfg.DefaultPhoneRegion, opts...)
	invite := NewInviteService(d.Store, ttl, opts...)

	return &Services{
		Onboarding: onboarding,
		Referral:   referral,
		Invite:     invite,
		Launch:     NewLaunchService(d.Store, referral, invite, cfg.DeepLinkScheme, opts...),
		Navigation: NewNavigationService(referral, opts...),
		Auth:       NewAuthService(d.Store, onboarding, opts...),
		CircleInvite: NewCircleInviteService(d.SMS, onboarding, CircleInviteConfig{
			Scheme:        cfg.DeepLinkScheme,
			SignName:      cfg.SMSSignName,
			TemplateCode:  cfg.SMSInviteTemplateCode,
			MaxRecipients: cfg.SMSMaxRecipients,
			PhoneRegion:   cfg.DefaultPhoneRegion,
		}, opts...),
	}
}

var registry *Services

// Init 在 main 中调用一次，handler 通过下面的访问函数取服务
func Init(d Deps) {
	registry = New(d)
}

func mustRegistry() *Services {
	if registry == nil {
		panic(fmt.Errorf("service registry not initialized, call service.Init() first"))
	}
	return registry
}

func Onboarding() *OnboardingService     { return mustRegistry().Onboarding }
func Referral() *ReferralService         { return mustRegistry().Referral }
func Invite() *InviteService             { return mustRegistry().Invite }
func Launch() *LaunchService             { return mustRegistry().Launch }
func Navigation() *NavigationService     { return mustRegistry().Navigation }
func Auth() *AuthService                 { return mustRegistry().Auth }
func CircleInvite() *CircleInviteService { return mustRegistry().CircleInvite }
