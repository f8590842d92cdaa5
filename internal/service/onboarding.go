package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"RostrDating/internal/kvstore"
	"RostrDating/internal/model"
	"RostrDating/pkg/errors"
	"RostrDating/pkg/metrics"
)

// OnboardingService 六个引导标记的读写。存储异常时一律按"未完成"处理，宁可让用户再看一次引导
type OnboardingService struct {
	base
	store kvstore.Store
}

func NewOnboardingService(store kvstore.Store, opts ...Option) *OnboardingService {
	return &OnboardingService{
		base:  newBase("onboarding", opts),
		store: store,
	}
}

// GetProgress 一次批量读取全部标记，读不到的按 false
func (s *OnboardingService) GetProgress(ctx context.Context, deviceID string) model.OnboardingProgress {
	keys := make([]string, len(model.OnboardingSteps))
	for i, step := range model.OnboardingSteps {
		keys[i] = onboardingKey(deviceID, step)
	}

	values, err := s.store.MGet(ctx, keys...)
	if err != nil {
		s.storeFailure(ctx, "get_progress", deviceID, err)
		return model.NewOnboardingProgress()
	}

	done := make([]model.OnboardingStep, 0, len(keys))
	for i, step := range model.OnboardingSteps {
		if values[keys[i]] == kvstore.True {
			done = append(done, step)
		}
	}

	return model.NewOnboardingProgress(done...)
}

// MarkStep 幂等，已完成时不写；写失败只记录。只有步骤名非法才返回错误
func (s *OnboardingService) MarkStep(ctx context.Context, deviceID string, step model.OnboardingStep) error {
	step, ok := model.ParseOnboardingStep(strings.TrimSpace(string(step)))
	if !ok {
		return errors.OnboardingStepInvalid
	}

	progress := s.GetProgress(ctx, deviceID)
	if progress.Has(step) {
		return nil
	}

	if err := s.store.Set(ctx, onboardingKey(deviceID, step), kvstore.True, 0); err != nil {
		s.storeFailure(ctx, "mark_step", deviceID, err)
		return nil
	}

	metrics.RecordStepMarked(ctx, string(step))
	s.log.Debug("Onboarding step marked",
		zap.String("device_id", deviceID),
		zap.String("step", string(step)),
	)

	after := model.NewOnboardingProgress(append(progress.Completed(), step)...)
	if after.IsComplete() {
		metrics.RecordOnboardingCompleted(ctx)
		s.publish(ctx, model.EventOnboardingCompleted, deviceID, "", map[string]interface{}{
			"last_step": string(step),
		})
	}

	return nil
}

func (s *OnboardingService) mark(ctx context.Context, deviceID string, step model.OnboardingStep) {
	// 内置步骤不会校验失败
	_ = s.MarkStep(ctx, deviceID, step)
}

func (s *OnboardingService) MarkWelcomeSeen(ctx context.Context, deviceID string) {
	s.mark(ctx, deviceID, model.StepWelcome)
}

func (s *OnboardingService) MarkAccountCreated(ctx context.Context, deviceID string) {
	s.mark(ctx, deviceID, model.StepAccount)
}

func (s *OnboardingService) MarkCircleCreated(ctx context.Context, deviceID string) {
	s.mark(ctx, deviceID, model.StepCircle)
}

func (s *OnboardingService) MarkRosterAdded(ctx context.Context, deviceID string) {
	s.mark(ctx, deviceID, model.StepRoster)
}

func (s *OnboardingService) MarkFriendsInvited(ctx context.Context, deviceID string) {
	s.mark(ctx, deviceID, model.StepFriends)
}

func (s *OnboardingService) MarkCoachMarksSeen(ctx context.Context, deviceID string) {
	s.mark(ctx, deviceID, model.StepCoachMarks)
}

func (s *OnboardingService) IsOnboardingComplete(ctx context.Context, deviceID string) bool {
	return s.GetProgress(ctx, deviceID).IsComplete()
}

// GetNextStep 全部完成时 ok 为 false
func (s *OnboardingService) GetNextStep(ctx context.Context, deviceID string) (model.OnboardingStep, bool) {
	return s.GetProgress(ctx, deviceID).NextStep()
}

// ResetOnboarding 清空全部标记，仅供测试环境使用
func (s *OnboardingService) ResetOnboarding(ctx context.Context, deviceID string) {
	keys := make([]string, len(model.OnboardingSteps))
	for i, step := range model.OnboardingSteps {
		keys[i] = onboardingKey(deviceID, step)
	}

	if err := s.store.Del(ctx, keys...); err != nil {
		s.storeFailure(ctx, "reset", deviceID, err)
		return
	}

	s.log.Info("Onboarding reset", zap.String("device_id", deviceID))
}
