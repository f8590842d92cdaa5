package model

// OnboardingStep 引导流程中的一个里程碑。
type OnboardingStep string

const (
	StepWelcome    OnboardingStep = "welcome"
	StepAccount    OnboardingStep = "account"
	StepCircle     OnboardingStep = "circle"
	StepRoster     OnboardingStep = "roster"
	StepFriends    OnboardingStep = "friends"
	StepCoachMarks OnboardingStep = "coach_marks"
)

// OnboardingSteps 按优先级排列：先欢迎页，再账号、圈子、名单，最后才邀请好友和操作指引。
// 调整顺序或新增步骤只需要改这里。
var OnboardingSteps = []OnboardingStep{
	StepWelcome,
	StepAccount,
	StepCircle,
	StepRoster,
	StepFriends,
	StepCoachMarks,
}

// ParseOnboardingStep 校验步骤名称
func ParseOnboardingStep(s string) (OnboardingStep, bool) {
	for _, step := range OnboardingSteps {
		if string(step) == s {
			return step, true
		}
	}
	return "", false
}

// OnboardingProgress 已完成步骤的集合，未出现的步骤视为未完成。
type OnboardingProgress struct {
	completed map[OnboardingStep]bool
}

// NewOnboardingProgress 以给定的已完成步骤构造进度
func NewOnboardingProgress(done ...OnboardingStep) OnboardingProgress {
	p := OnboardingProgress{completed: make(map[OnboardingStep]bool, len(OnboardingSteps))}
	for _, step := range done {
		p.completed[step] = true
	}
	return p
}

func (p OnboardingProgress) Has(step OnboardingStep) bool {
	return p.completed[step]
}

// Completed 按优先级顺序返回已完成步骤
func (p OnboardingProgress) Completed() []OnboardingStep {
	out := make([]OnboardingStep, 0, len(OnboardingSteps))
	for _, step := range OnboardingSteps {
		if p.completed[step] {
			out = append(out, step)
		}
	}
	return out
}

func (p OnboardingProgress) IsComplete() bool {
	_, pending := p.NextStep()
	return !pending
}

// NextStep 返回第一个未完成的步骤；全部完成时 ok 为 false
func (p OnboardingProgress) NextStep() (OnboardingStep, bool) {
	for _, step := range OnboardingSteps {
		if !p.completed[step] {
			return step, true
		}
	}
	return "", false
}

// OnboardingFlags 客户端沿用的六个布尔字段
type OnboardingFlags struct {
	HasSeenWelcome    bool `json:"has_seen_welcome"`
	HasCreatedAccount bool `json:"has_created_account"`
	HasCreatedCircle  bool `json:"has_created_circle"`
	HasAddedRoster    bool `json:"has_added_roster"`
	HasInvitedFriends bool `json:"has_invited_friends"`
	HasSeenCoachMarks bool `json:"has_seen_coach_marks"`
}

func (p OnboardingProgress) Flags() OnboardingFlags {
	return OnboardingFlags{
		HasSeenWelcome:    p.Has(StepWelcome),
		HasCreatedAccount: p.Has(StepAccount),
		HasCreatedCircle:  p.Has(StepCircle),
		HasAddedRoster:    p.Has(StepRoster),
		HasInvitedFriends: p.Has(StepFriends),
		HasSeenCoachMarks: p.Has(StepCoachMarks),
	}
}

// OnboardingProgressData 表示引导进度接口的响应数据。
type OnboardingProgressData struct {
	OnboardingFlags
	Completed  []OnboardingStep `json:"completed"`
	NextStep   *OnboardingStep  `json:"next_step"`
	IsComplete bool             `json:"is_complete"`
}

func (p OnboardingProgress) ToData() OnboardingProgressData {
	data := OnboardingProgressData{
		OnboardingFlags: p.Flags(),
		Completed:       p.Completed(),
		IsComplete:      p.IsComplete(),
	}
	if next, ok := p.NextStep(); ok {
		data.NextStep = &next
	}
	return data
}
