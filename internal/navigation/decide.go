// Package navigation 根据登录状态和推荐信息决定客户端下一跳路由。
package navigation

import "RostrDating/internal/model"

// 路由分组与页面
const (
	RouteGroupAuth = "(auth)"
	RouteGroupTabs = "(tabs)"

	ScreenFriendInvite = "friend-invite"

	RouteWelcome      = "/(auth)/welcome"
	RouteFriendInvite = "/(auth)/friend-invite"
	RouteMain         = "/(tabs)"
)

type Action string

const (
	ActionWait     Action = "wait"
	ActionRedirect Action = "redirect"
	ActionNone     Action = "none"
)

// State 决策输入。Referral 为 nil 表示没有未消费的推荐
type State struct {
	IsAuthenticated bool
	IsAuthLoading   bool
	RouteGroup      string
	Screen          string
	Referral        *model.ReferralData
}

type Decision struct {
	Action Action            `json:"action"`
	Route  string            `json:"route,omitempty"`
	Params map[string]string `json:"params,omitempty"`
}

// ConsumesReferral 跳转好友邀请页即视为推荐已被消费
func (d Decision) ConsumesReferral() bool {
	return d.Action == ActionRedirect && d.Route == RouteFriendInvite
}

// Decide 纯函数，不读存储
func Decide(s State) Decision {
	if s.IsAuthLoading {
		return Decision{Action: ActionWait}
	}

	inAuthGroup := s.RouteGroup == RouteGroupAuth

	if !s.IsAuthenticated {
		if inAuthGroup {
			return Decision{Action: ActionNone}
		}
		// 有推荐时仍先去欢迎页，参数带过去供注册页使用
		return Decision{
			Action: ActionRedirect,
			Route:  RouteWelcome,
			Params: s.Referral.NavigationParams(),
		}
	}

	if inAuthGroup && s.Screen != ScreenFriendInvite {
		if s.Referral != nil {
			return Decision{
				Action: ActionRedirect,
				Route:  RouteFriendInvite,
				Params: s.Referral.NavigationParams(),
			}
		}
		return Decision{Action: ActionRedirect, Route: RouteMain}
	}

	return Decision{Action: ActionNone}
}
