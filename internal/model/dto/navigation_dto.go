package dto

// NavigationDecideRequest POST /v1/navigation/decide
// 认证状态以请求头中的 token 为准，is_auth_loading 由客户端上报
type NavigationDecideRequest struct {
	IsAuthLoading bool   `json:"is_auth_loading"`
	RouteGroup    string `json:"route_group"`
	Screen        string `json:"screen"`
}

// AuthEventRequest POST /v1/auth/events
type AuthEventRequest struct {
	Event string `json:"event"`
}

// AuthEventData 认证事件处理结果
type AuthEventData struct {
	Event    string `json:"event"`
	UserID   string `json:"user_id"`
	NextStep string `json:"next_step,omitempty"`
}
