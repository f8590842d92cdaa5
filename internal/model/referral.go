package model

// ReferralData 通过推荐链接进入时携带的信息，每个安装同一时间最多一条。
type ReferralData struct {
	Ref       string `json:"ref"`
	Phone     string `json:"phone,omitempty"`
	InvitedBy string `json:"invited_by,omitempty"`
	Circle    string `json:"circle,omitempty"`
	Username  string `json:"username,omitempty"`
}

// NavigationParams 跳转好友邀请页时透传的参数
func (r *ReferralData) NavigationParams() map[string]string {
	if r == nil {
		return nil
	}
	return map[string]string{
		"ref":        r.Ref,
		"phone":      r.Phone,
		"invited_by": r.InvitedBy,
	}
}
