// Package deeplink 从启动链接、剪贴板和 App Store 跳转参数中提取推荐与圈子邀请。
package deeplink

import (
	"net/url"
	"regexp"
	"strings"

	"RostrDating/internal/model"
)

// 识别的查询参数
const (
	ParamRef       = "ref"
	ParamPhone     = "phone"
	ParamInvitedBy = "invited_by"
	ParamCircle    = "circle"
	ParamUsername  = "username"
)

// InviteHost scheme://invite?circle=... 中的 host
const InviteHost = "invite"

// Invite 捕获到的圈子邀请，时间戳在写入时才确定
type Invite struct {
	CircleID    string `json:"circle_id"`
	InviterName string `json:"inviter_name,omitempty"`
}

// Capture 一次解析的结果，两个字段都可能为空
type Capture struct {
	Referral *model.ReferralData
	Invite   *Invite
}

func (c Capture) Empty() bool {
	return c.Referral == nil && c.Invite == nil
}

var (
	embeddedURL  = regexp.MustCompile(`[a-zA-Z][a-zA-Z0-9+.-]*://[^\s"'<>]+`)
	clipboardKVs = regexp.MustCompile(`(?:^|[?&\s;,])(ref|phone|invited_by|circle|username)=([^&\s;,]+)`)
)

// 句末标点和收尾括号不属于链接或参数值
const trailingPunct = ".,;:!?)]}'\""

func trimTrailing(s string) string {
	return strings.TrimRight(s, trailingPunct)
}

// ParseURL 解析启动链接。接受自定义 scheme 和 http(s)，其余 scheme 忽略
func ParseURL(raw, scheme string) Capture {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Capture{}
	}

	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return Capture{}
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	case strings.ToLower(scheme):
		// rostrdating://invite?... 之外的自定义链接只看推荐参数
		if !strings.EqualFold(u.Host, InviteHost) {
			c := fromValues(u.Query().Get)
			c.Invite = nil
			return c
		}
	default:
		return Capture{}
	}

	return fromValues(u.Query().Get)
}

// ParseClipboard 优先解析文本中嵌入的链接，否则按 key=value 片段匹配
func ParseClipboard(text, scheme string) Capture {
	text = strings.TrimSpace(text)
	if text == "" {
		return Capture{}
	}

	for _, candidate := range embeddedURL.FindAllString(text, -1) {
		if c := ParseURL(trimTrailing(candidate), scheme); !c.Empty() {
			return c
		}
	}

	values := make(map[string]string)
	for _, m := range clipboardKVs.FindAllStringSubmatch(text, -1) {
		if _, seen := values[m[1]]; seen {
			continue
		}
		raw := trimTrailing(m[2])
		if raw == "" {
			continue
		}
		v, err := url.QueryUnescape(raw)
		if err != nil {
			v = raw
		}
		values[m[1]] = v
	}

	return fromValues(func(key string) string { return values[key] })
}

// ParseAppStoreParams App Store 跳转时带回的查询参数
func ParseAppStoreParams(params map[string]string) Capture {
	if len(params) == 0 {
		return Capture{}
	}
	return fromValues(func(key string) string { return params[key] })
}

// BuildInviteURL 生成短信里的圈子邀请链接，ParseURL 可以原样解析回来
func BuildInviteURL(scheme, circleID, inviterName string) string {
	q := url.Values{}
	q.Set(ParamCircle, circleID)
	if inviterName != "" {
		q.Set(ParamInvitedBy, inviterName)
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     InviteHost,
		RawQuery: q.Encode(),
	}
	return u.String()
}

func fromValues(get func(string) string) Capture {
	var c Capture

	ref := strings.TrimSpace(get(ParamRef))
	circle := strings.TrimSpace(get(ParamCircle))
	invitedBy := strings.TrimSpace(get(ParamInvitedBy))

	if ref != "" {
		c.Referral = &model.ReferralData{
			Ref:       ref,
			Phone:     strings.TrimSpace(get(ParamPhone)),
			InvitedBy: invitedBy,
			Circle:    circle,
			Username:  strings.TrimSpace(get(ParamUsername)),
		}
	}

	if circle != "" {
		c.Invite = &Invite{
			CircleID:    circle,
			InviterName: invitedBy,
		}
	}

	return c
}
