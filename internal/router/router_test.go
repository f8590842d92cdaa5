package router

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"testing"

	hzconfig "github.com/cloudwego/hertz/pkg/common/config"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/cloudwego/hertz/pkg/route"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RostrDating/config"
	"RostrDating/internal/kvstore"
	"RostrDating/internal/middleware"
	"RostrDating/internal/service"
	"RostrDating/pkg/sms"
	"RostrDating/pkg/token"
)

var smsClient = sms.NewMockClient()

func TestMain(m *testing.M) {
	config.Cfg.Environment = "development"
	config.Cfg.JWTSecret = "router-test-secret"
	config.Cfg.EncryptionKey = "0123456789abcdef0123456789abcdef"
	config.Cfg.JWTExpireMinutes = 60
	config.Cfg.RateLimitEnabled = false
	config.Cfg.DeepLinkScheme = "rostrdating"
	config.Cfg.DefaultPhoneRegion = "US"
	config.Cfg.InviteTTLHours = 168
	config.Cfg.SMSMaxRecipients = 20
	config.Cfg.SMSSignName = "Rostr"
	config.Cfg.SMSInviteTemplateCode = "SMS_INVITE"

	if err := token.Init(); err != nil {
		panic(err)
	}
	if err := middleware.Init(); err != nil {
		panic(err)
	}

	os.Exit(m.Run())
}

// newServer 每个测试独立的内存存储
func newServer(t *testing.T) *route.Engine {
	t.Helper()

	service.Init(service.Deps{
		Store:  kvstore.NewMemoryStore(),
		SMS:    smsClient,
		Config: config.Cfg,
	})

	engine := route.NewEngine(hzconfig.NewOptions([]hzconfig.Option{}))
	Register(engine)
	return engine
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error struct {
		Code string `json:"code"`
	} `json:"error"`
}

type client struct {
	t      *testing.T
	engine *route.Engine
	device string
	bearer string
}

func newClient(t *testing.T, engine *route.Engine, device string) *client {
	return &client{t: t, engine: engine, device: device}
}

func (c *client) signIn(userID string) *client {
	access, _, err := token.GenerateAccessToken(userID)
	require.NoError(c.t, err)
	c.bearer = access
	return c
}

func (c *client) do(method, path, body string, out interface{}) (int, string) {
	c.t.Helper()

	headers := []ut.Header{{Key: "Content-Type", Value: "application/json"}}
	if c.device != "" {
		headers = append(headers, ut.Header{Key: middleware.DeviceIDHeader, Value: c.device})
	}
	if c.bearer != "" {
		headers = append(headers, ut.Header{Key: "Authorization", Value: "Bearer " + c.bearer})
	}

	var reqBody *ut.Body
	if body != "" {
		reqBody = &ut.Body{Body: strings.NewReader(body), Len: len(body)}
	}

	w := ut.PerformRequest(c.engine, method, path, reqBody, headers...)
	resp := w.Result()

	var env envelope
	if raw := resp.Body(); len(raw) > 0 {
		require.NoError(c.t, json.Unmarshal(raw, &env))
		if out != nil && len(env.Data) > 0 {
			require.NoError(c.t, json.Unmarshal(env.Data, out))
		}
	}
	return resp.StatusCode(), env.Error.Code
}

const (
	deviceA = "0b5e7f3a-2c1d-4e8f-9a6b-7c3d2e1f0a9b"
	deviceB = "9d8c7b6a-5f4e-4d3c-8b2a-1f0e9d8c7b6a"
)

func TestHealthz(t *testing.T) {
	engine := newServer(t)
	status, _ := newClient(t, engine, "").do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestDeviceHeaderRequired(t *testing.T) {
	engine := newServer(t)

	status, code := newClient(t, engine, "").do(http.MethodGet, "/v1/onboarding/progress", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "DEVICE_ID_MISSING", code)
}

type progress struct {
	HasSeenWelcome    bool     `json:"has_seen_welcome"`
	HasCreatedAccount bool     `json:"has_created_account"`
	Completed         []string `json:"completed"`
	NextStep          *string  `json:"next_step"`
	IsComplete        bool     `json:"is_complete"`
}

func TestOnboardingFlow(t *testing.T) {
	engine := newServer(t)
	c := newClient(t, engine, deviceA)

	var p progress
	status, _ := c.do(http.MethodGet, "/v1/onboarding/progress", "", &p)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, p.NextStep)
	assert.Equal(t, "welcome", *p.NextStep)
	assert.Empty(t, p.Completed)

	status, _ = c.do(http.MethodPost, "/v1/onboarding/steps/welcome/complete", "", &p)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, p.HasSeenWelcome)
	require.NotNil(t, p.NextStep)
	assert.Equal(t, "account", *p.NextStep)

	status, code := c.do(http.MethodPost, "/v1/onboarding/steps/dance/complete", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "ONBOARDING_STEP_INVALID", code)

	// 另一台设备不受影响
	var other progress
	newClient(t, engine, deviceB).do(http.MethodGet, "/v1/onboarding/progress", "", &other)
	assert.False(t, other.HasSeenWelcome)

	status, _ = c.do(http.MethodDelete, "/v1/onboarding", "", &p)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, p.HasSeenWelcome)
}

type referralData struct {
	HasReferral bool `json:"has_referral"`
	Referral    *struct {
		Ref       string `json:"ref"`
		Phone     string `json:"phone"`
		InvitedBy string `json:"invited_by"`
	} `json:"referral"`
}

func TestReferralCRUD(t *testing.T) {
	engine := newServer(t)
	c := newClient(t, engine, deviceA)

	var r referralData
	status, _ := c.do(http.MethodPut, "/v1/referral", `{"ref":"abc","phone":"(201) 555-0123","invited_by":"Ana"}`, &r)
	require.Equal(t, http.StatusOK, status)

	status, _ = c.do(http.MethodGet, "/v1/referral", "", &r)
	require.Equal(t, http.StatusOK, status)
	require.True(t, r.HasReferral)
	assert.Equal(t, "abc", r.Referral.Ref)
	assert.Equal(t, "+12015550123", r.Referral.Phone)

	status, _ = c.do(http.MethodDelete, "/v1/referral", "", nil)
	require.Equal(t, http.StatusNoContent, status)

	r = referralData{}
	c.do(http.MethodGet, "/v1/referral", "", &r)
	assert.False(t, r.HasReferral)
	assert.Nil(t, r.Referral)
}

type launchData struct {
	ReferralCaptured bool     `json:"referral_captured"`
	InviteCaptured   bool     `json:"invite_captured"`
	Sources          []string `json:"sources"`
	ClipboardChecked bool     `json:"clipboard_checked"`
}

type pendingInvite struct {
	HasPendingInvite bool `json:"has_pending_invite"`
	Invite           *struct {
		CircleID    string `json:"circleId"`
		InviterName string `json:"inviterName"`
	} `json:"invite"`
}

func TestLaunchCapturesInviteThenConsume(t *testing.T) {
	engine := newServer(t)
	c := newClient(t, engine, deviceA)

	var l launchData
	status, _ := c.do(http.MethodPost, "/v1/launch", `{"url":"rostrdating://invite?circle=circle-9&invited_by=Ana&ref=r1"}`, &l)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, l.InviteCaptured)
	assert.True(t, l.ReferralCaptured)
	assert.NotEmpty(t, l.Sources)

	var inv pendingInvite
	status, _ = c.do(http.MethodGet, "/v1/invites/pending", "", &inv)
	require.Equal(t, http.StatusOK, status)
	require.True(t, inv.HasPendingInvite)
	assert.Equal(t, "circle-9", inv.Invite.CircleID)
	assert.Equal(t, "Ana", inv.Invite.InviterName)

	// 消费需要登录
	status, code := c.do(http.MethodPost, "/v1/invites/pending/consume", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", code)

	c.signIn("user-1")
	inv = pendingInvite{}
	status, _ = c.do(http.MethodPost, "/v1/invites/pending/consume", "", &inv)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, inv.Invite)
	assert.Equal(t, "circle-9", inv.Invite.CircleID)

	status, code = c.do(http.MethodPost, "/v1/invites/pending/consume", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "INVITE_NOT_FOUND", code)
}

func TestConsumeInviteBoundToAnotherUser(t *testing.T) {
	engine := newServer(t)
	c := newClient(t, engine, deviceA)

	status, _ := c.do(http.MethodPost, "/v1/invites/pending", `{"circle_id":"circle-3","inviter_name":"Sam"}`, nil)
	require.Equal(t, http.StatusOK, status)

	c.signIn("owner")
	status, _ = c.do(http.MethodPost, "/v1/auth/events", `{"event":"SIGNED_IN"}`, nil)
	require.Equal(t, http.StatusOK, status)

	c.signIn("someone-else")
	status, code := c.do(http.MethodPost, "/v1/invites/pending/consume", "", nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "INVITE_USER_MISMATCH", code)

	c.signIn("owner")
	var inv pendingInvite
	status, _ = c.do(http.MethodPost, "/v1/invites/pending/consume", "", &inv)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, inv.Invite)
	assert.Equal(t, "circle-3", inv.Invite.CircleID)
}

func TestStorePendingInviteRequiresCircle(t *testing.T) {
	engine := newServer(t)
	c := newClient(t, engine, deviceA)

	status, code := c.do(http.MethodPost, "/v1/invites/pending", `{"circle_id":"  "}`, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVITE_INVALID", code)
}

type decision struct {
	Action string            `json:"action"`
	Route  string            `json:"route"`
	Params map[string]string `json:"params"`
}

func TestNavigationDecide(t *testing.T) {
	engine := newServer(t)
	c := newClient(t, engine, deviceA)

	var d decision
	status, _ := c.do(http.MethodPost, "/v1/navigation/decide", `{"is_auth_loading":true}`, &d)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "wait", d.Action)

	d = decision{}
	c.do(http.MethodPost, "/v1/navigation/decide", `{"route_group":"(tabs)"}`, &d)
	assert.Equal(t, "redirect", d.Action)
	assert.Equal(t, "/(auth)/welcome", d.Route)

	c.do(http.MethodPut, "/v1/referral", `{"ref":"abc","invited_by":"Ana"}`, nil)
	c.signIn("user-1")

	d = decision{}
	c.do(http.MethodPost, "/v1/navigation/decide", `{"route_group":"(auth)","screen":"welcome"}`, &d)
	assert.Equal(t, "redirect", d.Action)
	assert.Equal(t, "/(auth)/friend-invite", d.Route)
	assert.Equal(t, "abc", d.Params["ref"])

	// 推荐已被消费，再次判定进入主界面
	d = decision{}
	c.do(http.MethodPost, "/v1/navigation/decide", `{"route_group":"(auth)","screen":"welcome"}`, &d)
	assert.Equal(t, "redirect", d.Action)
	assert.Equal(t, "/(tabs)", d.Route)
}

type authEvent struct {
	Event    string `json:"event"`
	UserID   string `json:"user_id"`
	NextStep string `json:"next_step"`
}

func TestAuthEvents(t *testing.T) {
	engine := newServer(t)
	c := newClient(t, engine, deviceA)

	status, _ := c.do(http.MethodPost, "/v1/auth/events", `{"event":"SIGNED_IN"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	c.signIn("user-2")

	var ev authEvent
	status, _ = c.do(http.MethodPost, "/v1/auth/events", `{"event":"SIGNED_IN"}`, &ev)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "user-2", ev.UserID)
	assert.Equal(t, "welcome", ev.NextStep)

	var p progress
	c.do(http.MethodGet, "/v1/onboarding/progress", "", &p)
	assert.True(t, p.HasCreatedAccount)

	status, code := c.do(http.MethodPost, "/v1/auth/events", `{"event":"TOKEN_REFRESHED"}`, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "AUTH_EVENT_INVALID", code)
}

type smsResult struct {
	InviteURL string   `json:"invite_url"`
	Sent      []string `json:"sent"`
	Rejected  []string `json:"rejected"`
}

func TestSendCircleInvites(t *testing.T) {
	engine := newServer(t)
	c := newClient(t, engine, deviceA).signIn("user-3")

	var res smsResult
	status, _ := c.do(http.MethodPost, "/v1/circles/circle-5/invites/sms",
		`{"inviter_name":"Ana","phones":["+12015550123","555"]}`, &res)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, res.Sent, 1)
	assert.Equal(t, []string{"555"}, res.Rejected)
	assert.Contains(t, res.InviteURL, "circle=circle-5")

	var p struct {
		HasInvitedFriends bool `json:"has_invited_friends"`
	}
	c.do(http.MethodGet, "/v1/onboarding/progress", "", &p)
	assert.True(t, p.HasInvitedFriends)

	status, code := c.do(http.MethodPost, "/v1/circles/circle-5/invites/sms", `{"phones":["nope"]}`, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "SMS_NO_RECIPIENTS", code)
}
