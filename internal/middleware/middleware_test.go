package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cloudwego/hertz/pkg/app"
	hzconfig "github.com/cloudwego/hertz/pkg/common/config"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/cloudwego/hertz/pkg/route"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RostrDating/config"
	"RostrDating/pkg/response"
	"RostrDating/pkg/token"
)

const testDeviceID = "6f1c2a8e-4b7d-4f0e-9a57-2d9c3e1b5a40"

func TestMain(m *testing.M) {
	config.Cfg.JWTSecret = "middleware-test-secret"
	config.Cfg.JWTExpireMinutes = 60
	if err := token.Init(); err != nil {
		panic(err)
	}
	if err := Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func newEngine() *route.Engine {
	return route.NewEngine(hzconfig.NewOptions([]hzconfig.Option{}))
}

func echoIdentity(ctx context.Context, c *app.RequestContext) {
	device, _ := GetDeviceID(ctx, c)
	user, _ := GetUserID(ctx, c)
	response.Success(ctx, c, map[string]string{"device": device, "user": user})
}

type identityBody struct {
	Data struct {
		Device string `json:"device"`
		User   string `json:"user"`
	} `json:"data"`
}

type errorBody struct {
	Error struct {
		Code string `json:"code"`
	} `json:"error"`
}

func decode(t *testing.T, w *ut.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Result().Body(), v))
}

func TestDeviceMiddleware(t *testing.T) {
	engine := newEngine()
	engine.GET("/ping", DeviceMiddleware(), echoIdentity)

	t.Run("missing header", func(t *testing.T) {
		w := ut.PerformRequest(engine, http.MethodGet, "/ping", nil)
		assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode())

		var body errorBody
		decode(t, w, &body)
		assert.Equal(t, "DEVICE_ID_MISSING", body.Error.Code)
	})

	t.Run("not a uuid", func(t *testing.T) {
		w := ut.PerformRequest(engine, http.MethodGet, "/ping", nil,
			ut.Header{Key: DeviceIDHeader, Value: "not-a-uuid"})
		assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode())

		var body errorBody
		decode(t, w, &body)
		assert.Equal(t, "DEVICE_ID_INVALID", body.Error.Code)
	})

	t.Run("uppercase uuid is normalized", func(t *testing.T) {
		w := ut.PerformRequest(engine, http.MethodGet, "/ping", nil,
			ut.Header{Key: DeviceIDHeader, Value: "6F1C2A8E-4B7D-4F0E-9A57-2D9C3E1B5A40"})
		assert.Equal(t, http.StatusOK, w.Result().StatusCode())

		var body identityBody
		decode(t, w, &body)
		assert.Equal(t, testDeviceID, body.Data.Device)
	})
}

func TestAuthMiddleware(t *testing.T) {
	engine := newEngine()
	engine.GET("/me", AuthMiddleware(), echoIdentity)

	t.Run("no token", func(t *testing.T) {
		w := ut.PerformRequest(engine, http.MethodGet, "/me", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Result().StatusCode())

		var body errorBody
		decode(t, w, &body)
		assert.Equal(t, "UNAUTHORIZED", body.Error.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		access, _, err := token.GenerateAccessToken("user-42")
		require.NoError(t, err)

		w := ut.PerformRequest(engine, http.MethodGet, "/me", nil,
			ut.Header{Key: "Authorization", Value: "Bearer " + access})
		assert.Equal(t, http.StatusOK, w.Result().StatusCode())

		var body identityBody
		decode(t, w, &body)
		assert.Equal(t, "user-42", body.Data.User)
	})
}

func TestOptionalAuthMiddleware(t *testing.T) {
	engine := newEngine()
	engine.GET("/maybe", OptionalAuthMiddleware(), echoIdentity)

	access, _, err := token.GenerateAccessToken("user-7")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"anonymous", "", ""},
		{"garbage token is ignored", "Bearer abc.def.ghi", ""},
		{"valid token", "Bearer " + access, "user-7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var headers []ut.Header
			if tt.header != "" {
				headers = append(headers, ut.Header{Key: "Authorization", Value: tt.header})
			}

			w := ut.PerformRequest(engine, http.MethodGet, "/maybe", nil, headers...)
			assert.Equal(t, http.StatusOK, w.Result().StatusCode())

			var body identityBody
			decode(t, w, &body)
			assert.Equal(t, tt.want, body.Data.User)
		})
	}
}

func TestRateLimiterAllow(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	limiter := NewRateLimiter(client, RateLimitConfig{Window: 60, MaxRequests: 2, KeyPrefix: "rate:test", BlockDuration: 30})
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 2; i++ {
		ok, count, err := limiter.Allow(ctx, "k", now.Add(time.Duration(i)*time.Second))
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, i+1, count)
	}

	ok, _, err := limiter.Allow(ctx, "k", now.Add(2*time.Second))
	require.NoError(t, err)
	assert.False(t, ok)

	// 窗口滑过之后旧记录被清理
	ok, _, err = limiter.Allow(ctx, "k", now.Add(2*time.Minute))
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, limiter.Block(ctx, "k"))
	blocked, err := limiter.IsBlocked(ctx, "k")
	require.NoError(t, err)
	assert.True(t, blocked)
}

func TestRateLimitMiddleware(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	cfg := RateLimitConfig{Window: 60, MaxRequests: 2, KeyPrefix: "rate:test", ByIP: true, BlockDuration: 300, ErrorMessage: "slow down"}

	engine := newEngine()
	engine.GET("/limited", RateLimitMiddlewareWithClient(client, cfg), echoIdentity)

	for i := 0; i < 2; i++ {
		w := ut.PerformRequest(engine, http.MethodGet, "/limited", nil)
		assert.Equal(t, http.StatusOK, w.Result().StatusCode())
	}

	w := ut.PerformRequest(engine, http.MethodGet, "/limited", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Result().StatusCode())

	var body errorBody
	decode(t, w, &body)
	assert.Equal(t, "RATE_LIMITED", body.Error.Code)

	// 封禁期间即使窗口已过也继续拒绝
	w = ut.PerformRequest(engine, http.MethodGet, "/limited", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Result().StatusCode())
}

func TestRateLimitMiddlewareFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()
	mr.Close()

	engine := newEngine()
	engine.GET("/limited", RateLimitMiddlewareWithClient(client, LaunchRateLimitConfig), echoIdentity)

	w := ut.PerformRequest(engine, http.MethodGet, "/limited", nil)
	assert.Equal(t, http.StatusOK, w.Result().StatusCode())
}
