package middleware

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/hertz-contrib/jwt"
	"go.uber.org/zap"

	"RostrDating/pkg/errors"
	"RostrDating/pkg/logger"
	"RostrDating/pkg/response"
	"RostrDating/pkg/token"
)

const (
	IdentityKey = token.IdentityKey
)

var (
	authMiddleware *jwt.HertzJWTMiddleware
)

func initAuthMiddleware() error {
	sharedGenerator := token.GetGenerator()
	if sharedGenerator == nil {
		return fmt.Errorf("token generator not initialized, call token.Init() first")
	}

	mw, err := jwt.New(&jwt.HertzJWTMiddleware{
		Realm:       sharedGenerator.Realm,
		Key:         sharedGenerator.Key,
		Timeout:     sharedGenerator.Timeout,
		IdentityKey: sharedGenerator.IdentityKey,
		TimeFunc:    sharedGenerator.TimeFunc,

		IdentityHandler: func(ctx context.Context, c *app.RequestContext) interface{} {
			claims := jwt.ExtractClaims(ctx, c)
			uid, ok := claims[IdentityKey].(string)
			if !ok || uid == "" {
				return nil
			}
			return uid
		},

		// 没有 sub 的 token 不放行
		Authorizator: func(data interface{}, ctx context.Context, c *app.RequestContext) bool {
			uid, ok := data.(string)
			return ok && uid != ""
		},

		Unauthorized: func(ctx context.Context, c *app.RequestContext, code int, message string) {
			response.Error(ctx, c, errors.Unauthorized.WithMessage(message))
		},

		TokenLookup:   "header: Authorization",
		TokenHeadName: "Bearer",
	})
	if err != nil {
		return fmt.Errorf("failed to create auth middleware: %w", err)
	}

	authMiddleware = mw
	return nil
}

// AuthMiddleware 必须携带有效 token
func AuthMiddleware() app.HandlerFunc {
	if authMiddleware == nil {
		panic("AuthMiddleware not initialized, call Init() first")
	}
	return authMiddleware.MiddlewareFunc()
}

// OptionalAuthMiddleware 有合法 token 时写入用户 ID，否则按未登录继续
func OptionalAuthMiddleware() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		header := strings.TrimSpace(string(c.GetHeader("Authorization")))
		if tokenString, ok := strings.CutPrefix(header, "Bearer "); ok && tokenString != "" {
			uid, err := token.ParseAccessToken(strings.TrimSpace(tokenString))
			if err == nil {
				c.Set(IdentityKey, uid)
			} else {
				logger.Logger.Debug("Ignoring invalid bearer token", zap.Error(err))
			}
		}

		c.Next(ctx)
	}
}

// GetUserID 托管后端签发的用户 ID（token 的 sub）
func GetUserID(ctx context.Context, c *app.RequestContext) (string, bool) {
	userID, exists := c.Get(IdentityKey)
	if !exists {
		return "", false
	}

	id, ok := userID.(string)
	if !ok || id == "" {
		return "", false
	}

	return id, true
}
