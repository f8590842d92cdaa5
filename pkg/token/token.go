package token

import (
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/hertz-contrib/jwt"

	"RostrDating/config"
	"RostrDating/pkg/errors"
)

// 托管后端签发的 access token 以 sub 作为用户标识
const (
	IdentityKey = "sub"
)

var (
	// 这个实例会被 middleware 和 token 包共同使用
	sharedGenerator *jwt.HertzJWTMiddleware
)

func Init() error {
	var err error
	sharedGenerator, err = jwt.New(&jwt.HertzJWTMiddleware{
		Realm:       "RostrDating API",
		Key:         []byte(config.Cfg.JWTSecret),
		Timeout:     time.Duration(config.Cfg.JWTExpireMinutes) * time.Minute,
		IdentityKey: IdentityKey,
		TimeFunc:    time.Now,
	})

	if err != nil {
		return fmt.Errorf("failed to initialize token generator: %w", err)
	}

	return nil
}

// GetGenerator 获取共享的 token 配置（供 middleware 使用）
func GetGenerator() *jwt.HertzJWTMiddleware {
	return sharedGenerator
}

// GenerateAccessToken 签发与托管后端格式一致的 access token，本地联调和测试使用
func GenerateAccessToken(userID string) (accessToken string, expiresIn int, err error) {
	if sharedGenerator == nil {
		return "", 0, errors.ErrTokenGeneratorNotInitialized
	}

	now := time.Now()
	expiresAt := now.Add(sharedGenerator.Timeout)

	claims := jwtv5.MapClaims{
		IdentityKey: userID,
		"role":      "authenticated",
		"iat":       now.Unix(),
		"exp":       expiresAt.Unix(),
	}

	accessToken, err = jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString(sharedGenerator.Key)
	if err != nil {
		return "", 0, fmt.Errorf("failed to generate access token: %w", err)
	}

	return accessToken, int(sharedGenerator.Timeout.Seconds()), nil
}

// ParseAccessToken 校验 access token 并返回用户 ID，用于可选鉴权的接口
func ParseAccessToken(tokenString string) (userID string, err error) {
	if sharedGenerator == nil {
		return "", errors.ErrTokenGeneratorNotInitialized
	}

	token, err := jwtv5.Parse(tokenString, func(token *jwtv5.Token) (interface{}, error) {
		if token.Method != jwtv5.SigningMethodHS256 {
			return nil, fmt.Errorf("%w: %v, expected HS256", errors.ErrUnexpectedSigningMethod, token.Header["alg"])
		}
		return sharedGenerator.Key, nil
	}, jwtv5.WithExpirationRequired(), jwtv5.WithTimeFunc(sharedGenerator.TimeFunc))

	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return "", errors.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwtv5.MapClaims)
	if !ok {
		return "", errors.ErrInvalidTokenClaims
	}

	uid, ok := claims[IdentityKey].(string)
	if !ok || uid == "" {
		return "", errors.ErrUserIDNotFound
	}

	return uid, nil
}
