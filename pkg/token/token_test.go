package token

import (
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RostrDating/config"
	"RostrDating/pkg/errors"
)

func setup(t *testing.T) {
	t.Helper()
	config.Cfg.JWTSecret = "token-test-secret"
	config.Cfg.JWTExpireMinutes = 30
	require.NoError(t, Init())
}

func TestGenerateAndParse(t *testing.T) {
	setup(t)

	access, expiresIn, err := GenerateAccessToken("user-1")
	require.NoError(t, err)
	assert.Equal(t, 30*60, expiresIn)

	uid, err := ParseAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, "user-1", uid)
}

func TestParseRejectsForeignTokens(t *testing.T) {
	setup(t)

	sign := func(claims jwtv5.MapClaims, key string) string {
		s, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString([]byte(key))
		require.NoError(t, err)
		return s
	}
	exp := time.Now().Add(time.Hour).Unix()

	t.Run("wrong key", func(t *testing.T) {
		_, err := ParseAccessToken(sign(jwtv5.MapClaims{"sub": "u", "exp": exp}, "other"))
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		_, err := ParseAccessToken(sign(jwtv5.MapClaims{"sub": "u", "exp": time.Now().Add(-time.Minute).Unix()}, "token-test-secret"))
		assert.Error(t, err)
	})

	t.Run("missing exp", func(t *testing.T) {
		_, err := ParseAccessToken(sign(jwtv5.MapClaims{"sub": "u"}, "token-test-secret"))
		assert.Error(t, err)
	})

	t.Run("missing sub", func(t *testing.T) {
		_, err := ParseAccessToken(sign(jwtv5.MapClaims{"exp": exp}, "token-test-secret"))
		assert.ErrorIs(t, err, errors.ErrUserIDNotFound)
	})
}
