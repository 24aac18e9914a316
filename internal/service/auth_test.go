package service

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sexystyle/storefront/internal/config"
	"github.com/sexystyle/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBotToken = "123456:TEST_BOT_TOKEN"

func newTestAuthService() *AuthService {
	return NewAuthService(testBotToken, config.JWTConfig{
		Secret:            "test-secret-key-123",
		AccessTokenExpiry: time.Hour,
	})
}

func TestLoginRoundTrip(t *testing.T) {
	svc := newTestAuthService()

	initData, err := svc.SignInitData(TelegramUser{ID: 42, Username: "traveller"}, time.Now())
	require.NoError(t, err)

	result, err := svc.Login(initData)
	require.NoError(t, err)
	assert.Equal(t, "42", result.UserID)
	assert.Equal(t, "traveller", result.Username)
	assert.Equal(t, int64(3600), result.ExpiresIn)

	// The issued token carries the user ID in the claims
	var claims domain.StorefrontClaims
	_, err = jwt.ParseWithClaims(result.AccessToken, &claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret-key-123"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "42", claims.UserID)
}

func TestValidateInitDataRejectsTampering(t *testing.T) {
	svc := newTestAuthService()

	initData, err := svc.SignInitData(TelegramUser{ID: 42, Username: "traveller"}, time.Now())
	require.NoError(t, err)

	// Swapping the user ID invalidates the signature
	tampered := strings.Replace(initData, "42", "43", 1)
	_, err = svc.ValidateInitData(tampered)
	assert.Error(t, err)
}

func TestValidateInitDataRejectsWrongBot(t *testing.T) {
	other := NewAuthService("999999:OTHER_BOT", config.JWTConfig{Secret: "x", AccessTokenExpiry: time.Hour})

	initData, err := other.SignInitData(TelegramUser{ID: 42}, time.Now())
	require.NoError(t, err)

	_, err = newTestAuthService().ValidateInitData(initData)
	assert.Error(t, err)
}

func TestValidateInitDataRejectsExpired(t *testing.T) {
	svc := newTestAuthService()

	initData, err := svc.SignInitData(TelegramUser{ID: 42}, time.Now().Add(-25*time.Hour))
	require.NoError(t, err)

	_, err = svc.ValidateInitData(initData)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func TestValidateInitDataRejectsMissingHash(t *testing.T) {
	svc := newTestAuthService()

	_, err := svc.ValidateInitData("user=%7B%22id%22%3A42%7D&auth_date=1700000000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hash")
}
