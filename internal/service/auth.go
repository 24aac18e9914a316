package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sexystyle/storefront/internal/config"
	"github.com/sexystyle/storefront/internal/domain"
)

// initDataMaxAge bounds how old a Mini App init payload may be before login
// is refused; replayed payloads older than this are rejected outright.
const initDataMaxAge = 24 * time.Hour

// TelegramUser is the subset of the Mini App user object the service needs.
type TelegramUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// AuthService validates Telegram Mini App init data and issues access
// tokens for the storefront API.
type AuthService struct {
	botToken string
	jwtCfg   config.JWTConfig
}

// NewAuthService creates a new auth service
func NewAuthService(botToken string, jwtCfg config.JWTConfig) *AuthService {
	return &AuthService{
		botToken: botToken,
		jwtCfg:   jwtCfg,
	}
}

// LoginResult carries the issued token and the resolved user.
type LoginResult struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"` // seconds
	UserID      string `json:"user_id"`
	Username    string `json:"username,omitempty"`
}

// Login validates the raw initData string the Mini App received from the
// host client and mints a JWT carrying the Telegram user ID.
func (s *AuthService) Login(initData string) (*LoginResult, error) {
	user, err := s.ValidateInitData(initData)
	if err != nil {
		return nil, err
	}

	userID := strconv.FormatInt(user.ID, 10)
	now := time.Now().UTC()

	claims := domain.StorefrontClaims{
		UserID:   userID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtCfg.AccessTokenExpiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtCfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &LoginResult{
		AccessToken: signed,
		ExpiresIn:   int64(s.jwtCfg.AccessTokenExpiry.Seconds()),
		UserID:      userID,
		Username:    user.Username,
	}, nil
}

// ValidateInitData verifies the HMAC over the init payload per the Telegram
// Web App scheme: secret = HMAC-SHA256("WebAppData", botToken), hash =
// HMAC-SHA256(secret, data-check-string), where the data-check-string is the
// sorted key=value list excluding the hash field itself.
func (s *AuthService) ValidateInitData(initData string) (*TelegramUser, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, fmt.Errorf("malformed init data: %w", err)
	}

	gotHash := values.Get("hash")
	if gotHash == "" {
		return nil, fmt.Errorf("init data missing hash")
	}
	values.Del("hash")

	pairs := make([]string, 0, len(values))
	for key := range values {
		pairs = append(pairs, key+"="+values.Get(key))
	}
	sort.Strings(pairs)
	checkString := strings.Join(pairs, "\n")

	secretMac := hmac.New(sha256.New, []byte("WebAppData"))
	secretMac.Write([]byte(s.botToken))
	secret := secretMac.Sum(nil)

	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(checkString))
	wantHash := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(wantHash), []byte(gotHash)) {
		return nil, fmt.Errorf("init data signature mismatch")
	}

	if authDate := values.Get("auth_date"); authDate != "" {
		ts, err := strconv.ParseInt(authDate, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid auth_date: %w", err)
		}
		if time.Since(time.Unix(ts, 0)) > initDataMaxAge {
			return nil, fmt.Errorf("init data expired")
		}
	}

	userJSON := values.Get("user")
	if userJSON == "" {
		return nil, fmt.Errorf("init data missing user")
	}

	var user TelegramUser
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		return nil, fmt.Errorf("invalid user payload: %w", err)
	}
	if user.ID == 0 {
		return nil, fmt.Errorf("init data user has no id")
	}

	return &user, nil
}

// SignInitData produces a valid initData string for the given user, signed
// with the service's bot token. Test helper for exercising the login flow;
// production init data always comes from the host client.
func (s *AuthService) SignInitData(user TelegramUser, authDate time.Time) (string, error) {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return "", err
	}

	values := url.Values{}
	values.Set("user", string(userJSON))
	values.Set("auth_date", strconv.FormatInt(authDate.Unix(), 10))
	values.Set("query_id", "AA"+strconv.FormatInt(user.ID, 36))

	pairs := make([]string, 0, len(values))
	for key := range values {
		pairs = append(pairs, key+"="+values.Get(key))
	}
	sort.Strings(pairs)
	checkString := strings.Join(pairs, "\n")

	secretMac := hmac.New(sha256.New, []byte("WebAppData"))
	secretMac.Write([]byte(s.botToken))
	secret := secretMac.Sum(nil)

	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(checkString))
	values.Set("hash", hex.EncodeToString(mac.Sum(nil)))

	return values.Encode(), nil
}
