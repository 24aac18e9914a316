package domain

import (
	"github.com/golang-jwt/jwt/v5"
)

// StorefrontClaims represents custom JWT claims for storefront auth. UserID
// is the Telegram user ID extracted from validated Mini App init data.
type StorefrontClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}
