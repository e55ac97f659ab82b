package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

// Claims is the payload of every token this service signs.
type Claims struct {
	UserID uint   `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Kind   string `json:"kind"`
	jwt.RegisteredClaims
}

func SignToken(secret string, userID uint, email, role, kind string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken validates signature, expiry and kind.
func ParseToken(secret, raw, kind string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuth, err)
	}
	if claims.Kind != kind || claims.UserID == 0 {
		return nil, fmt.Errorf("%w: wrong token kind", ErrAuth)
	}
	return claims, nil
}

var errNoClaims = errors.New("no claims")

// ClaimsFrom extracts Claims from a parsed token.
func ClaimsFrom(token *jwt.Token) (*Claims, error) {
	if token == nil {
		return nil, errNoClaims
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.UserID == 0 {
		return nil, errNoClaims
	}
	return claims, nil
}
