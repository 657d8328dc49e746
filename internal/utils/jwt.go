package utils

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingAuthHeader = errors.New("missing or malformed Authorization header")
	ErrInvalidToken      = errors.New("invalid token")
	ErrInvalidClaims     = errors.New("invalid token claims")
)

// GenerateToken signs an HS256 access token carrying the user id as "sub".
func GenerateToken(userID uint, username, secret string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":      fmt.Sprintf("%d", userID),
		"username": username,
		"exp":      time.Now().Add(ttl).Unix(),
		"iat":      time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates an HS256 token string and returns its claims.
func ParseToken(tokenStr, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidClaims
	}
	return claims, nil
}

// VerifyToken fetches the Authorization header, validates the JWT, and
// returns the claims if everything is valid.
func VerifyToken(r *http.Request, secret string) (jwt.MapClaims, error) {
	authz := r.Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
		return nil, ErrMissingAuthHeader
	}
	return ParseToken(strings.TrimPrefix(authz, "Bearer "), secret)
}

// GetUserIDFromClaims extracts the "sub" claim as a numeric user id.
func GetUserIDFromClaims(claims jwt.MapClaims) (uint, error) {
	sub, ok := claims["sub"]
	if !ok {
		return 0, errors.New("missing sub claim")
	}
	switch v := sub.(type) {
	case string:
		var id uint
		if _, err := fmt.Sscanf(v, "%d", &id); err != nil {
			return 0, errors.New("invalid sub claim")
		}
		return id, nil
	case float64:
		// JWT numbers get decoded as float64
		return uint(v), nil
	default:
		return 0, errors.New("invalid sub claim type")
	}
}
