package utils

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestGenerateAndParseRoundTrip(t *testing.T) {
	token, err := GenerateToken(42, "alice", testSecret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "42", claims["sub"])
	assert.Equal(t, "alice", claims["username"])

	id, err := GetUserIDFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken(1, "bob", testSecret, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(token, "other-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	token, err := GenerateToken(1, "bob", testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token, testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenRequiresBearerHeader(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	_, err := VerifyToken(r, testSecret)
	assert.ErrorIs(t, err, ErrMissingAuthHeader)

	r.Header.Set("Authorization", "Basic abc")
	_, err = VerifyToken(r, testSecret)
	assert.ErrorIs(t, err, ErrMissingAuthHeader)
}

func TestVerifyTokenAcceptsBearer(t *testing.T) {
	token, err := GenerateToken(7, "carol", testSecret, time.Hour)
	require.NoError(t, err)

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	claims, err := VerifyToken(r, testSecret)
	require.NoError(t, err)

	id, err := GetUserIDFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, uint(7), id)
}

func TestGetUserIDFromNumericClaim(t *testing.T) {
	id, err := GetUserIDFromClaims(map[string]interface{}{"sub": float64(13)})
	require.NoError(t, err)
	assert.Equal(t, uint(13), id)
}

func TestGetUserIDMissingClaim(t *testing.T) {
	_, err := GetUserIDFromClaims(map[string]interface{}{})
	assert.Error(t, err)
}
