package http

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sm8ta/ridewise/internal/adapter/logger"
	"github.com/sm8ta/ridewise/internal/core/domain"
)

func TestJWTTokenService_VerifyToken(t *testing.T) {
	tokens := NewJWTTokenService(testSecret, logger.NewNopLogger())

	signed, err := tokens.IssueToken("rider", domain.Viewer)
	require.NoError(t, err)

	payload, err := tokens.VerifyToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "rider", payload.Subject)
	assert.Equal(t, domain.Viewer, payload.Role)
	assert.False(t, payload.CanWrite())
}

func TestJWTTokenService_RejectsBadTokens(t *testing.T) {
	tokens := NewJWTTokenService(testSecret, logger.NewNopLogger())

	other, err := NewJWTTokenService("other-secret", logger.NewNopLogger()).IssueToken("rider", domain.Owner)
	require.NoError(t, err)
	_, err = tokens.VerifyToken(other)
	assert.Error(t, err)

	badRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "rider",
		"role": "admin",
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = tokens.VerifyToken(badRole)
	assert.Error(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": "owner",
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = tokens.VerifyToken(noSubject)
	assert.Error(t, err)
}
