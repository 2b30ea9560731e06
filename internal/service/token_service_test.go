package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/rdic-api/internal/models"
	appErrors "github.com/noah-isme/rdic-api/pkg/errors"
)

func newTestTokenService() *TokenService {
	return NewTokenService(TokenConfig{Secret: "test-secret", Issuer: "rdic-test", Expiration: time.Hour})
}

func TestTokenServiceRoundTrip(t *testing.T) {
	svc := newTestTokenService()
	actor := models.Actor{UserID: "coord-1", Role: models.RoleCoordinator, Scopes: []string{"class-a", "class-b"}}

	token, expiresAt, err := svc.IssueToken(actor, "Ana Coordinator")
	require.NoError(t, err)
	require.True(t, expiresAt.After(time.Now()))

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, actor, claims.Actor())
	require.Equal(t, "Ana Coordinator", claims.FullName)
}

func TestTokenServiceRejectsBadTokens(t *testing.T) {
	svc := newTestTokenService()
	token, _, err := svc.IssueToken(models.Actor{UserID: "teacher-1", Role: models.RoleTeacher}, "")
	require.NoError(t, err)

	other := NewTokenService(TokenConfig{Secret: "another-secret", Issuer: "rdic-test"})
	_, err = other.ValidateToken(token)
	require.True(t, errors.Is(err, appErrors.ErrUnauthorized))

	_, err = svc.ValidateToken("not-a-token")
	require.True(t, errors.Is(err, appErrors.ErrUnauthorized))

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.ValidateToken(token)
	require.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}

func TestTokenServiceRejectsUnknownRole(t *testing.T) {
	svc := newTestTokenService()
	_, _, err := svc.IssueToken(models.Actor{UserID: "p-1", Role: "PARENT"}, "")
	require.True(t, errors.Is(err, appErrors.ErrValidation))

	claims := &models.JWTClaims{
		UserID: "p-1",
		Role:   "PARENT",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "rdic-test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = svc.ValidateToken(signed)
	require.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}
