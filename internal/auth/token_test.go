package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/practicheck/practicheck/internal/shared"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret", "practicheck-test", time.Hour)
	subject := uuid.New()
	tenantID := uuid.New()

	token, err := svc.Issue(subject, Claims{
		Email:     "student@example.edu",
		Role:      shared.RoleStudent,
		TenantID:  &tenantID,
		StudentID: "CS-2024-001",
	})
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "student@example.edu", claims.Email)
	require.Equal(t, shared.RoleStudent, claims.Role)
	require.Equal(t, "CS-2024-001", claims.StudentID)
	require.NotNil(t, claims.TenantID)
	require.Equal(t, tenantID, *claims.TenantID)

	parsedSubject, err := claims.UserID()
	require.NoError(t, err)
	require.Equal(t, subject, parsedSubject)
}

func TestTokenExpired(t *testing.T) {
	svc := NewTokenService("test-secret", "practicheck-test", -time.Minute)

	token, err := svc.Issue(uuid.New(), Claims{Role: shared.RoleLecturer})
	require.NoError(t, err)

	_, err = svc.Verify(token)
	require.Error(t, err)
	require.True(t, errors.Is(err, shared.ErrTokenExpired))
}

func TestTokenWrongSecret(t *testing.T) {
	issuer := NewTokenService("secret-one", "practicheck-test", time.Hour)
	verifier := NewTokenService("secret-two", "practicheck-test", time.Hour)

	token, err := issuer.Issue(uuid.New(), Claims{Role: shared.RoleSupervisor})
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.Error(t, err)
	require.True(t, errors.Is(err, shared.ErrTokenInvalid))
	require.False(t, errors.Is(err, shared.ErrTokenExpired))
}

func TestTokenMalformed(t *testing.T) {
	svc := NewTokenService("test-secret", "practicheck-test", time.Hour)

	_, err := svc.Verify("definitely.not.a-token")
	require.Error(t, err)
	require.True(t, errors.Is(err, shared.ErrTokenInvalid))
}

func TestTokenDefaultTTL(t *testing.T) {
	svc := NewTokenService("test-secret", "practicheck-test", 0)
	require.Equal(t, 24*time.Hour, svc.TTL())
}
