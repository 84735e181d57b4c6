package service

import (
	"testing"
	"time"

	"github.com/sjx-training/atc-assessment-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuthService(t *testing.T, instructorPassword string) *AuthService {
	t.Helper()
	cfg := &config.Config{
		JWTSecret: "test-secret",
		JWTExpiry: time.Hour,
	}
	if instructorPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(instructorPassword), bcrypt.MinCost)
		require.NoError(t, err)
		cfg.InstructorPasswordHash = string(hash)
	}
	return NewAuthService(cfg)
}

func TestTraineeTokenRoundTrip(t *testing.T) {
	svc := newTestAuthService(t, "")

	token, err := svc.GenerateTraineeToken("SJX123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeTrainee, claims.TokenType)
	assert.Equal(t, "SJX123", claims.Callsign)
	assert.Equal(t, "SJX123", claims.Subject)
}

func TestInstructorLogin(t *testing.T) {
	svc := newTestAuthService(t, "tower-secret")

	_, err := svc.GenerateInstructorToken("wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	token, err := svc.GenerateInstructorToken("tower-secret")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeInstructor, claims.TokenType)
	assert.Empty(t, claims.Callsign)
}

func TestInstructorLoginDisabledWithoutHash(t *testing.T) {
	svc := newTestAuthService(t, "")

	_, err := svc.GenerateInstructorToken("anything")
	assert.ErrorIs(t, err, ErrMonitorDisabled)
}

func TestValidateTokenRejectsForgery(t *testing.T) {
	svc := newTestAuthService(t, "")
	other := NewAuthService(&config.Config{JWTSecret: "other-secret", JWTExpiry: time.Hour})

	forged, err := other.GenerateTraineeToken("SJX123")
	require.NoError(t, err)

	_, err = svc.ValidateToken(forged)
	assert.Error(t, err)

	_, err = svc.ValidateToken("not.a.token")
	assert.Error(t, err)
}
