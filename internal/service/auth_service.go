package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sjx-training/atc-assessment-backend/internal/config"
	"golang.org/x/crypto/bcrypt"
)

// Common auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMonitorDisabled    = errors.New("instructor monitor is not configured")
)

// TokenType distinguishes trainee vs instructor tokens.
type TokenType string

const (
	TokenTypeTrainee    TokenType = "trainee"
	TokenTypeInstructor TokenType = "instructor"
)

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	TokenType TokenType `json:"token_type"`
	Callsign  string    `json:"callsign,omitempty"` // Trainee only
}

// AuthService issues and validates the session tokens that bind a trainee's
// HTTP requests to their callsign, and gates the instructor monitor behind a
// shared bcrypt-hashed password.
type AuthService struct {
	cfg *config.Config
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{cfg: cfg}
}

// GenerateTraineeToken creates a JWT bound to a canonical callsign.
func (s *AuthService) GenerateTraineeToken(callsign string) (string, error) {
	return s.sign(Claims{
		RegisteredClaims: s.registered(callsign),
		TokenType:        TokenTypeTrainee,
		Callsign:         callsign,
	})
}

// GenerateInstructorToken validates the shared instructor password and, on
// success, creates an instructor JWT.
func (s *AuthService) GenerateInstructorToken(password string) (string, error) {
	if s.cfg.InstructorPasswordHash == "" {
		return "", ErrMonitorDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.InstructorPasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.sign(Claims{
		RegisteredClaims: s.registered("instructor"),
		TokenType:        TokenTypeInstructor,
	})
}

// ValidateToken parses and validates a JWT, returning its claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("token is invalid")
	}
	return claims, nil
}

func (s *AuthService) sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) registered(subject string) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		ID:        uuid.New().String(),
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
	}
}
