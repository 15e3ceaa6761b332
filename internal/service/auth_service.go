package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"mockmate/internal/model"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// AuthService issues and validates per-session JWT tokens. A token is minted
// when a session is created and scopes all further REST and WebSocket access
// to that session.
type AuthService struct {
	jwtSecret []byte
}

// NewAuthService creates a new auth service.
func NewAuthService(secret string) *AuthService {
	return &AuthService{jwtSecret: []byte(secret)}
}

// GenerateSessionToken mints a token bound to one session ID.
func (s *AuthService) GenerateSessionToken(sessionID string) (string, error) {
	claims := &model.SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateSessionToken parses a token and returns its claims.
func (s *AuthService) ValidateSessionToken(tokenString string) (*model.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.SessionClaims)
	if !ok || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
