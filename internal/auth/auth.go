package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the httpOnly cookie carrying the session token.
const CookieName = "token"

// Claims represents JWT token claims
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenGenerator issues and verifies session tokens.
type TokenGenerator interface {
	GenerateToken(subject string) (token string, expiresAt time.Time, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

// AuthService performs authentication-related business logic.
type AuthService interface {
	Authenticate(dto LoginDTO) (*Session, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// Session is an issued token and the instant it stops being accepted.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type JWTTokenGenerator struct {
	Secret   []byte
	TokenTTL time.Duration
	now      func() time.Time
}

// Verification failures. They are logged by the middleware; clients only ever see a 401.
var (
	ErrTokenMissing = errors.New("token missing")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
