package auth

import (
	stdErrors "errors"
	"fmt"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/personal-finance/internal"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// dummyHash keeps the bcrypt comparison cost constant for unknown usernames.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.MinCost)

// Service is the main auth service with dependencies
type Service struct {
	credentials    CredentialStore
	tokenGenerator TokenGenerator
	logger         *slog.Logger
}

func NewService(credentials CredentialStore, tokenGen TokenGenerator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		credentials:    credentials,
		tokenGenerator: tokenGen,
		logger:         logger,
	}
}

// NewJWTTokenGenerator creates an HS256 generator whose tokens live for ttl.
func NewJWTTokenGenerator(secret string, ttl time.Duration) *JWTTokenGenerator {
	return &JWTTokenGenerator{
		Secret:   []byte(secret),
		TokenTTL: ttl,
		now:      time.Now,
	}
}

// Authenticate validates credentials and issues a session token.
func (s *Service) Authenticate(dto LoginDTO) (*Session, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	storedHash, err := s.credentials.PasswordHashFor(dto.Username)
	if err != nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(dto.Password))
		s.logger.Warn("login rejected", "reason", err)
		return nil, errors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(dto.Password)); err != nil {
		s.logger.Warn("login rejected", "reason", "password mismatch")
		return nil, errors.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokenGenerator.GenerateToken(dto.Username)
	if err != nil {
		return nil, errors.NewInternalError("failed to issue token", err)
	}

	s.logger.Info("login succeeded", "subject", dto.Username, "expires_at", expiresAt)
	return &Session{Token: token, ExpiresAt: expiresAt}, nil
}

// ValidateToken returns the claims of a valid token, or one of ErrTokenMissing,
// ErrTokenExpired, ErrInvalidToken.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrTokenMissing
	}
	return s.tokenGenerator.ValidateToken(tokenString)
}

func (j *JWTTokenGenerator) GenerateToken(subject string) (string, time.Time, error) {
	issuedAt := j.now()
	expiresAt := issuedAt.Add(j.TokenTTL)

	claims := &Claims{
		Username: subject,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			Subject:   subject,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.Secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// ValidateToken validates a JWT token and returns claims
func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.Secret, nil
	}, jwt.WithTimeFunc(j.now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		if stdErrors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid && claims.Subject != "" {
		return claims, nil
	}

	return nil, ErrInvalidToken
}
