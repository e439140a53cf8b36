package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"blogserver/internal/domain"
)

const issuer = "blogserver"

// ErrInvalidToken indicates the token is malformed, tampered with, or
// otherwise failed validation.
var ErrInvalidToken = errors.New("invalid token")

// TokenService issues and verifies signed bearer tokens. The signing key and
// validity window are fixed at construction time.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("token secret is required")
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be greater than zero")
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// Issue signs an HS256 token for the given subject, stamped with the current
// time and the configured validity window.
func (s *TokenService) Issue(subject string) (string, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", errors.New("subject is required")
	}

	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseSubject verifies the signature and structure of the token and returns
// its subject. It does not check expiry; IsValid does.
func (s *TokenService) ParseSubject(token string) (string, error) {
	claims, err := s.parse(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// IsValid reports whether the token's signature verifies, its subject matches
// the user's login identity, and its expiry has not elapsed.
func (s *TokenService) IsValid(token string, user *domain.User) bool {
	if user == nil {
		return false
	}
	claims, err := s.parse(token)
	if err != nil {
		return false
	}
	if !strings.EqualFold(claims.Subject, user.Email) {
		return false
	}
	return claims.ExpiresAt != nil && time.Now().UTC().Before(claims.ExpiresAt.Time)
}

func (s *TokenService) parse(token string) (*jwt.RegisteredClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}

	// Expiry is checked separately so ParseSubject can resolve the subject
	// of a structurally sound but expired token.
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Issuer != issuer || strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrInvalidToken
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
