package services

import (
	"errors"
	"time"

	"github.com/daria-hk/contacts-api/internal/apperrors"
	"github.com/golang-jwt/jwt/v5"
)

// Token scopes. Access tokens carry a username, confirmation tokens an email.
// The scope claim stops a confirmation token from opening an API session.
const (
	scopeAccess  = "access"
	scopeConfirm = "email_confirmation"
)

// Claims represents JWT token claims.
type Claims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies the signed, expiring tokens used for API
// sessions and email confirmation. Tokens are stateless; there is no
// revocation list.
type TokenService interface {
	IssueAccessToken(username string) (string, error)
	IssueConfirmationToken(email string) (string, error)
	VerifyAccessToken(token string) (username string, err error)
	VerifyConfirmationToken(token string) (email string, err error)
}

type tokenService struct {
	secret     string
	accessTTL  time.Duration
	confirmTTL time.Duration
}

// NewTokenService creates a TokenService signing with HS256.
func NewTokenService(secret string, accessTTL, confirmTTL time.Duration) TokenService {
	return &tokenService{
		secret:     secret,
		accessTTL:  accessTTL,
		confirmTTL: confirmTTL,
	}
}

func (s *tokenService) IssueAccessToken(username string) (string, error) {
	return s.issue(username, scopeAccess, s.accessTTL)
}

func (s *tokenService) IssueConfirmationToken(email string) (string, error) {
	return s.issue(email, scopeConfirm, s.confirmTTL)
}

func (s *tokenService) issue(subject, scope string, ttl time.Duration) (string, error) {
	claims := Claims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

func (s *tokenService) VerifyAccessToken(token string) (string, error) {
	return s.verify(token, scopeAccess)
}

func (s *tokenService) VerifyConfirmationToken(token string) (string, error) {
	return s.verify(token, scopeConfirm)
}

func (s *tokenService) verify(tokenString, scope string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", apperrors.ErrExpiredToken
		}
		return "", apperrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Scope != scope || claims.Subject == "" {
		return "", apperrors.ErrInvalidToken
	}
	return claims.Subject, nil
}
