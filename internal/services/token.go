package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/HammerMeetNail/readshelf/internal/models"
)

const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

var (
	ErrMissingSigningSecret = errors.New("token signing secret is not configured")
	ErrInvalidTokenLifetime = errors.New("token lifetime must be positive")
	// ErrInvalidToken covers every verification failure. Callers must not be
	// able to tell a bad signature from an expired or malformed token.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Claims is the payload of every issued token.
type Claims struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	jwt.RegisteredClaims
}

// Identity converts verified claims into the caller identity. The subject has
// already been validated as a UUID by Verify.
func (c *Claims) Identity() models.Identity {
	id, _ := uuid.Parse(c.Subject)
	return models.Identity{UserID: id, Email: c.Email, FullName: c.FullName}
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenService signs and verifies HS256 tokens with a secret supplied at
// construction.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenService(secret string, accessTTL, refreshTTL time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, ErrMissingSigningSecret
	}
	if accessTTL <= 0 {
		accessTTL = AccessTokenTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = RefreshTokenTTL
	}
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}, nil
}

// SetClock replaces the time source used for iat, exp and expiry checks.
func (s *TokenService) SetClock(now func() time.Time) {
	s.now = now
}

// Issue signs identity claims valid for ttl from now.
func (s *TokenService) Issue(identity models.Identity, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", ErrInvalidTokenLifetime
	}

	now := s.now()
	claims := Claims{
		Email:    identity.Email,
		FullName: identity.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

func (s *TokenService) IssueAccessToken(identity models.Identity) (string, error) {
	return s.Issue(identity, s.accessTTL)
}

func (s *TokenService) IssueRefreshToken(identity models.Identity) (string, error) {
	return s.Issue(identity, s.refreshTTL)
}

func (s *TokenService) IssuePair(identity models.Identity) (*TokenPair, error) {
	access, err := s.IssueAccessToken(identity)
	if err != nil {
		return nil, err
	}
	refresh, err := s.IssueRefreshToken(identity)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Verify returns the claims of a well-formed, correctly signed, unexpired token.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
