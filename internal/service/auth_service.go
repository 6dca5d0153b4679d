package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	apperrors "focusloop/backend/internal/errors"
)

// AuthService implements the optional passphrase lock for the localhost
// API. Browsers can issue cross-site requests against localhost, so a
// user may choose to require a bearer token minted from a passphrase.
// With no passphrase configured the lock is disabled entirely.
type AuthService struct {
	passphraseHash []byte
	jwtSecret      []byte
	tokenTTL       time.Duration
}

func NewAuthService(passphrase, jwtSecret string, tokenTTL time.Duration) (*AuthService, error) {
	s := &AuthService{
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}

	if passphrase != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(passphrase), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		s.passphraseHash = hash
	}

	return s, nil
}

// Enabled reports whether the lock is active.
func (s *AuthService) Enabled() bool {
	return len(s.passphraseHash) > 0
}

type TokenResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Token verifies the passphrase and mints a bearer token.
func (s *AuthService) Token(passphrase string) (*TokenResult, *apperrors.APIError) {
	if !s.Enabled() {
		return nil, apperrors.BadRequest("lock_disabled", "api lock is not enabled")
	}

	if bcrypt.CompareHashAndPassword(s.passphraseHash, []byte(passphrase)) != nil {
		return nil, apperrors.Unauthorized("invalid passphrase")
	}

	now := time.Now().UTC()
	expiresAt := now.Add(s.tokenTTL)
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, apperrors.Internal("failed to sign token")
	}

	return &TokenResult{Token: signed, ExpiresAt: expiresAt}, nil
}

// ParseToken validates a bearer token.
func (s *AuthService) ParseToken(tokenString string) *apperrors.APIError {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return apperrors.Unauthorized("invalid token")
	}
	return nil
}
