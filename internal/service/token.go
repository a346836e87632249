package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/admin-auth/internal/model"
)

// ErrTokenInvalid covers bad signatures, malformed tokens and expiry alike.
var ErrTokenInvalid = errors.New("invalid authentication credentials")

// Claims extends JWT standard claims with the admin identity.
// Subject carries the admin email.
type Claims struct {
	jwt.RegisteredClaims
	Role    string `json:"role"`
	AdminID string `json:"id"`
}

// Admin returns the public identity carried by the token.
func (c *Claims) Admin() model.PublicAdmin {
	return model.PublicAdmin{Email: c.Subject, Role: c.Role, ID: c.AdminID}
}

// TokenService mints and validates HMAC-signed session tokens.
type TokenService struct {
	secret []byte
	method jwt.SigningMethod
	now    func() time.Time
	log    zerolog.Logger
}

// NewTokenService creates a TokenService for one of HS256, HS384 or HS512.
func NewTokenService(secret, algorithm string, log zerolog.Logger) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("token secret is empty")
	}
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported token algorithm %q", algorithm)
	}
	return &TokenService{
		secret: []byte(secret),
		method: method,
		now:    time.Now,
		log:    log.With().Str("component", "token_service").Logger(),
	}, nil
}

// Issue signs a token for admin that expires ttl after now.
func (s *TokenService) Issue(admin model.PublicAdmin, ttl time.Duration) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   admin.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Role:    admin.Role,
		AdminID: admin.ID,
	}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate checks signature and expiry. Every failure returns ErrTokenInvalid;
// the underlying reason is only logged.
func (s *TokenService) Validate(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims,
		func(t *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		s.log.Debug().Err(err).Msg("Token rejected")
		return nil, ErrTokenInvalid
	}
	if !token.Valid || claims.Subject == "" {
		s.log.Debug().Msg("Token rejected: incomplete claims")
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
