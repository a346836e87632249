package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/admin-auth/internal/model"
	"github.com/stemsi/admin-auth/internal/repository"
)

// Auth errors. Messages are safe to show to callers.
var (
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrAccountDeactivated     = errors.New("account is deactivated")
	ErrInsufficientPrivileges = errors.New("insufficient privileges")
	ErrInvalidResetCode       = errors.New("invalid or expired reset code")
	ErrAdminNotFound          = errors.New("admin not found")
	ErrAdminAccessRequired    = errors.New("admin access required")
)

const (
	// ForgotPasswordAck is returned by forgot-password whether or not the account exists.
	ForgotPasswordAck = "If an admin account exists with this email, a reset code will be sent"
	// ResetPasswordDone is returned after a successful password reset.
	ResetPasswordDone = "Password reset successful. You can now login."

	tokenTypeBearer = "bearer"
)

// MailQueue accepts reset mail jobs for delivery outside the request path.
type MailQueue interface {
	Enqueue(ctx context.Context, job model.ResetMailJob) error
}

// AuthService orchestrates login, forgot-password, verify-code and reset-password.
type AuthService struct {
	admins  repository.AdminStore
	codes   repository.ResetCodeStore
	hasher  *PasswordHasher
	tokens  *TokenService
	codeGen *ResetCodeGenerator
	mail    MailQueue

	tokenTTL time.Duration
	resetTTL time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	admins repository.AdminStore,
	codes repository.ResetCodeStore,
	hasher *PasswordHasher,
	tokens *TokenService,
	codeGen *ResetCodeGenerator,
	mail MailQueue,
	tokenTTL, resetTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		admins:   admins,
		codes:    codes,
		hasher:   hasher,
		tokens:   tokens,
		codeGen:  codeGen,
		mail:     mail,
		tokenTTL: tokenTTL,
		resetTTL: resetTTL,
		now:      func() time.Time { return time.Now().UTC() },
		log:      log.With().Str("component", "auth_service").Logger(),
	}
}

// Login verifies credentials and issues a session token.
// Unknown email and wrong password fail identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.LoginResult, error) {
	email = model.NormalizeEmail(email)

	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.hasher.Burn(password)
			s.log.Debug().Str("email", email).Msg("Login rejected: unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load admin: %w", err)
	}

	if !s.hasher.Verify(password, admin.PasswordHash) {
		s.log.Debug().Str("email", email).Msg("Login rejected: password mismatch")
		return nil, ErrInvalidCredentials
	}
	if !admin.IsActive {
		s.log.Info().Str("email", email).Msg("Login rejected: account deactivated")
		return nil, ErrAccountDeactivated
	}
	if admin.Role != model.RoleAdmin {
		s.log.Info().Str("email", email).Str("role", admin.Role).Msg("Login rejected: role")
		return nil, ErrInsufficientPrivileges
	}

	public := admin.Public()
	token, expiresAt, err := s.tokens.Issue(public, s.tokenTTL)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("admin_id", admin.ID).Msg("Admin logged in")

	return &model.LoginResult{
		AccessToken: token,
		TokenType:   tokenTypeBearer,
		ExpiresAt:   expiresAt,
		User:        public,
	}, nil
}

// ForgotPassword creates a reset code for an active admin and queues the email.
// It always returns ForgotPasswordAck; failures are logged, never returned.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) string {
	email = model.NormalizeEmail(email)

	admin, err := s.admins.FindActiveAdmin(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Error().Err(err).Msg("Forgot-password lookup failed")
		}
		return ForgotPasswordAck
	}

	code, err := s.codeGen.Generate()
	if err != nil {
		s.log.Error().Err(err).Msg("Reset code generation failed")
		return ForgotPasswordAck
	}

	now := s.now()
	rc := &model.ResetCode{
		Email:     admin.Email,
		Code:      code,
		ExpiresAt: now.Add(s.resetTTL),
		CreatedAt: now,
	}
	if err := s.codes.Create(ctx, rc); err != nil {
		s.log.Error().Err(err).Msg("Reset code persist failed")
		return ForgotPasswordAck
	}

	s.log.Info().
		Str("admin_id", admin.ID).
		Time("expires_at", rc.ExpiresAt).
		Msg("Reset code issued")

	job := model.ResetMailJob{Email: rc.Email, Code: rc.Code, ExpiresAt: rc.ExpiresAt}
	if err := s.mail.Enqueue(ctx, job); err != nil {
		s.log.Error().Err(err).Str("admin_id", admin.ID).Msg("Reset mail enqueue failed")
	}

	return ForgotPasswordAck
}

// VerifyResetCode reports whether code is currently redeemable for email.
// It does not consume the code.
func (s *AuthService) VerifyResetCode(ctx context.Context, email, code string) (string, error) {
	email = model.NormalizeEmail(email)
	if _, err := s.findRedeemable(ctx, email, code); err != nil {
		return "", err
	}
	return email, nil
}

// ResetPassword consumes a reset code and replaces the admin's password.
// The code lookup is repeated here rather than trusting an earlier verify call.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = model.NormalizeEmail(email)

	if _, err := s.findRedeemable(ctx, email, code); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	now := s.now()
	rc, err := s.codes.Consume(ctx, email, code, now)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Lost the race to a concurrent reset or expired since the lookup.
			return ErrInvalidResetCode
		}
		return fmt.Errorf("consume reset code: %w", err)
	}

	if err := s.admins.UpdatePassword(ctx, email, hash, now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Warn().Str("reset_code_id", rc.ID).Msg("Reset consumed for missing admin")
			return ErrAdminNotFound
		}
		s.log.Error().Err(err).Str("reset_code_id", rc.ID).Msg("Password update failed after code consumed")
		return fmt.Errorf("update password: %w", err)
	}

	s.log.Info().Str("reset_code_id", rc.ID).Msg("Password reset")
	return nil
}

// CurrentAdmin resolves the admin identity from a bearer token without a store lookup.
func (s *AuthService) CurrentAdmin(token string) (*model.PublicAdmin, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	if claims.Role != model.RoleAdmin {
		return nil, ErrAdminAccessRequired
	}
	admin := claims.Admin()
	return &admin, nil
}

func (s *AuthService) findRedeemable(ctx context.Context, email, code string) (*model.ResetCode, error) {
	if email == "" || code == "" {
		return nil, ErrInvalidResetCode
	}
	now := s.now()
	rc, err := s.codes.FindRedeemable(ctx, email, code, now)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidResetCode
		}
		return nil, fmt.Errorf("find reset code: %w", err)
	}
	if !rc.Redeemable(now) {
		return nil, ErrInvalidResetCode
	}
	return rc, nil
}
