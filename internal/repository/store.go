package repository

import (
	"context"
	"errors"
	"time"

	"github.com/stemsi/admin-auth/internal/model"
)

// ErrNotFound is returned when no record matches the lookup or update filter.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when a write violates a uniqueness constraint.
var ErrDuplicate = errors.New("record already exists")

// AdminStore persists administrator accounts. Emails are passed in already normalized.
type AdminStore interface {
	GetByEmail(ctx context.Context, email string) (*model.Admin, error)
	// FindActiveAdmin matches only active accounts holding the admin role.
	FindActiveAdmin(ctx context.Context, email string) (*model.Admin, error)
	// UpdatePassword returns ErrNotFound when no account was modified.
	UpdatePassword(ctx context.Context, email, passwordHash string, updatedAt time.Time) error
	SetActive(ctx context.Context, email string, active bool, updatedAt time.Time) error
	Create(ctx context.Context, a *model.Admin) error
}

// ResetCodeStore persists password reset codes.
type ResetCodeStore interface {
	Create(ctx context.Context, rc *model.ResetCode) error
	// FindRedeemable returns an unused code for email that expires after now.
	FindRedeemable(ctx context.Context, email, code string, now time.Time) (*model.ResetCode, error)
	// Consume marks a redeemable code used in one conditional write and returns it.
	// Concurrent callers racing on the same code see exactly one success.
	Consume(ctx context.Context, email, code string, now time.Time) (*model.ResetCode, error)
	// DeleteExpiredBefore removes codes whose expiry is older than cutoff.
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
