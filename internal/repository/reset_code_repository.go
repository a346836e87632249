package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stemsi/admin-auth/internal/model"
)

const resetCodeColumns = `id::text, email, code, expires_at, used, created_at, used_at`

// ResetCodeRepository handles password reset code data access in PostgreSQL.
type ResetCodeRepository struct {
	db DBTX
}

// NewResetCodeRepository creates a new ResetCodeRepository.
func NewResetCodeRepository(db DBTX) *ResetCodeRepository {
	return &ResetCodeRepository{db: db}
}

// Create inserts a new unused reset code.
func (r *ResetCodeRepository) Create(ctx context.Context, rc *model.ResetCode) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO password_reset_codes (email, code, expires_at, used, created_at)
		 VALUES ($1, $2, $3, FALSE, $4)
		 RETURNING id::text`,
		rc.Email, rc.Code, rc.ExpiresAt, rc.CreatedAt,
	).Scan(&rc.ID)
	if err != nil {
		return fmt.Errorf("insert reset code: %w", err)
	}
	return nil
}

// FindRedeemable looks up an unused, unexpired code.
func (r *ResetCodeRepository) FindRedeemable(ctx context.Context, email, code string, now time.Time) (*model.ResetCode, error) {
	return r.scanOne(r.db.QueryRow(ctx,
		`SELECT `+resetCodeColumns+` FROM password_reset_codes
		 WHERE email = $1 AND code = $2 AND used = FALSE AND expires_at > $3
		 ORDER BY created_at DESC
		 LIMIT 1`,
		email, code, now,
	))
}

// Consume flips used on a redeemable code. The predicate is re-checked under the
// row lock, so a second concurrent caller matches nothing.
func (r *ResetCodeRepository) Consume(ctx context.Context, email, code string, now time.Time) (*model.ResetCode, error) {
	return r.scanOne(r.db.QueryRow(ctx,
		`UPDATE password_reset_codes
		 SET used = TRUE, used_at = $3
		 WHERE email = $1 AND code = $2 AND used = FALSE AND expires_at > $3
		 RETURNING `+resetCodeColumns,
		email, code, now,
	))
}

// DeleteExpiredBefore purges codes that expired before cutoff.
func (r *ResetCodeRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM password_reset_codes WHERE expires_at < $1`, cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("delete expired reset codes: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *ResetCodeRepository) scanOne(row pgx.Row) (*model.ResetCode, error) {
	rc := &model.ResetCode{}
	err := row.Scan(&rc.ID, &rc.Email, &rc.Code, &rc.ExpiresAt, &rc.Used, &rc.CreatedAt, &rc.UsedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan reset code: %w", err)
	}
	return rc, nil
}
