package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stemsi/admin-auth/internal/model"
)

const adminColumns = `id::text, email, password_hash, role, is_active, created_at, updated_at`

// AdminRepository handles admin data access in PostgreSQL.
type AdminRepository struct {
	db DBTX
}

// NewAdminRepository creates a new AdminRepository.
func NewAdminRepository(db DBTX) *AdminRepository {
	return &AdminRepository{db: db}
}

// GetByEmail retrieves an admin by their unique email.
func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	return r.scanOne(r.db.QueryRow(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE email = $1`, email,
	))
}

// FindActiveAdmin retrieves an active admin-role account by email.
func (r *AdminRepository) FindActiveAdmin(ctx context.Context, email string) (*model.Admin, error) {
	return r.scanOne(r.db.QueryRow(ctx,
		`SELECT `+adminColumns+` FROM admins
		 WHERE email = $1 AND role = $2 AND is_active = TRUE`, email, model.RoleAdmin,
	))
}

// UpdatePassword replaces the password hash of the admin with the given email.
func (r *AdminRepository) UpdatePassword(ctx context.Context, email, passwordHash string, updatedAt time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE admins SET password_hash = $2, updated_at = $3 WHERE email = $1`,
		email, passwordHash, updatedAt,
	)
	if err != nil {
		return fmt.Errorf("update admin password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetActive toggles whether the admin may log in.
func (r *AdminRepository) SetActive(ctx context.Context, email string, active bool, updatedAt time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE admins SET is_active = $2, updated_at = $3 WHERE email = $1`,
		email, active, updatedAt,
	)
	if err != nil {
		return fmt.Errorf("update admin status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Create inserts a new admin.
func (r *AdminRepository) Create(ctx context.Context, a *model.Admin) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO admins (email, password_hash, role, is_active)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id::text, created_at, updated_at`,
		a.Email, a.PasswordHash, a.Role, a.IsActive,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrDuplicate
		}
		return fmt.Errorf("insert admin: %w", err)
	}
	return nil
}

func (r *AdminRepository) scanOne(row pgx.Row) (*model.Admin, error) {
	a := &model.Admin{}
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Role, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan admin: %w", err)
	}
	return a, nil
}
