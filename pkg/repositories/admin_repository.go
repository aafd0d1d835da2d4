package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/ekaya-inc/ekaya-discovery/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-discovery/pkg/database"
	"github.com/ekaya-inc/ekaya-discovery/pkg/models"
)

// AdminRepository defines data access for reviewer accounts.
type AdminRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
	// Upsert creates the admin or replaces its password hash.
	Upsert(ctx context.Context, email, passwordHash string) (*models.Admin, error)
}

type adminRepository struct {
	db *database.DB
}

// NewAdminRepository creates a new admin repository.
func NewAdminRepository(db *database.DB) AdminRepository {
	return &adminRepository{db: db}
}

var _ AdminRepository = (*adminRepository)(nil)

func (r *adminRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	query := `
		SELECT id, email, password_hash, created_at, updated_at
		FROM discovery_admins
		WHERE lower(email) = lower($1)`

	var a models.Admin
	err := r.db.QueryRow(ctx, query, strings.TrimSpace(email)).Scan(
		&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("%w: failed to get admin: %w", apperrors.ErrStore, err)
	}
	return &a, nil
}

func (r *adminRepository) Upsert(ctx context.Context, email, passwordHash string) (*models.Admin, error) {
	query := `
		INSERT INTO discovery_admins (email, password_hash)
		VALUES ($1, $2)
		ON CONFLICT ((lower(email))) DO UPDATE
		SET password_hash = EXCLUDED.password_hash,
		    updated_at = now()
		RETURNING id, email, password_hash, created_at, updated_at`

	var a models.Admin
	err := r.db.QueryRow(ctx, query, strings.TrimSpace(email), passwordHash).Scan(
		&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to upsert admin: %w", apperrors.ErrStore, err)
	}
	return &a, nil
}
