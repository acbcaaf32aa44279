package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/workbridge/backend/internal/models"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new profile and returns it with server-side timestamps.
func (r *Repository) Create(ctx context.Context, email, passwordHash, displayName, role string) (*models.Profile, error) {
	p := &models.Profile{
		ID:           uuid.New(),
		Email:        email,
		DisplayName:  displayName,
		Role:         role,
		PasswordHash: passwordHash,
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO profiles (id, email, display_name, role, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, p.ID, p.Email, p.DisplayName, p.Role, p.PasswordHash).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetByEmail returns the profile for login. Returns nil when not found.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	p, err := r.scanOne(r.pool.QueryRow(ctx, `
		SELECT id, email, display_name, role, password_hash, created_at, updated_at
		FROM profiles WHERE email = $1
	`, email))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return p, err
}

// GetByID resolves a profile by id, used once per request by the middleware.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `
		SELECT id, email, display_name, role, password_hash, created_at, updated_at
		FROM profiles WHERE id = $1
	`, id))
}

func (r *Repository) scanOne(row pgx.Row) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(&p.ID, &p.Email, &p.DisplayName, &p.Role, &p.PasswordHash, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
