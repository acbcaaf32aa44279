package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/workbridge/backend/internal/models"
)

type ProjectRepo struct {
	pool *pgxpool.Pool
}

func NewProjectRepo(pool *pgxpool.Pool) *ProjectRepo {
	return &ProjectRepo{pool: pool}
}

func (r *ProjectRepo) Create(ctx context.Context, p *models.Project) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO projects (id, client_id, title, description, budget_cents, category_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, p.ID, p.ClientID, p.Title, p.Description, p.BudgetCents, p.CategoryID, p.Status).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *ProjectRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var p models.Project
	err := r.pool.QueryRow(ctx, `
		SELECT id, client_id, title, description, budget_cents, category_id, status, created_at, updated_at
		FROM projects WHERE id = $1
	`, id).Scan(&p.ID, &p.ClientID, &p.Title, &p.Description, &p.BudgetCents, &p.CategoryID, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByIDForUpdate locks the project row for update. Call within a transaction.
func (r *ProjectRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Project, error) {
	var p models.Project
	err := tx.QueryRow(ctx, `
		SELECT id, client_id, title, description, budget_cents, category_id, status, created_at, updated_at
		FROM projects WHERE id = $1 FOR UPDATE
	`, id).Scan(&p.ID, &p.ClientID, &p.Title, &p.Description, &p.BudgetCents, &p.CategoryID, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SetStatusTx updates the project status inside the caller's transaction.
func (r *ProjectRepo) SetStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, status string) error {
	_, err := tx.Exec(ctx, `
		UPDATE projects SET status = $2, updated_at = now() WHERE id = $1
	`, id, status)
	return err
}

// List returns projects newest first, optionally filtered by status and category.
func (r *ProjectRepo) List(ctx context.Context, status string, categoryID *uuid.UUID) ([]*models.Project, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, client_id, title, description, budget_cents, category_id, status, created_at, updated_at
		FROM projects
		WHERE ($1 = '' OR status = $1)
		  AND ($2::uuid IS NULL OR category_id = $2)
		ORDER BY created_at DESC
	`, status, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.ClientID, &p.Title, &p.Description, &p.BudgetCents, &p.CategoryID, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

func (r *ProjectRepo) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*models.Project, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, client_id, title, description, budget_cents, category_id, status, created_at, updated_at
		FROM projects WHERE client_id = $1 ORDER BY created_at DESC
	`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.ClientID, &p.Title, &p.Description, &p.BudgetCents, &p.CategoryID, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// CountByClient returns how many projects the client has posted.
func (r *ProjectRepo) CountByClient(ctx context.Context, clientID uuid.UUID) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM projects WHERE client_id = $1
	`, clientID).Scan(&n)
	return n, err
}

func (r *ProjectRepo) ListCategories(ctx context.Context) ([]*models.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, slug FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug); err != nil {
			return nil, err
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}
