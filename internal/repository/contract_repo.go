package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/workbridge/backend/internal/models"
)

type ContractRepo struct {
	pool *pgxpool.Pool
}

func NewContractRepo(pool *pgxpool.Pool) *ContractRepo {
	return &ContractRepo{pool: pool}
}

// CreateTx inserts the contract inside the caller's transaction. A partial
// unique index on (project_id) WHERE status = 'active' backs the at-most-one
// active contract invariant.
func (r *ContractRepo) CreateTx(ctx context.Context, tx pgx.Tx, c *models.Contract) error {
	return tx.QueryRow(ctx, `
		INSERT INTO contracts (id, project_id, client_id, freelancer_id, amount_cents, status, start_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, c.ID, c.ProjectID, c.ClientID, c.FreelancerID, c.AmountCents, c.Status, c.StartDate).Scan(&c.CreatedAt, &c.UpdatedAt)
}

func (r *ContractRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	var c models.Contract
	err := r.pool.QueryRow(ctx, `
		SELECT id, project_id, client_id, freelancer_id, amount_cents, status, start_date, created_at, updated_at
		FROM contracts WHERE id = $1
	`, id).Scan(&c.ID, &c.ProjectID, &c.ClientID, &c.FreelancerID, &c.AmountCents, &c.Status, &c.StartDate, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CountActiveByParticipant returns the profile's active contract count.
func (r *ContractRepo) CountActiveByParticipant(ctx context.Context, profileID uuid.UUID) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM contracts
		WHERE (client_id = $1 OR freelancer_id = $1) AND status = $2
	`, profileID, models.ContractStatusActive).Scan(&n)
	return n, err
}

// ListByParticipant returns contracts where the profile is either side.
func (r *ContractRepo) ListByParticipant(ctx context.Context, profileID uuid.UUID) ([]*models.Contract, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, project_id, client_id, freelancer_id, amount_cents, status, start_date, created_at, updated_at
		FROM contracts WHERE client_id = $1 OR freelancer_id = $1 ORDER BY created_at DESC
	`, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Contract
	for rows.Next() {
		var c models.Contract
		if err := rows.Scan(&c.ID, &c.ProjectID, &c.ClientID, &c.FreelancerID, &c.AmountCents, &c.Status, &c.StartDate, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}
