package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/workbridge/backend/internal/models"
)

type MilestoneRepo struct {
	pool *pgxpool.Pool
}

func NewMilestoneRepo(pool *pgxpool.Pool) *MilestoneRepo {
	return &MilestoneRepo{pool: pool}
}

func (r *MilestoneRepo) Create(ctx context.Context, m *models.Milestone) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO milestones (id, contract_id, title, description, amount_cents, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, m.ID, m.ContractID, m.Title, m.Description, m.AmountCents, m.Status).Scan(&m.CreatedAt, &m.UpdatedAt)
}

func (r *MilestoneRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Milestone, error) {
	var m models.Milestone
	err := r.pool.QueryRow(ctx, `
		SELECT id, contract_id, title, description, amount_cents, status, created_at, updated_at
		FROM milestones WHERE id = $1
	`, id).Scan(&m.ID, &m.ContractID, &m.Title, &m.Description, &m.AmountCents, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MilestoneRepo) ListByContract(ctx context.Context, contractID uuid.UUID) ([]*models.Milestone, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, contract_id, title, description, amount_cents, status, created_at, updated_at
		FROM milestones WHERE contract_id = $1 ORDER BY created_at ASC
	`, contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Milestone
	for rows.Next() {
		var m models.Milestone
		if err := rows.Scan(&m.ID, &m.ContractID, &m.Title, &m.Description, &m.AmountCents, &m.Status, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// UpdateStatusIf advances the milestone status only when the current status
// matches from. The guard makes concurrent transitions lose cleanly instead
// of regressing the state machine. Returns false when nothing matched.
func (r *MilestoneRepo) UpdateStatusIf(ctx context.Context, id uuid.UUID, from []string, to string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE milestones SET status = $2, updated_at = now()
		WHERE id = $1 AND status = ANY($3)
	`, id, to, from)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
