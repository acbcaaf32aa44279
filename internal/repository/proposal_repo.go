package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/workbridge/backend/internal/models"
)

type ProposalRepo struct {
	pool *pgxpool.Pool
}

func NewProposalRepo(pool *pgxpool.Pool) *ProposalRepo {
	return &ProposalRepo{pool: pool}
}

func (r *ProposalRepo) Create(ctx context.Context, p *models.Proposal) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO proposals (id, project_id, freelancer_id, bid_cents, cover_letter, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, p.ID, p.ProjectID, p.FreelancerID, p.BidCents, p.CoverLetter, p.Status).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *ProposalRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	var p models.Proposal
	err := r.pool.QueryRow(ctx, `
		SELECT id, project_id, freelancer_id, bid_cents, cover_letter, status, created_at, updated_at
		FROM proposals WHERE id = $1
	`, id).Scan(&p.ID, &p.ProjectID, &p.FreelancerID, &p.BidCents, &p.CoverLetter, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByIDForUpdate locks the proposal row. Call within a transaction.
func (r *ProposalRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Proposal, error) {
	var p models.Proposal
	err := tx.QueryRow(ctx, `
		SELECT id, project_id, freelancer_id, bid_cents, cover_letter, status, created_at, updated_at
		FROM proposals WHERE id = $1 FOR UPDATE
	`, id).Scan(&p.ID, &p.ProjectID, &p.FreelancerID, &p.BidCents, &p.CoverLetter, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProposalRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Proposal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, project_id, freelancer_id, bid_cents, cover_letter, status, created_at, updated_at
		FROM proposals WHERE project_id = $1 ORDER BY created_at DESC
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Proposal
	for rows.Next() {
		var p models.Proposal
		if err := rows.Scan(&p.ID, &p.ProjectID, &p.FreelancerID, &p.BidCents, &p.CoverLetter, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// ExistsForFreelancer reports whether the freelancer already has a proposal
// on the project, regardless of status.
func (r *ProposalRepo) ExistsForFreelancer(ctx context.Context, projectID, freelancerID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM proposals WHERE project_id = $1 AND freelancer_id = $2)
	`, projectID, freelancerID).Scan(&exists)
	return exists, err
}

// CountByFreelancer returns how many proposals the freelancer has submitted.
func (r *ProposalRepo) CountByFreelancer(ctx context.Context, freelancerID uuid.UUID) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM proposals WHERE freelancer_id = $1
	`, freelancerID).Scan(&n)
	return n, err
}

// AcceptTx marks the proposal accepted inside the caller's transaction.
func (r *ProposalRepo) AcceptTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		UPDATE proposals SET status = $2, updated_at = now() WHERE id = $1
	`, id, models.ProposalStatusAccepted)
	return err
}

// RejectSiblingsTx marks every other proposal on the project rejected inside
// the caller's transaction.
func (r *ProposalRepo) RejectSiblingsTx(ctx context.Context, tx pgx.Tx, projectID, acceptedID uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		UPDATE proposals SET status = $3, updated_at = now()
		WHERE project_id = $1 AND id <> $2
	`, projectID, acceptedID, models.ProposalStatusRejected)
	return err
}
