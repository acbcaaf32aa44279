package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/workbridge/backend/internal/models"
)

// HireProjectRepo is the minimal project repository interface for hiring.
type HireProjectRepo interface {
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Project, error)
	SetStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, status string) error
}

// HireProposalRepo is the minimal proposal repository interface for hiring.
type HireProposalRepo interface {
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Proposal, error)
	AcceptTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
	RejectSiblingsTx(ctx context.Context, tx pgx.Tx, projectID, acceptedID uuid.UUID) error
}

// HireContractRepo is the minimal contract repository interface for hiring.
type HireContractRepo interface {
	CreateTx(ctx context.Context, tx pgx.Tx, c *models.Contract) error
}

// TxBeginner abstracts transaction creation so tests don't need a pgxpool.Pool.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// HireService converts a chosen proposal into a binding contract. All four
// writes (create contract, flip project, accept proposal, reject siblings)
// happen inside one transaction; the project row lock serializes concurrent
// hires on the same project.
type HireService struct {
	Pool      TxBeginner
	Projects  HireProjectRepo
	Proposals HireProposalRepo
	Contracts HireContractRepo
}

// NewHireService returns a new HireService.
func NewHireService(pool TxBeginner, projects HireProjectRepo, proposals HireProposalRepo, contracts HireContractRepo) *HireService {
	return &HireService{Pool: pool, Projects: projects, Proposals: proposals, Contracts: contracts}
}

// Hire executes the hire transaction for the caller on the given project and
// proposal. The caller must be the client who owns the project; the project
// must be open and the proposal pending on that project. Contract creation is
// ordered before proposal acceptance so a failure mid-transaction can never
// leave an accepted proposal without its contract.
func (s *HireService) Hire(ctx context.Context, caller *models.Profile, projectID, proposalID uuid.UUID) (*models.Contract, error) {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin hire transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	project, err := s.Projects.GetByIDForUpdate(ctx, tx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Existence is not revealed to non-owners.
			return nil, fmt.Errorf("project %s: %w", projectID, ErrForbidden)
		}
		return nil, fmt.Errorf("lock project: %w", err)
	}
	if project.ClientID != caller.ID {
		return nil, fmt.Errorf("project %s is not owned by caller: %w", projectID, ErrForbidden)
	}
	if project.Status != models.ProjectStatusOpen {
		return nil, fmt.Errorf("project is %s, not open: %w", project.Status, ErrConflict)
	}

	proposal, err := s.Proposals.GetByIDForUpdate(ctx, tx, proposalID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("proposal %s: %w", proposalID, ErrNotFound)
		}
		return nil, fmt.Errorf("lock proposal: %w", err)
	}
	if proposal.ProjectID != project.ID {
		return nil, fmt.Errorf("proposal does not belong to project: %w", ErrConflict)
	}
	if proposal.Status != models.ProposalStatusPending {
		return nil, fmt.Errorf("proposal is %s, not pending: %w", proposal.Status, ErrConflict)
	}

	amount, err := contractAmount(proposal, project)
	if err != nil {
		return nil, err
	}

	contract := &models.Contract{
		ID:           uuid.New(),
		ProjectID:    project.ID,
		ClientID:     project.ClientID,
		FreelancerID: proposal.FreelancerID,
		AmountCents:  amount,
		Status:       models.ContractStatusActive,
		StartDate:    time.Now().UTC(),
	}
	if err := s.Contracts.CreateTx(ctx, tx, contract); err != nil {
		return nil, fmt.Errorf("create contract: %w", err)
	}
	if err := s.Projects.SetStatusTx(ctx, tx, project.ID, models.ProjectStatusInProgress); err != nil {
		return nil, fmt.Errorf("update project status: %w", err)
	}
	if err := s.Proposals.AcceptTx(ctx, tx, proposal.ID); err != nil {
		return nil, fmt.Errorf("accept proposal: %w", err)
	}
	if err := s.Proposals.RejectSiblingsTx(ctx, tx, project.ID, proposal.ID); err != nil {
		return nil, fmt.Errorf("reject sibling proposals: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit hire transaction: %w", err)
	}
	return contract, nil
}

// contractAmount is the proposal's bid when present, else the project budget.
func contractAmount(proposal *models.Proposal, project *models.Project) (int64, error) {
	if proposal.BidCents > 0 {
		return proposal.BidCents, nil
	}
	if project.BudgetCents != nil && *project.BudgetCents > 0 {
		return *project.BudgetCents, nil
	}
	return 0, fmt.Errorf("neither proposal bid nor project budget set: %w", ErrValidation)
}
