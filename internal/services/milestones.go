package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/workbridge/backend/internal/models"
	"github.com/workbridge/backend/internal/payments"
)

// MilestoneContractRepo resolves the parent contract for authorization.
type MilestoneContractRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Contract, error)
}

// MilestoneRepo is the milestone repository interface for the state machine.
type MilestoneRepo interface {
	Create(ctx context.Context, m *models.Milestone) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Milestone, error)
	ListByContract(ctx context.Context, contractID uuid.UUID) ([]*models.Milestone, error)
	UpdateStatusIf(ctx context.Context, id uuid.UUID, from []string, to string) (bool, error)
}

// InvoiceChecker reads invoice status from the payment gateway.
type InvoiceChecker interface {
	GetStatus(ctx context.Context, invoiceID uuid.UUID) (string, error)
}

// MilestoneService drives the milestone escrow lifecycle:
// pending -> funded -> in_review -> released, plus funded -> released.
// Every mutating call returns the reloaded milestone list for the contract so
// callers never render a stale status after their own write.
type MilestoneService struct {
	Contracts  MilestoneContractRepo
	Milestones MilestoneRepo
	Invoices   InvoiceChecker
}

// NewMilestoneService returns a new MilestoneService.
func NewMilestoneService(contracts MilestoneContractRepo, milestones MilestoneRepo, invoices InvoiceChecker) *MilestoneService {
	return &MilestoneService{Contracts: contracts, Milestones: milestones, Invoices: invoices}
}

// ListForContract returns the contract's milestones, creation order.
// Non-participants are denied read access.
func (s *MilestoneService) ListForContract(ctx context.Context, caller *models.Profile, contractID uuid.UUID) ([]*models.Milestone, error) {
	contract, err := s.getContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if contract.ClientID != caller.ID && contract.FreelancerID != caller.ID {
		return nil, fmt.Errorf("caller is not a contract participant: %w", ErrForbidden)
	}
	return s.Milestones.ListByContract(ctx, contractID)
}

// CreateMilestone adds a milestone to an active contract. Client only.
func (s *MilestoneService) CreateMilestone(ctx context.Context, caller *models.Profile, contractID uuid.UUID, title, description string, amountCents int64) (*models.Milestone, error) {
	if title == "" || amountCents <= 0 {
		return nil, fmt.Errorf("milestone needs a title and a positive amount: %w", ErrValidation)
	}
	contract, err := s.getContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if contract.ClientID != caller.ID {
		return nil, fmt.Errorf("only the contract client may define milestones: %w", ErrForbidden)
	}
	if contract.Status != models.ContractStatusActive {
		return nil, fmt.Errorf("contract is %s, not active: %w", contract.Status, ErrConflict)
	}
	m := &models.Milestone{
		ID:          uuid.New(),
		ContractID:  contract.ID,
		Title:       title,
		Description: description,
		AmountCents: amountCents,
		Status:      models.MilestoneStatusPending,
	}
	if err := s.Milestones.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("create milestone: %w", err)
	}
	return m, nil
}

// Fund moves pending -> funded. Contract client only. When invoiceID is
// given, the referenced invoice must already be paid; without one the
// milestone funds immediately.
func (s *MilestoneService) Fund(ctx context.Context, caller *models.Profile, milestoneID uuid.UUID, invoiceID *uuid.UUID) ([]*models.Milestone, error) {
	if invoiceID != nil {
		status, err := s.Invoices.GetStatus(ctx, *invoiceID)
		if err != nil {
			if errors.Is(err, payments.ErrInvoiceNotFound) {
				return nil, fmt.Errorf("invoice %s: %w", *invoiceID, ErrNotFound)
			}
			return nil, fmt.Errorf("check invoice status: %w", err)
		}
		if status != payments.InvoiceStatusPaid {
			return nil, fmt.Errorf("invoice is %s, not paid: %w", status, ErrConflict)
		}
	}
	return s.transition(ctx, caller, milestoneID, clientActor,
		[]string{models.MilestoneStatusPending}, models.MilestoneStatusFunded)
}

// SubmitForReview moves funded -> in_review. Contract freelancer only.
func (s *MilestoneService) SubmitForReview(ctx context.Context, caller *models.Profile, milestoneID uuid.UUID) ([]*models.Milestone, error) {
	return s.transition(ctx, caller, milestoneID, freelancerActor,
		[]string{models.MilestoneStatusFunded}, models.MilestoneStatusInReview)
}

// Release moves funded or in_review -> released. Contract client only.
func (s *MilestoneService) Release(ctx context.Context, caller *models.Profile, milestoneID uuid.UUID) ([]*models.Milestone, error) {
	return s.transition(ctx, caller, milestoneID, clientActor,
		[]string{models.MilestoneStatusFunded, models.MilestoneStatusInReview}, models.MilestoneStatusReleased)
}

type actorKind int

const (
	clientActor actorKind = iota
	freelancerActor
)

// transition enforces actor and precondition, applies the guarded status
// update, and reloads the contract's milestones for the caller.
func (s *MilestoneService) transition(ctx context.Context, caller *models.Profile, milestoneID uuid.UUID, actor actorKind, from []string, to string) ([]*models.Milestone, error) {
	milestone, err := s.Milestones.GetByID(ctx, milestoneID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("milestone %s: %w", milestoneID, ErrNotFound)
		}
		return nil, fmt.Errorf("load milestone: %w", err)
	}
	contract, err := s.getContract(ctx, milestone.ContractID)
	if err != nil {
		return nil, err
	}

	switch actor {
	case clientActor:
		if contract.ClientID != caller.ID {
			return nil, fmt.Errorf("only the contract client may move a milestone to %s: %w", to, ErrForbidden)
		}
	case freelancerActor:
		if contract.FreelancerID != caller.ID {
			return nil, fmt.Errorf("only the contract freelancer may move a milestone to %s: %w", to, ErrForbidden)
		}
	}

	if !contains(from, milestone.Status) {
		return nil, fmt.Errorf("milestone is %s, cannot move to %s: %w", milestone.Status, to, ErrInvalidTransition)
	}

	ok, err := s.Milestones.UpdateStatusIf(ctx, milestoneID, from, to)
	if err != nil {
		return nil, fmt.Errorf("update milestone status: %w", err)
	}
	if !ok {
		// Lost a race: someone advanced the milestone between read and write.
		return nil, fmt.Errorf("milestone moved concurrently: %w", ErrInvalidTransition)
	}

	list, err := s.Milestones.ListByContract(ctx, milestone.ContractID)
	if err != nil {
		return nil, fmt.Errorf("reload milestones: %w", err)
	}
	return list, nil
}

func (s *MilestoneService) getContract(ctx context.Context, contractID uuid.UUID) (*models.Contract, error) {
	contract, err := s.Contracts.GetByID(ctx, contractID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("contract %s: %w", contractID, ErrNotFound)
		}
		return nil, fmt.Errorf("load contract: %w", err)
	}
	return contract, nil
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
