package models

import (
	"time"

	"github.com/google/uuid"
)

// Proposal status enums. Exactly one proposal per project ever becomes
// accepted; the hire transaction rejects all siblings in the same commit.
const (
	ProposalStatusPending  = "pending"
	ProposalStatusAccepted = "accepted"
	ProposalStatusRejected = "rejected"
)

type Proposal struct {
	ID           uuid.UUID `json:"id"`
	ProjectID    uuid.UUID `json:"project_id"`
	FreelancerID uuid.UUID `json:"freelancer_id"`
	BidCents     int64     `json:"bid_cents"`
	CoverLetter  string    `json:"cover_letter"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
