package models

import (
	"time"

	"github.com/google/uuid"
)

// Milestone status enums. Status is monotonic:
// pending -> funded -> in_review -> released, with funded -> released
// also allowed (client may release without a review step).
const (
	MilestoneStatusPending  = "pending"
	MilestoneStatusFunded   = "funded"
	MilestoneStatusInReview = "in_review"
	MilestoneStatusReleased = "released"
)

type Milestone struct {
	ID          uuid.UUID `json:"id"`
	ContractID  uuid.UUID `json:"contract_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	AmountCents int64     `json:"amount_cents"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
