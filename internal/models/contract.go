package models

import (
	"time"

	"github.com/google/uuid"
)

// Contract status enums.
const (
	ContractStatusActive    = "active"
	ContractStatusCompleted = "completed"
	ContractStatusCancelled = "cancelled"
)

// Contract is created exactly once per hire event. The project, client and
// freelancer links are immutable after creation.
type Contract struct {
	ID           uuid.UUID `json:"id"`
	ProjectID    uuid.UUID `json:"project_id"`
	ClientID     uuid.UUID `json:"client_id"`
	FreelancerID uuid.UUID `json:"freelancer_id"`
	AmountCents  int64     `json:"amount_cents"`
	Status       string    `json:"status"`
	StartDate    time.Time `json:"start_date"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
