package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile roles. Admin exists for moderation tooling; the workflows only
// distinguish client and freelancer.
const (
	RoleClient     = "client"
	RoleFreelancer = "freelancer"
	RoleAdmin      = "admin"
)

type Profile struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsClient reports whether the profile holds the client role.
func (p *Profile) IsClient() bool { return p.Role == RoleClient }

// IsFreelancer reports whether the profile holds the freelancer role.
func (p *Profile) IsFreelancer() bool { return p.Role == RoleFreelancer }
