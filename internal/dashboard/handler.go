package dashboard

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/workbridge/backend/internal/middleware"
	"github.com/workbridge/backend/internal/models"
)

// ProjectCounter counts a client's posted projects.
type ProjectCounter interface {
	CountByClient(ctx context.Context, clientID uuid.UUID) (int64, error)
}

// ProposalCounter counts a freelancer's submitted proposals.
type ProposalCounter interface {
	CountByFreelancer(ctx context.Context, freelancerID uuid.UUID) (int64, error)
}

// ContractCounter counts a profile's active contracts, either side.
type ContractCounter interface {
	CountActiveByParticipant(ctx context.Context, profileID uuid.UUID) (int64, error)
}

// Handler serves the authenticated profile's overview.
type Handler struct {
	Projects  ProjectCounter
	Proposals ProposalCounter
	Contracts ContractCounter
	Logger    *slog.Logger
}

func NewHandler(projects ProjectCounter, proposals ProposalCounter, contracts ContractCounter, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{Projects: projects, Proposals: proposals, Contracts: contracts, Logger: log}
}

type overviewStats struct {
	ProjectsPosted     int64 `json:"projects_posted"`
	ProposalsSubmitted int64 `json:"proposals_submitted"`
	ActiveContracts    int64 `json:"active_contracts"`
}

type overviewResponse struct {
	Profile *models.Profile `json:"profile"`
	Stats   overviewStats   `json:"stats"`
}

// Me handles GET /api/v1/me: the caller's profile plus role-relevant counts.
// Clients see projects posted, freelancers see proposals submitted, both see
// active contracts.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	caller := middleware.ProfileFromCtx(r.Context())
	if caller == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	var stats overviewStats
	var err error
	if caller.IsClient() {
		stats.ProjectsPosted, err = h.Projects.CountByClient(r.Context(), caller.ID)
		if err != nil {
			h.internalError(w, "count projects", err)
			return
		}
	}
	if caller.IsFreelancer() {
		stats.ProposalsSubmitted, err = h.Proposals.CountByFreelancer(r.Context(), caller.ID)
		if err != nil {
			h.internalError(w, "count proposals", err)
			return
		}
	}
	stats.ActiveContracts, err = h.Contracts.CountActiveByParticipant(r.Context(), caller.ID)
	if err != nil {
		h.internalError(w, "count contracts", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(overviewResponse{Profile: caller, Stats: stats})
}

func (h *Handler) internalError(w http.ResponseWriter, step string, err error) {
	h.Logger.Error(step, "error", err)
	http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
}
