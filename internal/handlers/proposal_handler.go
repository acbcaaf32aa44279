package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/workbridge/backend/internal/metrics"
	"github.com/workbridge/backend/internal/middleware"
	"github.com/workbridge/backend/internal/models"
)

// ProposalRepoForHandler is the subset of proposal repository the handler needs.
type ProposalRepoForHandler interface {
	Create(ctx context.Context, p *models.Proposal) error
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Proposal, error)
	ExistsForFreelancer(ctx context.Context, projectID, freelancerID uuid.UUID) (bool, error)
}

// ProjectGetter resolves a project for proposal checks.
type ProjectGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
}

// Hirer runs the hire transaction.
type Hirer interface {
	Hire(ctx context.Context, caller *models.Profile, projectID, proposalID uuid.UUID) (*models.Contract, error)
}

// ProposalHandler serves proposal submission, review and hiring under
// /api/v1/projects/{id}.
type ProposalHandler struct {
	Proposals ProposalRepoForHandler
	Projects  ProjectGetter
	Hire      Hirer
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

type submitProposalRequest struct {
	BidCents    int64  `json:"bid_cents"`
	CoverLetter string `json:"cover_letter"`
}

// SubmitProposal handles POST /api/v1/projects/{id}/proposals. Freelancers only.
func (h *ProposalHandler) SubmitProposal(w http.ResponseWriter, r *http.Request) {
	caller := middleware.ProfileFromCtx(r.Context())
	if caller == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !caller.IsFreelancer() {
		writeError(w, http.StatusForbidden, "only freelancers may submit proposals")
		return
	}

	projectID, ok := pathUUID(r, "/api/v1/projects/")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	var req submitProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.BidCents <= 0 {
		writeError(w, http.StatusBadRequest, "bid_cents must be > 0")
		return
	}
	if req.CoverLetter == "" {
		writeError(w, http.StatusBadRequest, "cover_letter is required")
		return
	}

	project, err := h.Projects.GetByID(r.Context(), projectID)
	if err != nil {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	if project.Status != models.ProjectStatusOpen {
		writeError(w, http.StatusConflict, "project is not open for proposals")
		return
	}
	if project.ClientID == caller.ID {
		writeError(w, http.StatusForbidden, "cannot bid on your own project")
		return
	}

	exists, err := h.Proposals.ExistsForFreelancer(r.Context(), projectID, caller.ID)
	if err != nil {
		h.Logger.Error("check duplicate proposal", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if exists {
		writeError(w, http.StatusConflict, "proposal already submitted for this project")
		return
	}

	proposal := &models.Proposal{
		ID:           uuid.New(),
		ProjectID:    projectID,
		FreelancerID: caller.ID,
		BidCents:     req.BidCents,
		CoverLetter:  req.CoverLetter,
		Status:       models.ProposalStatusPending,
	}
	if err := h.Proposals.Create(r.Context(), proposal); err != nil {
		h.Logger.Error("create proposal", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create proposal")
		return
	}
	writeJSON(w, http.StatusCreated, proposal)
}

// ListProposals handles GET /api/v1/projects/{id}/proposals.
// The owning client only; freelancers see their own via their submissions.
func (h *ProposalHandler) ListProposals(w http.ResponseWriter, r *http.Request) {
	caller := middleware.ProfileFromCtx(r.Context())
	if caller == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	projectID, ok := pathUUID(r, "/api/v1/projects/")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}
	project, err := h.Projects.GetByID(r.Context(), projectID)
	if err != nil {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	if project.ClientID != caller.ID {
		writeError(w, http.StatusForbidden, "only the project owner may review proposals")
		return
	}

	list, err := h.Proposals.ListByProject(r.Context(), projectID)
	if err != nil {
		h.Logger.Error("list proposals", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type hireRequest struct {
	ProposalID string `json:"proposal_id"`
}

// HireProposal handles POST /api/v1/projects/{id}/hire.
// On success the chosen proposal is accepted, siblings rejected, and the
// created contract returned.
func (h *ProposalHandler) HireProposal(w http.ResponseWriter, r *http.Request) {
	caller := middleware.ProfileFromCtx(r.Context())
	if caller == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	projectID, ok := pathUUID(r, "/api/v1/projects/")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	var req hireRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	proposalID, err := uuid.Parse(req.ProposalID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid proposal_id")
		return
	}

	contract, err := h.Hire.Hire(r.Context(), caller, projectID, proposalID)
	if err != nil {
		h.Metrics.Hires.WithLabelValues("failure").Inc()
		writeWorkflowError(w, h.Logger, err)
		return
	}
	h.Metrics.Hires.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusCreated, contract)
}
