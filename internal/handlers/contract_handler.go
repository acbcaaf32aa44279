package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/workbridge/backend/internal/metrics"
	"github.com/workbridge/backend/internal/middleware"
	"github.com/workbridge/backend/internal/models"
	"github.com/workbridge/backend/internal/services"
)

// ContractRepoForHandler is the subset of contract repository the handler needs.
type ContractRepoForHandler interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Contract, error)
	ListByParticipant(ctx context.Context, profileID uuid.UUID) ([]*models.Contract, error)
}

// MilestoneWorkflow is the milestone service surface the handler drives.
type MilestoneWorkflow interface {
	ListForContract(ctx context.Context, caller *models.Profile, contractID uuid.UUID) ([]*models.Milestone, error)
	CreateMilestone(ctx context.Context, caller *models.Profile, contractID uuid.UUID, title, description string, amountCents int64) (*models.Milestone, error)
	Fund(ctx context.Context, caller *models.Profile, milestoneID uuid.UUID, invoiceID *uuid.UUID) ([]*models.Milestone, error)
	SubmitForReview(ctx context.Context, caller *models.Profile, milestoneID uuid.UUID) ([]*models.Milestone, error)
	Release(ctx context.Context, caller *models.Profile, milestoneID uuid.UUID) ([]*models.Milestone, error)
}

// ContractHandler serves /api/v1/contracts and /api/v1/milestones.
type ContractHandler struct {
	Contracts  ContractRepoForHandler
	Milestones MilestoneWorkflow
	Validator  *services.Validator
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
}

// ListContracts handles GET /api/v1/contracts — caller's contracts, either side.
func (h *ContractHandler) ListContracts(w http.ResponseWriter, r *http.Request) {
	caller := middleware.ProfileFromCtx(r.Context())
	if caller == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	list, err := h.Contracts.ListByParticipant(r.Context(), caller.ID)
	if err != nil {
		h.Logger.Error("list contracts", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type contractResponse struct {
	Contract   *models.Contract    `json:"contract"`
	Milestones []*models.Milestone `json:"milestones"`
}

// GetContract handles GET /api/v1/contracts/{id} — participants only,
// milestones included.
func (h *ContractHandler) GetContract(w http.ResponseWriter, r *http.Request) {
	caller := middleware.ProfileFromCtx(r.Context())
	if caller == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	contractID, ok := pathUUID(r, "/api/v1/contracts/")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid contract id")
		return
	}

	contract, err := h.Contracts.GetByID(r.Context(), contractID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "contract not found")
			return
		}
		h.Logger.Error("get contract", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if contract.ClientID != caller.ID && contract.FreelancerID != caller.ID {
		writeError(w, http.StatusForbidden, "not a contract participant")
		return
	}

	milestones, err := h.Milestones.ListForContract(r.Context(), caller, contractID)
	if err != nil {
		writeWorkflowError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, contractResponse{Contract: contract, Milestones: milestones})
}

type createMilestoneRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	AmountCents int64  `json:"amount_cents"`
}

// CreateMilestone handles POST /api/v1/contracts/{id}/milestones.
func (h *ContractHandler) CreateMilestone(w http.ResponseWriter, r *http.Request) {
	caller := middleware.ProfileFromCtx(r.Context())
	if caller == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	contractID, ok := pathUUID(r, "/api/v1/contracts/")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid contract id")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	if err := h.Validator.Validate(r.Context(), services.PayloadMilestone, body); err != nil {
		if errors.Is(err, services.ErrValidation) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	var req createMilestoneRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	milestone, err := h.Milestones.CreateMilestone(r.Context(), caller, contractID, req.Title, req.Description, req.AmountCents)
	if err != nil {
		writeWorkflowError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, milestone)
}

type fundMilestoneRequest struct {
	InvoiceID *uuid.UUID `json:"invoice_id,omitempty"`
}

// FundMilestone handles POST /api/v1/milestones/{id}/fund.
func (h *ContractHandler) FundMilestone(w http.ResponseWriter, r *http.Request) {
	caller, milestoneID, ok := h.milestoneCall(w, r)
	if !ok {
		return
	}
	var req fundMilestoneRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
	}
	list, err := h.Milestones.Fund(r.Context(), caller, milestoneID, req.InvoiceID)
	if err != nil {
		writeWorkflowError(w, h.Logger, err)
		return
	}
	h.Metrics.MilestoneTransitions.WithLabelValues(models.MilestoneStatusFunded).Inc()
	writeJSON(w, http.StatusOK, list)
}

// SubmitMilestone handles POST /api/v1/milestones/{id}/submit.
func (h *ContractHandler) SubmitMilestone(w http.ResponseWriter, r *http.Request) {
	caller, milestoneID, ok := h.milestoneCall(w, r)
	if !ok {
		return
	}
	list, err := h.Milestones.SubmitForReview(r.Context(), caller, milestoneID)
	if err != nil {
		writeWorkflowError(w, h.Logger, err)
		return
	}
	h.Metrics.MilestoneTransitions.WithLabelValues(models.MilestoneStatusInReview).Inc()
	writeJSON(w, http.StatusOK, list)
}

// ReleaseMilestone handles POST /api/v1/milestones/{id}/release.
func (h *ContractHandler) ReleaseMilestone(w http.ResponseWriter, r *http.Request) {
	caller, milestoneID, ok := h.milestoneCall(w, r)
	if !ok {
		return
	}
	list, err := h.Milestones.Release(r.Context(), caller, milestoneID)
	if err != nil {
		writeWorkflowError(w, h.Logger, err)
		return
	}
	h.Metrics.MilestoneTransitions.WithLabelValues(models.MilestoneStatusReleased).Inc()
	writeJSON(w, http.StatusOK, list)
}

// milestoneCall extracts the shared auth + id plumbing of the transition endpoints.
func (h *ContractHandler) milestoneCall(w http.ResponseWriter, r *http.Request) (*models.Profile, uuid.UUID, bool) {
	caller := middleware.ProfileFromCtx(r.Context())
	if caller == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return nil, uuid.Nil, false
	}
	milestoneID, ok := pathUUID(r, "/api/v1/milestones/")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid milestone id")
		return nil, uuid.Nil, false
	}
	return caller, milestoneID, true
}
