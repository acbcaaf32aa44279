package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/workbridge/backend/internal/middleware"
	"github.com/workbridge/backend/internal/models"
	"github.com/workbridge/backend/internal/services"
)

// ProjectRepoForHandler is the subset of project repository the handler needs.
type ProjectRepoForHandler interface {
	Create(ctx context.Context, p *models.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	List(ctx context.Context, status string, categoryID *uuid.UUID) ([]*models.Project, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]*models.Project, error)
	ListCategories(ctx context.Context) ([]*models.Category, error)
}

// ProjectHandler serves /api/v1/projects and /api/v1/categories.
type ProjectHandler struct {
	Projects  ProjectRepoForHandler
	Validator *services.Validator
	Logger    *slog.Logger
}

type createProjectRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	BudgetCents *int64     `json:"budget_cents"`
	CategoryID  *uuid.UUID `json:"category_id"`
}

// CreateProject handles POST /api/v1/projects. Clients only.
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	caller := middleware.ProfileFromCtx(r.Context())
	if caller == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !caller.IsClient() {
		writeError(w, http.StatusForbidden, "only clients may post projects")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	if err := h.Validator.Validate(r.Context(), services.PayloadProject, body); err != nil {
		if errors.Is(err, services.ErrValidation) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	var req createProjectRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.BudgetCents != nil && *req.BudgetCents <= 0 {
		writeError(w, http.StatusBadRequest, "budget_cents must be > 0 when set")
		return
	}

	project := &models.Project{
		ID:          uuid.New(),
		ClientID:    caller.ID,
		Title:       req.Title,
		Description: req.Description,
		BudgetCents: req.BudgetCents,
		CategoryID:  req.CategoryID,
		Status:      models.ProjectStatusOpen,
	}
	if err := h.Projects.Create(r.Context(), project); err != nil {
		h.Logger.Error("create project", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create project")
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

// ListProjects handles GET /api/v1/projects.
// ?mine=true returns the caller's own projects; otherwise ?status= and
// ?category= filter the browse list, newest first.
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	caller := middleware.ProfileFromCtx(r.Context())
	if caller == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if r.URL.Query().Get("mine") == "true" {
		list, err := h.Projects.ListByClient(r.Context(), caller.ID)
		if err != nil {
			h.Logger.Error("list own projects", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, list)
		return
	}

	status := r.URL.Query().Get("status")
	var categoryID *uuid.UUID
	if c := r.URL.Query().Get("category"); c != "" {
		id, err := uuid.Parse(c)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid category id")
			return
		}
		categoryID = &id
	}

	list, err := h.Projects.List(r.Context(), status, categoryID)
	if err != nil {
		h.Logger.Error("list projects", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// GetProject handles GET /api/v1/projects/{id}.
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "/api/v1/projects/")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}
	project, err := h.Projects.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// ListCategories handles GET /api/v1/categories.
func (h *ProjectHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	list, err := h.Projects.ListCategories(r.Context())
	if err != nil {
		h.Logger.Error("list categories", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, list)
}
