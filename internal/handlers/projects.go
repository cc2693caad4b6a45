package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/planhub/planhub/internal/db"
	"github.com/planhub/planhub/internal/models"
	"github.com/planhub/planhub/internal/policy"
)

// loadProjectForCaller resolves a project and applies the visibility rule:
// a caller with no relationship to the project is told it does not exist.
func (h *Handler) loadProjectForCaller(w http.ResponseWriter, r *http.Request, id uuid.UUID) *models.Project {
	user := currentUser(r.Context())
	project, err := h.ProjectRepo.GetByID(r.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		sendError(w, "Project not found", http.StatusNotFound)
		return nil
	}
	if err != nil {
		sendStoreError(w, err)
		return nil
	}
	if !policy.CanAccessProject(user.ID, project) {
		sendError(w, "Project not found", http.StatusNotFound)
		return nil
	}
	return project
}

func projectIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		sendError(w, "id must be a valid uuid", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	status := r.URL.Query().Get("status")
	if status != "" && !models.IsValidProjectStatus(status) {
		sendError(w, "Invalid status value", http.StatusBadRequest)
		return
	}

	projects, err := h.ProjectRepo.ListForUser(r.Context(), user.ID, status)
	if err != nil {
		sendStoreError(w, err)
		return
	}

	list := make([]projectResponse, 0, len(projects))
	for _, p := range projects {
		list = append(list, toProjectResponse(p))
	}
	sendResult(w, http.StatusOK, "Request processed successfully", "projects", list)
}

func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	var input struct {
		Name        string      `json:"name"`
		Description string      `json:"description"`
		Status      string      `json:"status"`
		Deadline    *time.Time  `json:"deadline"`
		Members     []uuid.UUID `json:"members"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	if input.Name == "" {
		sendError(w, "Name is required", http.StatusBadRequest)
		return
	}
	if input.Status == "" {
		input.Status = string(models.ProjectStatusActive)
	}
	if !models.IsValidProjectStatus(input.Status) {
		sendError(w, "Invalid status value", http.StatusBadRequest)
		return
	}

	now := time.Now().UTC()
	project := &models.Project{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: input.Description,
		Owner:       *user,
		Status:      models.ProjectStatus(input.Status),
		Deadline:    input.Deadline,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.ProjectRepo.Create(r.Context(), project, input.Members); err != nil {
		sendStoreError(w, err)
		return
	}

	// re-read to pick up the attached members
	created, err := h.ProjectRepo.GetByID(r.Context(), project.ID)
	if err != nil {
		sendStoreError(w, err)
		return
	}
	sendResult(w, http.StatusCreated, "Request processed successfully", "project", toProjectResponse(created))
}

// UpdateProject is owner-only; a member can read the project but gets a 403
// here. Fields absent from the body keep their previous value, except the
// members set, which is always replaced with the provided list.
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	id, ok := projectIDParam(w, r)
	if !ok {
		return
	}

	project := h.loadProjectForCaller(w, r, id)
	if project == nil {
		return
	}
	if !policy.CanMutateProject(user.ID, project) {
		sendError(w, "Only the project owner can modify the project", http.StatusForbidden)
		return
	}

	var input struct {
		Name        *string     `json:"name"`
		Description *string     `json:"description"`
		Status      *string     `json:"status"`
		Deadline    *time.Time  `json:"deadline"`
		IsActive    *bool       `json:"is_active"`
		Members     []uuid.UUID `json:"members"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}

	if input.Name != nil {
		if *input.Name == "" {
			sendError(w, "Name is required", http.StatusBadRequest)
			return
		}
		project.Name = *input.Name
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.Status != nil {
		if !models.IsValidProjectStatus(*input.Status) {
			sendError(w, "Invalid status value", http.StatusBadRequest)
			return
		}
		project.Status = models.ProjectStatus(*input.Status)
	}
	if input.Deadline != nil {
		project.Deadline = input.Deadline
	}
	if input.IsActive != nil {
		project.IsActive = *input.IsActive
	}
	project.UpdatedAt = time.Now().UTC()

	if err := h.ProjectRepo.Update(r.Context(), project, input.Members); err != nil {
		sendStoreError(w, err)
		return
	}

	updated, err := h.ProjectRepo.GetByID(r.Context(), project.ID)
	if err != nil {
		sendStoreError(w, err)
		return
	}
	sendResult(w, http.StatusOK, "Request processed successfully", "project", toProjectResponse(updated))
}

func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	id, ok := projectIDParam(w, r)
	if !ok {
		return
	}

	project := h.loadProjectForCaller(w, r, id)
	if project == nil {
		return
	}
	if !policy.CanMutateProject(user.ID, project) {
		sendError(w, "Only the project owner can delete the project", http.StatusForbidden)
		return
	}

	if err := h.ProjectRepo.Delete(r.Context(), project.ID); err != nil {
		sendStoreError(w, err)
		return
	}
	sendResult(w, http.StatusOK, "Request processed successfully, project deleted", "", nil)
}
