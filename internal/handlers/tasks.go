package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/planhub/planhub/internal/db"
	"github.com/planhub/planhub/internal/models"
	"github.com/planhub/planhub/internal/policy"
)

// loadTaskForCaller resolves a task and applies the visibility rule through
// the task's project.
func (h *Handler) loadTaskForCaller(w http.ResponseWriter, r *http.Request, id uuid.UUID) (*models.Task, *models.Project) {
	user := currentUser(r.Context())

	task, err := h.TaskRepo.GetByID(r.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		sendError(w, "Task not found", http.StatusNotFound)
		return nil, nil
	}
	if err != nil {
		sendStoreError(w, err)
		return nil, nil
	}

	project, err := h.ProjectRepo.GetByID(r.Context(), task.ProjectID)
	if err != nil {
		sendStoreError(w, err)
		return nil, nil
	}
	if !policy.CanAccessTask(user.ID, project) {
		sendError(w, "Task not found", http.StatusNotFound)
		return nil, nil
	}
	return task, project
}

func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	q := r.URL.Query()

	filter := db.TaskFilter{
		Status:   q.Get("status"),
		Priority: q.Get("priority"),
		Sort:     q.Get("sort"),
	}
	if filter.Status != "" && !models.IsValidTaskStatus(filter.Status) {
		sendError(w, "Invalid status value", http.StatusBadRequest)
		return
	}
	if filter.Priority != "" && !models.IsValidTaskPriority(filter.Priority) {
		sendError(w, "Invalid priority value", http.StatusBadRequest)
		return
	}
	if raw := q.Get("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			sendError(w, "category_id must be a valid uuid", http.StatusBadRequest)
			return
		}
		filter.CategoryID = &id
	}
	if raw := q.Get("project_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			sendError(w, "project_id must be a valid uuid", http.StatusBadRequest)
			return
		}
		filter.ProjectID = &id
	}

	tasks, err := h.TaskRepo.List(r.Context(), user.ID, filter)
	if err != nil {
		sendStoreError(w, err)
		return
	}
	sendResult(w, http.StatusOK, "Request processed successfully", "tasks", toTaskListResponse(tasks))
}

type taskInput struct {
	ProjectID      *uuid.UUID  `json:"project_id"`
	Title          *string     `json:"title"`
	Description    *string     `json:"description"`
	Priority       *string     `json:"priority"`
	Status         *string     `json:"status"`
	CategoryID     *uuid.UUID  `json:"category_id"`
	DueDate        *time.Time  `json:"due_date"`
	IsMilestone    *bool       `json:"is_milestone"`
	DependsOnID    *uuid.UUID  `json:"depends_on_id"`
	Tags           *string     `json:"tags"`
	EstimatedHours *float64    `json:"estimated_hours"`
	ActualHours    *float64    `json:"actual_hours"`
	Assignees      []uuid.UUID `json:"assignees"`
}

// applyTaskInput validates the provided fields and copies them onto the task,
// resolving category and depends_on references. The depends_on lookup is
// scoped to the task's project, so a task can never depend on a task from
// another project. Returns false after writing an error response.
func (h *Handler) applyTaskInput(w http.ResponseWriter, r *http.Request, task *models.Task, input *taskInput) bool {
	if input.Title != nil {
		if *input.Title == "" {
			sendError(w, "Title is required", http.StatusBadRequest)
			return false
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Priority != nil {
		if !models.IsValidTaskPriority(*input.Priority) {
			sendError(w, "Invalid priority value", http.StatusBadRequest)
			return false
		}
		task.Priority = models.TaskPriority(*input.Priority)
	}
	if input.Status != nil {
		if !models.IsValidTaskStatus(*input.Status) {
			sendError(w, "Invalid status value", http.StatusBadRequest)
			return false
		}
		task.Status = models.TaskStatus(*input.Status)
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.IsMilestone != nil {
		task.IsMilestone = *input.IsMilestone
	}
	if input.Tags != nil {
		task.Tags = *input.Tags
	}
	if input.EstimatedHours != nil {
		if *input.EstimatedHours < 0 {
			sendError(w, "estimated_hours must be non-negative", http.StatusBadRequest)
			return false
		}
		task.EstimatedHours = input.EstimatedHours
	}
	if input.ActualHours != nil {
		if *input.ActualHours < 0 {
			sendError(w, "actual_hours must be non-negative", http.StatusBadRequest)
			return false
		}
		task.ActualHours = input.ActualHours
	}
	if input.CategoryID != nil {
		if _, err := h.CategoryRepo.GetByID(r.Context(), *input.CategoryID); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				sendError(w, "Category not found", http.StatusNotFound)
			} else {
				sendStoreError(w, err)
			}
			return false
		}
		task.CategoryID = input.CategoryID
	}
	if input.DependsOnID != nil {
		dep, err := h.TaskRepo.GetByIDInProject(r.Context(), *input.DependsOnID, task.ProjectID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				sendError(w, "Dependent task not found", http.StatusNotFound)
			} else {
				sendStoreError(w, err)
			}
			return false
		}
		task.DependsOnID = &dep.ID
	}
	return true
}

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	var input taskInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if input.ProjectID == nil || input.Title == nil || *input.Title == "" {
		sendError(w, "Project ID and title are required", http.StatusBadRequest)
		return
	}

	project := h.loadProjectForCaller(w, r, *input.ProjectID)
	if project == nil {
		return
	}

	now := time.Now().UTC()
	task := &models.Task{
		ID:        uuid.New(),
		ProjectID: project.ID,
		CreatedBy: *user,
		Priority:  models.TaskPriorityMedium,
		Status:    models.TaskStatusToDo,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if !h.applyTaskInput(w, r, task, &input) {
		return
	}

	if err := h.TaskRepo.Create(r.Context(), task, input.Assignees); err != nil {
		sendStoreError(w, err)
		return
	}

	created, err := h.TaskRepo.GetByID(r.Context(), task.ID)
	if err != nil {
		sendStoreError(w, err)
		return
	}
	h.WSHub.BroadcastTaskUpdate(created.ProjectID, created)
	sendResult(w, http.StatusCreated, "Request processed successfully", "task", toTaskResponse(created))
}

// UpdateTask is restricted to the project owner: the task's creator and
// project members get a 403. The assignee set is always replaced with the
// provided list, re-inserted as pending.
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	id, ok := projectIDParam(w, r)
	if !ok {
		return
	}

	task, project := h.loadTaskForCaller(w, r, id)
	if task == nil {
		return
	}
	if !policy.CanMutateTask(user.ID, project) {
		sendError(w, "Only the project owner can modify tasks", http.StatusForbidden)
		return
	}

	var input taskInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if !h.applyTaskInput(w, r, task, &input) {
		return
	}
	task.UpdatedAt = time.Now().UTC()

	if err := h.TaskRepo.Update(r.Context(), task, input.Assignees); err != nil {
		sendStoreError(w, err)
		return
	}

	updated, err := h.TaskRepo.GetByID(r.Context(), task.ID)
	if err != nil {
		sendStoreError(w, err)
		return
	}
	h.WSHub.BroadcastTaskUpdate(updated.ProjectID, updated)
	sendResult(w, http.StatusOK, "Request processed successfully", "task", toTaskResponse(updated))
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	id, ok := projectIDParam(w, r)
	if !ok {
		return
	}

	task, project := h.loadTaskForCaller(w, r, id)
	if task == nil {
		return
	}
	if !policy.CanMutateTask(user.ID, project) {
		sendError(w, "Only the project owner can delete tasks", http.StatusForbidden)
		return
	}

	if err := h.TaskRepo.Delete(r.Context(), task.ID); err != nil {
		sendStoreError(w, err)
		return
	}
	h.WSHub.BroadcastTaskDeletion(task.ProjectID, task.ID)
	sendResult(w, http.StatusOK, "Request processed successfully, task deleted", "", nil)
}
