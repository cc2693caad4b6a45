package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/planhub/planhub/internal/models"
)

func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	var input struct {
		TaskID  *uuid.UUID `json:"task_id"`
		Content string     `json:"content"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	if input.TaskID == nil || input.Content == "" {
		sendError(w, "Task ID and content are required", http.StatusBadRequest)
		return
	}

	task, _ := h.loadTaskForCaller(w, r, *input.TaskID)
	if task == nil {
		return
	}

	comment := &models.Comment{
		ID:        uuid.New(),
		TaskID:    task.ID,
		Author:    *user,
		Content:   input.Content,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.CommentRepo.Create(r.Context(), comment); err != nil {
		sendStoreError(w, err)
		return
	}
	sendResult(w, http.StatusCreated, "Request processed successfully", "comment", toCommentResponse(comment))
}

func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	id, ok := projectIDParam(w, r)
	if !ok {
		return
	}
	task, _ := h.loadTaskForCaller(w, r, id)
	if task == nil {
		return
	}

	comments, err := h.CommentRepo.ListByTask(r.Context(), task.ID)
	if err != nil {
		sendStoreError(w, err)
		return
	}

	list := make([]commentResponse, 0, len(comments))
	for _, c := range comments {
		list = append(list, toCommentResponse(c))
	}
	sendResult(w, http.StatusOK, "Request processed successfully", "comments", list)
}
