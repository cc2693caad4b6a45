package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/planhub/planhub/internal/db"
	"github.com/planhub/planhub/internal/models"
)

// Categories are global: any authenticated caller may create one, and they
// carry no ownership.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	if input.Name == "" {
		sendError(w, "Name is required", http.StatusBadRequest)
		return
	}

	category := &models.Category{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: input.Description,
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.CategoryRepo.Create(r.Context(), category); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			sendError(w, "Category already exists", http.StatusConflict)
			return
		}
		sendStoreError(w, err)
		return
	}
	sendResult(w, http.StatusCreated, "Request processed successfully", "category", toCategoryResponse(category))
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.CategoryRepo.List(r.Context())
	if err != nil {
		sendStoreError(w, err)
		return
	}

	list := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		list = append(list, toCategoryResponse(c))
	}
	sendResult(w, http.StatusOK, "Request processed successfully", "categories", list)
}
