package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"mime"
	"net/http"

	"github.com/planhub/planhub/internal/auth"
	"github.com/planhub/planhub/internal/db"
)

type Handler struct {
	Auth           *auth.Store
	UserRepo       db.UserRepositoryInterface
	ProjectRepo    *db.ProjectRepository
	TaskRepo       *db.TaskRepository
	CommentRepo    *db.CommentRepository
	AttachmentRepo *db.AttachmentRepository
	CategoryRepo   *db.CategoryRepository
	WSHub          *WSHub
}

type errorResponse struct {
	Error string `json:"error"`
}

func sendError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(errorResponse{Error: msg})
}

// sendResult writes the standard success envelope: a "message" key plus one
// resource-named key.
func sendResult(w http.ResponseWriter, code int, message, key string, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	body := map[string]any{"message": message}
	if key != "" {
		body[key] = payload
	}
	json.NewEncoder(w).Encode(body)
}

// sendStoreError maps repository and identity failures not handled explicitly
// by the caller. Anything unforeseen surfaces as a 500 with the raw message.
func sendStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		sendError(w, "Not found", http.StatusNotFound)
	case errors.Is(err, db.ErrDuplicate):
		sendError(w, "Already exists", http.StatusConflict)
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidCredentials):
		sendError(w, "Invalid credentials", http.StatusUnauthorized)
	case errors.Is(err, auth.ErrMissingFields):
		sendError(w, "Missing required fields", http.StatusBadRequest)
	default:
		log.Printf("Internal error: %v", err)
		sendError(w, err.Error(), http.StatusInternalServerError)
	}
}

func isJSONContentType(r *http.Request) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json"
}

// decodeJSON enforces the JSON content type and a 1MB body cap before
// decoding into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if !isJSONContentType(r) {
		sendError(w, "Content-Type must be application/json", http.StatusBadRequest)
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		sendError(w, "Invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
