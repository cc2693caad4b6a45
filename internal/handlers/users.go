package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/planhub/planhub/internal/auth"
	"github.com/planhub/planhub/internal/db"
)

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email     string `json:"email"`
		Username  string `json:"username"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Password  string `json:"password"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}

	user, err := h.Auth.Register(
		r.Context(), input.Email, input.Username, input.FirstName, input.LastName, input.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingFields):
			sendError(w, "Missing required fields", http.StatusBadRequest)
		case errors.Is(err, db.ErrDuplicate):
			sendError(w, "Email or username already exists", http.StatusConflict)
		default:
			sendStoreError(w, err)
		}
		return
	}

	log.Printf("User registered: %s", user.Email)
	sendResult(w, http.StatusCreated, "Registration successful", "user", toProfile(user, true))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}

	user, err := h.Auth.Authenticate(r.Context(), input.Email, input.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingFields):
			sendError(w, "Missing required fields", http.StatusBadRequest)
		case errors.Is(err, auth.ErrInvalidCredentials):
			sendError(w, "Invalid credentials", http.StatusUnauthorized)
		default:
			sendStoreError(w, err)
		}
		return
	}

	log.Printf("User logged in: %s", user.Email)
	sendResult(w, http.StatusOK, "Login successful", "user", toProfile(user, true))
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	sendResult(w, http.StatusOK, "Request processed successfully", "user", toProfile(user, true))
}

// UpdateProfile applies partial updates: fields absent from the body keep
// their previous value. A password change does not invalidate the token.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	var input struct {
		Username  *string `json:"username"`
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
		Password  *string `json:"password"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}

	updated, err := h.Auth.UpdateProfile(r.Context(), user, auth.ProfileUpdate{
		Username:  input.Username,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Password:  input.Password,
	})
	if err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			sendError(w, "Username already exists", http.StatusConflict)
			return
		}
		sendStoreError(w, err)
		return
	}

	sendResult(w, http.StatusOK, "Request processed successfully", "user", toProfile(updated, true))
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.UserRepo.List(r.Context())
	if err != nil {
		sendStoreError(w, err)
		return
	}

	list := make([]userRef, 0, len(users))
	for _, u := range users {
		list = append(list, toUserRef(*u))
	}
	sendResult(w, http.StatusOK, "Users retrieved successfully", "users", list)
}
