package handlers

import (
	"net/http"
	"testing"
)

func TestRegisterEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/register", "", map[string]string{
		"email":      "new@example.com",
		"username":   "newuser",
		"first_name": "New",
		"last_name":  "User",
		"password":   "password123",
	})
	wantStatus(t, rec, http.StatusCreated)

	body := decodeBody(t, rec)
	if body["message"] != "Registration successful" {
		t.Errorf("message = %v", body["message"])
	}
	user := body["user"].(map[string]any)
	if user["email"] != "new@example.com" || user["username"] != "newuser" {
		t.Errorf("unexpected user payload: %v", user)
	}
	if token, _ := user["auth_token"].(string); token == "" {
		t.Error("no auth_token in registration response")
	}
	if _, exposed := user["password"]; exposed {
		t.Error("password echoed in response")
	}
}

func TestRegisterMissingFields(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/register", "", map[string]string{
		"email":    "partial@example.com",
		"password": "password123",
	})
	wantError(t, rec, http.StatusBadRequest, "Missing required fields")
}

func TestRegisterDuplicate(t *testing.T) {
	srv := newTestServer(t)
	registerUser(t, srv, "taken@example.com")

	rec := doJSON(t, srv, http.MethodPost, "/register", "", map[string]string{
		"email":      "taken@example.com",
		"username":   "someone_else",
		"first_name": "A",
		"last_name":  "B",
		"password":   "password123",
	})
	wantError(t, rec, http.StatusConflict, "Email or username already exists")
}

func TestLoginRotatesToken(t *testing.T) {
	srv := newTestServer(t)
	oldToken, _ := registerUser(t, srv, "rotate@example.com")

	rec := doJSON(t, srv, http.MethodPost, "/login", "", map[string]string{
		"email":    "rotate@example.com",
		"password": "password123",
	})
	wantStatus(t, rec, http.StatusOK)
	body := decodeBody(t, rec)
	if body["message"] != "Login successful" {
		t.Errorf("message = %v", body["message"])
	}
	newToken := body["user"].(map[string]any)["auth_token"].(string)
	if newToken == oldToken {
		t.Fatal("token not rotated on login")
	}

	// the pre-login token is dead, the fresh one works
	rec = doJSON(t, srv, http.MethodGet, "/profile", oldToken, nil)
	wantStatus(t, rec, http.StatusUnauthorized)
	rec = doJSON(t, srv, http.MethodGet, "/profile", newToken, nil)
	wantStatus(t, rec, http.StatusOK)
}

func TestLoginRejects(t *testing.T) {
	srv := newTestServer(t)
	registerUser(t, srv, "login@example.com")

	rec := doJSON(t, srv, http.MethodPost, "/login", "", map[string]string{
		"email":    "login@example.com",
		"password": "wrong",
	})
	wantError(t, rec, http.StatusUnauthorized, "Invalid credentials")

	// unknown email gets the same answer as a wrong password
	rec = doJSON(t, srv, http.MethodPost, "/login", "", map[string]string{
		"email":    "nobody@example.com",
		"password": "password123",
	})
	wantError(t, rec, http.StatusUnauthorized, "Invalid credentials")
}

func TestUpdateProfilePartialEndpoint(t *testing.T) {
	srv := newTestServer(t)
	token, _ := registerUser(t, srv, "profile@example.com")

	rec := doJSON(t, srv, http.MethodPut, "/profile", token, map[string]string{
		"first_name": "Renamed",
	})
	wantStatus(t, rec, http.StatusOK)
	user := decodeBody(t, rec)["user"].(map[string]any)
	if user["first_name"] != "Renamed" {
		t.Errorf("first_name = %v, want Renamed", user["first_name"])
	}
	// untouched fields keep their values
	if user["last_name"] != "User" || user["username"] != "profile@example.com" {
		t.Errorf("partial update touched other fields: %v", user)
	}

	// password change keeps the current session alive
	rec = doJSON(t, srv, http.MethodPut, "/profile", token, map[string]string{
		"password": "changed456",
	})
	wantStatus(t, rec, http.StatusOK)
	rec = doJSON(t, srv, http.MethodGet, "/profile", token, nil)
	wantStatus(t, rec, http.StatusOK)

	rec = doJSON(t, srv, http.MethodPost, "/login", "", map[string]string{
		"email":    "profile@example.com",
		"password": "changed456",
	})
	wantStatus(t, rec, http.StatusOK)
}

func TestUpdateProfileUsernameTaken(t *testing.T) {
	srv := newTestServer(t)
	registerUser(t, srv, "first@example.com")
	token, _ := registerUser(t, srv, "second@example.com")

	rec := doJSON(t, srv, http.MethodPut, "/profile", token, map[string]string{
		"username": "first@example.com",
	})
	wantError(t, rec, http.StatusConflict, "Username already exists")
}

func TestListUsers(t *testing.T) {
	srv := newTestServer(t)
	token, _ := registerUser(t, srv, "one@example.com")
	registerUser(t, srv, "two@example.com")

	rec := doJSON(t, srv, http.MethodGet, "/users", token, nil)
	wantStatus(t, rec, http.StatusOK)
	users := decodeBody(t, rec)["users"].([]any)
	if len(users) != 2 {
		t.Fatalf("got %d users, want 2", len(users))
	}
	// the directory exposes ids and names only
	first := users[0].(map[string]any)
	if _, exposed := first["auth_token"]; exposed {
		t.Error("auth_token leaked in user directory")
	}
}
